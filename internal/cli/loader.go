package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/chanproto/internal/compiler"
	"github.com/roach88/chanproto/internal/ir"
)

// SourceKind is the front end a source path is read with.
type SourceKind string

const (
	SourceGo  SourceKind = "go"
	SourceCUE SourceKind = "cue"
)

// LoadResult contains the interfaces declared in one source.
type LoadResult struct {
	Path       string
	Kind       SourceKind
	IsDir      bool
	Interfaces []ir.InterfaceSpec
}

// LoadError represents an error that occurred while loading a source.
type LoadError struct {
	Code    string
	Message string
	Pos     ir.Position
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Detail is the message with its position, without the code.
func (e *LoadError) Detail() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

// LoadSource reads interface declarations from a Go file, a Go package
// directory, a CUE file or a CUE directory. A directory holding .cue files
// and no .go files is read as CUE. With names, only those interfaces are
// returned, in declaration order.
func LoadSource(path string, names []string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("source not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing source: %v", err)}
	}

	res := &LoadResult{Path: path, IsDir: info.IsDir()}
	switch {
	case info.IsDir():
		kind, err := dirKind(path)
		if err != nil {
			return nil, err
		}
		res.Kind = kind
	case filepath.Ext(path) == ".go":
		res.Kind = SourceGo
	case filepath.Ext(path) == ".cue":
		res.Kind = SourceCUE
	default:
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("%s is neither a .go nor a .cue file", path)}
	}

	var specs []ir.InterfaceSpec
	switch {
	case res.Kind == SourceCUE:
		specs, err = compiler.LoadCUE(path)
		if err == nil {
			specs, err = selectNames(specs, names, path)
		}
	case res.IsDir:
		specs, err = compiler.ParseGoDir(path, names...)
	default:
		specs, err = compiler.ParseGoFile(path, nil, names...)
	}
	if err != nil {
		return nil, convertCompileError(err)
	}
	if len(specs) == 0 {
		return nil, &LoadError{
			Code:    ErrCodeNoFiles,
			Message: fmt.Sprintf("no interfaces in %s; mark one with %s or pass --type", path, compiler.Directive),
		}
	}
	res.Interfaces = specs
	return res, nil
}

// dirKind picks the front end for a directory.
func dirKind(dir string) (SourceKind, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	var goFiles, cueFiles int
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".go":
			goFiles++
		case ".cue":
			cueFiles++
		}
	}
	switch {
	case goFiles > 0:
		return SourceGo, nil
	case cueFiles > 0:
		return SourceCUE, nil
	default:
		return "", &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no Go or CUE files found in %s", dir)}
	}
}

func selectNames(specs []ir.InterfaceSpec, names []string, path string) ([]ir.InterfaceSpec, error) {
	if len(names) == 0 {
		return specs, nil
	}
	var out []ir.InterfaceSpec
	for _, spec := range specs {
		if slices.Contains(names, spec.Name) {
			out = append(out, spec)
		}
	}
	for _, name := range names {
		if !slices.ContainsFunc(out, func(s ir.InterfaceSpec) bool { return s.Name == name }) {
			return nil, &compiler.CompileError{
				Field:   "type",
				Message: fmt.Sprintf("interface %s not found in %s", name, path),
			}
		}
	}
	return out, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

// Error code constants shared by all CLI commands. Declaration and
// validation problems use the compiler's E1xx codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No declarations found
	ErrCodeLoadFailed  = "E004" // Source could not be parsed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // Code generation failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeStale       = "E008" // Generated file differs from generator output
	ErrCodeBadFlag     = "E009" // Invalid flag or manifest setting
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "package":
		return compiler.ErrPackageName
	case field == "visibility":
		return compiler.ErrInvalidVisibility
	case field == "operation":
		return compiler.ErrNoOperations
	case field == "interface", field == "type":
		return ErrCodeNoFiles
	case strings.HasPrefix(field, "imports."):
		return compiler.ErrInvalidImport
	case strings.Contains(field, ".args."), strings.HasSuffix(field, ".returns"):
		return compiler.ErrInvalidType
	default:
		return ErrCodeLoadFailed
	}
}
