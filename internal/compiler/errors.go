package compiler

import (
	"fmt"
	gotoken "go/token"

	"cuelang.org/go/cue/errors"
	cuetoken "cuelang.org/go/cue/token"

	"github.com/roach88/chanproto/internal/ir"
)

// CompileError is a structural error in a declaration, such as a malformed
// method signature. It aborts compilation of that declaration.
type CompileError struct {
	Field   string
	Message string
	Pos     ir.Position
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// cuePos converts a CUE position.
func cuePos(p cuetoken.Pos) ir.Position {
	if !p.IsValid() {
		return ir.Position{}
	}
	return ir.Position{Filename: p.Filename(), Line: p.Line(), Column: p.Column()}
}

// goPos converts a go/token position.
func goPos(fset *gotoken.FileSet, p gotoken.Pos) ir.Position {
	if !p.IsValid() {
		return ir.Position{}
	}
	pos := fset.Position(p)
	return ir.Position{Filename: pos.Filename, Line: pos.Line, Column: pos.Column}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     cuePos(positions[0]),
		}
	}

	return err
}
