package compiler

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/chanproto/internal/ir"
)

// Directive marks an interface declaration as a protocol:
//
//	//chanproto:protocol
//	type Counter interface {
//		Get() int32
//		Inc(i int32)
//	}
const Directive = "//chanproto:protocol"

// ParseGoFile extracts protocol declarations from one Go source file. If src
// is nil the file is read from disk.
//
// With no names, every interface carrying the Directive is returned.
// Otherwise the named interfaces are returned, marked or not, in the order
// they appear in the file. Exported interface names generate public
// identifiers; unexported ones generate private identifiers.
func ParseGoFile(filename string, src []byte, names ...string) ([]ir.InterfaceSpec, error) {
	// A nil []byte in an any is not nil; the parser would read it as empty.
	var source any
	if src != nil {
		source = src
	}
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, source, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	specs, err := fileSpecs(fset, file, filename, names)
	if err != nil {
		return nil, err
	}
	if err := requireFound(specs, names, filename); err != nil {
		return nil, err
	}
	return specs, nil
}

// ParseGoDir extracts protocol declarations from every non-test Go file in
// dir. Files carrying a "Code generated ... DO NOT EDIT." header are skipped,
// so a directory can be regenerated in place.
func ParseGoDir(dir string, names ...string) ([]ir.InterfaceSpec, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	fset := token.NewFileSet()
	var specs []ir.InterfaceSpec
	pkg := ""
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		filename := filepath.Join(dir, name)
		file, err := parser.ParseFile(fset, filename, nil, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filename, err)
		}
		if ast.IsGenerated(file) {
			continue
		}
		if pkg == "" {
			pkg = file.Name.Name
		} else if file.Name.Name != pkg {
			return nil, &CompileError{
				Field:   "package",
				Message: fmt.Sprintf("found packages %s and %s in %s", pkg, file.Name.Name, dir),
				Pos:     goPos(fset, file.Name.Pos()),
			}
		}
		found, err := fileSpecs(fset, file, filename, names)
		if err != nil {
			return nil, err
		}
		specs = append(specs, found...)
	}

	if err := requireFound(specs, names, dir); err != nil {
		return nil, err
	}
	return specs, nil
}

func requireFound(specs []ir.InterfaceSpec, names []string, where string) error {
	for _, name := range names {
		if !slices.ContainsFunc(specs, func(s ir.InterfaceSpec) bool { return s.Name == name }) {
			return &CompileError{
				Field:   "type",
				Message: fmt.Sprintf("interface %s not found in %s", name, where),
			}
		}
	}
	return nil
}

func fileSpecs(fset *token.FileSet, file *ast.File, filename string, names []string) ([]ir.InterfaceSpec, error) {
	imports, err := fileImports(file)
	if err != nil {
		return nil, err
	}

	var specs []ir.InterfaceSpec
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, s := range gen.Specs {
			ts := s.(*ast.TypeSpec)
			selected := slices.Contains(names, ts.Name.Name)
			if len(names) == 0 {
				selected = hasDirective(ts.Doc) || (len(gen.Specs) == 1 && hasDirective(gen.Doc))
			}
			if !selected {
				continue
			}
			spec, err := interfaceSpec(fset, ts, filename)
			if err != nil {
				return nil, err
			}
			spec.Package = file.Name.Name
			spec.Imports = usedImports(imports, spec)
			specs = append(specs, *spec)
		}
	}
	return specs, nil
}

func hasDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if c.Text == Directive || strings.HasPrefix(c.Text, Directive+" ") {
			return true
		}
	}
	return false
}

func interfaceSpec(fset *token.FileSet, ts *ast.TypeSpec, filename string) (*ir.InterfaceSpec, error) {
	pos := goPos(fset, ts.Pos())
	it, ok := ts.Type.(*ast.InterfaceType)
	if !ok {
		return nil, &CompileError{
			Field:   ts.Name.Name,
			Message: "protocol declaration must be an interface type",
			Pos:     pos,
		}
	}
	if ts.TypeParams != nil {
		return nil, &CompileError{
			Field:   ts.Name.Name,
			Message: "protocol interfaces cannot have type parameters",
			Pos:     pos,
		}
	}

	spec := &ir.InterfaceSpec{
		Visibility: ir.Private,
		Name:       ts.Name.Name,
		Source:     filepath.Base(filename),
		Pos:        pos,
	}
	if ast.IsExported(ts.Name.Name) {
		spec.Visibility = ir.Public
	}

	for _, m := range it.Methods.List {
		if len(m.Names) == 0 {
			return nil, &CompileError{
				Field:   ts.Name.Name,
				Message: fmt.Sprintf("embedded element %s is not supported, list the operations", types.ExprString(m.Type)),
				Pos:     goPos(fset, m.Pos()),
			}
		}
		op, err := operationSpec(fset, m.Names[0].Name, m.Type.(*ast.FuncType), goPos(fset, m.Pos()))
		if err != nil {
			return nil, err
		}
		spec.Operations = append(spec.Operations, *op)
	}
	return spec, nil
}

func operationSpec(fset *token.FileSet, name string, ft *ast.FuncType, pos ir.Position) (*ir.OperationSpec, error) {
	op := &ir.OperationSpec{Name: name, Pos: pos}

	for _, f := range ft.Params.List {
		if _, ok := f.Type.(*ast.Ellipsis); ok {
			return nil, &CompileError{
				Field:   name,
				Message: "variadic parameters are not supported",
				Pos:     goPos(fset, f.Pos()),
			}
		}
		if len(f.Names) == 0 {
			return nil, &CompileError{
				Field:   name,
				Message: "parameters must be named",
				Pos:     goPos(fset, f.Pos()),
			}
		}
		typ := types.ExprString(f.Type)
		for _, n := range f.Names {
			op.Params = append(op.Params, ir.Param{Name: n.Name, Type: typ, Pos: goPos(fset, n.Pos())})
		}
	}

	if ft.Results != nil {
		if ft.Results.NumFields() > 1 {
			return nil, &CompileError{
				Field:   name,
				Message: "operations return at most one value",
				Pos:     goPos(fset, ft.Results.Pos()),
			}
		}
		if len(ft.Results.List) == 1 {
			op.Returns = types.ExprString(ft.Results.List[0].Type)
		}
	}
	return op, nil
}

// fileImports maps the name each import is referenced by to its path.
// Blank and dot imports cannot be referenced by a qualifier and are skipped.
func fileImports(file *ast.File) ([]ir.Import, error) {
	var imports []ir.Import
	for _, is := range file.Imports {
		p, err := strconv.Unquote(is.Path.Value)
		if err != nil {
			return nil, fmt.Errorf("import path %s: %w", is.Path.Value, err)
		}
		name := GuessPackageName(p)
		if is.Name != nil {
			if is.Name.Name == "_" || is.Name.Name == "." {
				continue
			}
			name = is.Name.Name
		}
		imports = append(imports, ir.Import{Name: name, Path: p})
	}
	return imports, nil
}

// usedImports keeps the imports referenced by the interface's type expressions,
// in file order.
func usedImports(imports []ir.Import, spec *ir.InterfaceSpec) []ir.Import {
	used := make(map[string]bool)
	for _, op := range spec.Operations {
		for _, p := range op.Params {
			for _, q := range Qualifiers(p.Type) {
				used[q] = true
			}
		}
		for _, q := range Qualifiers(op.Returns) {
			used[q] = true
		}
	}
	var out []ir.Import
	for _, imp := range imports {
		if used[imp.Name] {
			out = append(out, imp)
		}
	}
	return out
}

// GuessPackageName returns the conventional package name for an import
// path: the last element, without a major version suffix or a gopkg.in
// version, with hyphens and dots removed.
func GuessPackageName(importPath string) string {
	p := importPath
	if base := path.Base(p); isMajorVersion(base) {
		p = path.Dir(p)
	}
	name := path.Base(p)
	if i := strings.Index(name, ".v"); i > 0 && strings.HasPrefix(importPath, "gopkg.in/") {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '.' {
			return -1
		}
		return r
	}, name)
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	n, err := strconv.Atoi(s[1:])
	return err == nil && n >= 2
}
