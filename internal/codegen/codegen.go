// Package codegen is the compiler entry point: it validates interface
// specs, plans them, runs the emitters and renders one Go file.
package codegen

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/roach88/chanproto/internal/compiler"
	"github.com/roach88/chanproto/internal/emit"
	"github.com/roach88/chanproto/internal/ir"
)

// Result is one generated file.
type Result struct {
	Package    string
	Interfaces []string
	Source     []byte
}

// DiagnosticsError carries every validation problem found before emission.
type DiagnosticsError struct {
	Errors []compiler.ValidationError
}

func (e *DiagnosticsError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors, first: %s", len(e.Errors), e.Errors[0].Error())
}

// Generate compiles specs into one Go source file. The specs must share a
// package. The output depends only on specs and opts.
func Generate(specs []ir.InterfaceSpec, opts emit.Options) (*Result, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no interfaces to generate")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if errs := compiler.ValidateSet(specs); len(errs) > 0 {
		return nil, &DiagnosticsError{Errors: errs}
	}
	if errs := checkImports(specs, opts.StateType); len(errs) > 0 {
		return nil, &DiagnosticsError{Errors: errs}
	}

	plans := make([]*emit.Plan, len(specs))
	for i := range specs {
		p, err := emit.NewPlan(&specs[i], opts)
		if err != nil {
			return nil, fmt.Errorf("planning %s: %w", specs[i].Name, err)
		}
		plans[i] = p
	}

	f := jen.NewFile(specs[0].Package)
	f.HeaderComment(header(specs))
	f.ImportName(emit.RuntimePath, compiler.RuntimePackage)
	for _, spec := range specs {
		for _, imp := range spec.Imports {
			if imp.Name == compiler.GuessPackageName(imp.Path) {
				f.ImportName(imp.Path, imp.Name)
			} else {
				f.ImportAlias(imp.Path, imp.Name)
			}
		}
	}

	for _, p := range plans {
		for _, group := range [][]jen.Code{emit.Messages(p), emit.Client(p), emit.Handler(p)} {
			for _, decl := range group {
				f.Add(decl)
				f.Line()
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", specs[0].Package, err)
	}

	res := &Result{Package: specs[0].Package, Source: buf.Bytes()}
	for _, spec := range specs {
		res.Interfaces = append(res.Interfaces, spec.Name)
	}
	return res, nil
}

func header(specs []ir.InterfaceSpec) string {
	var sources []string
	for _, spec := range specs {
		if spec.Source != "" && !slices.Contains(sources, spec.Source) {
			sources = append(sources, spec.Source)
		}
	}
	if len(sources) == 0 {
		return "Code generated by chanproto. DO NOT EDIT."
	}
	return "Code generated by chanproto from " + strings.Join(sources, ", ") + ". DO NOT EDIT."
}

// checkImports rejects import names bound to different paths by different
// interfaces, and state type qualifiers no interface imports.
func checkImports(specs []ir.InterfaceSpec, stateType string) []compiler.ValidationError {
	var errs []compiler.ValidationError
	paths := make(map[string]string)
	for _, spec := range specs {
		for _, imp := range spec.Imports {
			if prev, ok := paths[imp.Name]; ok && prev != imp.Path {
				errs = append(errs, compiler.ValidationError{
					Field:   fmt.Sprintf("%s.imports.%s", spec.Name, imp.Name),
					Message: fmt.Sprintf("import name %s is bound to both %q and %q", imp.Name, prev, imp.Path),
					Code:    compiler.ErrInvalidImport,
					Line:    spec.Pos.Line,
				})
				continue
			}
			paths[imp.Name] = imp.Path
		}
	}
	if stateType == "" {
		return errs
	}
	for _, q := range compiler.Qualifiers(stateType) {
		if _, ok := paths[q]; !ok {
			errs = append(errs, compiler.ValidationError{
				Field:   "state-type",
				Message: fmt.Sprintf("package %s is not imported by the declaration", q),
				Code:    compiler.ErrInvalidType,
			})
		}
	}
	return errs
}
