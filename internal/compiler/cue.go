package compiler

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/chanproto/internal/ir"
)

// CompileInterface parses a CUE value into an InterfaceSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the interface struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`interface: Counter: { operation: { get: returns: "int32" } }`)
//	spec, err := CompileInterface(v.LookupPath(cue.ParsePath("interface.Counter")))
//
// Package is left empty when the value does not set it; LoadCUE fills in
// the CUE package name.
func CompileInterface(v cue.Value) (*ir.InterfaceSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	pos := cuePos(v.Pos())
	spec := &ir.InterfaceSpec{
		Visibility: ir.Public,
		Pos:        pos,
	}
	if pos.Filename != "" {
		spec.Source = filepath.Base(pos.Filename)
	}

	// Interface name from struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	if err := checkFields(v, "", "visibility", "package", "imports", "operation"); err != nil {
		return nil, err
	}

	if s, ok, err := optionalString(v, "visibility"); err != nil {
		return nil, err
	} else if ok {
		spec.Visibility = ir.Visibility(s)
	}
	if s, ok, err := optionalString(v, "package"); err != nil {
		return nil, err
	} else if ok {
		spec.Package = s
	}

	var err error
	spec.Imports, err = parseImports(v)
	if err != nil {
		return nil, err
	}

	spec.Operations, err = parseOperations(v)
	if err != nil {
		return nil, err
	}
	if len(spec.Operations) == 0 {
		return nil, &CompileError{
			Field:   "operation",
			Message: "at least one operation is required",
			Pos:     pos,
		}
	}

	return spec, nil
}

func optionalString(v cue.Value, field string) (string, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", false, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", false, &CompileError{
			Field:   field,
			Message: "must be a concrete string",
			Pos:     cuePos(fv.Pos()),
		}
	}
	return s, true, nil
}

// parseImports reads imports: { name: "path" } in declaration order.
func parseImports(v cue.Value) ([]ir.Import, error) {
	importsVal := v.LookupPath(cue.ParsePath("imports"))
	if !importsVal.Exists() {
		return nil, nil
	}

	iter, err := importsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var imports []ir.Import
	for iter.Next() {
		p, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   "imports." + iter.Label(),
				Message: "import path must be a concrete string",
				Pos:     cuePos(iter.Value().Pos()),
			}
		}
		imports = append(imports, ir.Import{Name: iter.Label(), Path: p})
	}
	return imports, nil
}

// parseOperations extracts operation definitions in declaration order.
func parseOperations(v cue.Value) ([]ir.OperationSpec, error) {
	var ops []ir.OperationSpec

	opVal := v.LookupPath(cue.ParsePath("operation"))
	if !opVal.Exists() {
		return ops, nil
	}

	iter, err := opVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		opName := iter.Label()
		opValue := iter.Value()

		op := ir.OperationSpec{
			Name: opName,
			Pos:  cuePos(opValue.Pos()),
		}
		if err := checkFields(opValue, "operation."+opName+".", "args", "returns"); err != nil {
			return nil, err
		}

		// Parse args
		argsVal := opValue.LookupPath(cue.ParsePath("args"))
		if argsVal.Exists() {
			argsIter, err := argsVal.Fields()
			if err != nil {
				return nil, formatCUEError(err)
			}

			for argsIter.Next() {
				argName := argsIter.Label()
				argType, err := typeString(argsIter.Value(), fmt.Sprintf("operation.%s.args.%s", opName, argName))
				if err != nil {
					return nil, err
				}
				op.Params = append(op.Params, ir.Param{
					Name: argName,
					Type: argType,
					Pos:  cuePos(argsIter.Value().Pos()),
				})
			}
		}

		// Parse returns (optional)
		retVal := opValue.LookupPath(cue.ParsePath("returns"))
		if retVal.Exists() {
			op.Returns, err = typeString(retVal, fmt.Sprintf("operation.%s.returns", opName))
			if err != nil {
				return nil, err
			}
		}

		ops = append(ops, op)
	}

	return ops, nil
}

// checkFields rejects any regular field of v outside allowed, so a
// misspelled key is an error rather than a missing value.
func checkFields(v cue.Value, prefix string, allowed ...string) error {
	iter, err := v.Fields()
	if err != nil {
		return &CompileError{
			Field:   cmp.Or(strings.TrimSuffix(prefix, "."), "interface"),
			Message: "must be a struct",
			Pos:     cuePos(v.Pos()),
		}
	}
	for iter.Next() {
		if !slices.Contains(allowed, iter.Label()) {
			return &CompileError{
				Field:   prefix + iter.Label(),
				Message: fmt.Sprintf("unknown field %q, expected one of %s", iter.Label(), strings.Join(allowed, ", ")),
				Pos:     cuePos(iter.Value().Pos()),
			}
		}
	}
	return nil
}

// typeString reads a Go type expression written as a CUE string.
func typeString(v cue.Value, field string) (string, error) {
	s, err := v.String()
	if err != nil {
		return "", &CompileError{
			Field:   field,
			Message: "type must be a string holding a Go type expression, e.g. \"int32\"",
			Pos:     cuePos(v.Pos()),
		}
	}
	return s, nil
}

// LoadCUE loads every interface declared under interface: in a CUE file or
// in the package in a directory.
func LoadCUE(path string) ([]ir.InterfaceSpec, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	cfg := &load.Config{Dir: path}
	args := []string{"."}
	if !info.IsDir() {
		cfg.Dir = filepath.Dir(path)
		args = []string{filepath.Base(path)}
	}

	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", path)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	ctx := cuecontext.New()
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	ifaces := value.LookupPath(cue.ParsePath("interface"))
	if !ifaces.Exists() {
		return nil, &CompileError{
			Field:   "interface",
			Message: fmt.Sprintf("no interfaces declared in %s", path),
		}
	}
	iter, err := ifaces.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []ir.InterfaceSpec
	for iter.Next() {
		spec, err := CompileInterface(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("interface.%s: %w", iter.Label(), err)
		}
		if spec.Package == "" {
			spec.Package = inst.PkgName
		}
		if spec.Source == "" && len(inst.BuildFiles) == 1 {
			spec.Source = filepath.Base(inst.BuildFiles[0].Filename)
		}
		specs = append(specs, *spec)
	}
	return specs, nil
}
