package compiler

import (
	"fmt"
	"slices"

	"github.com/roach88/chanproto/internal/ir"
	"github.com/roach88/chanproto/internal/naming"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// InterfaceSpec errors (E101-E112)
	ErrInterfaceName     = "E101" // interface name is not a Go identifier
	ErrNoOperations      = "E102" // at least one operation required
	ErrOperationName     = "E103" // operation name is not a Go identifier
	ErrInvalidType       = "E104" // invalid or unsupported type expression
	ErrDuplicateOp       = "E105" // duplicate operation name
	ErrVariantCollision  = "E106" // operations collide after case conversion
	ErrParamCollision    = "E107" // duplicate or colliding parameter names
	ErrParamName         = "E108" // keyword, blank, or shadowing parameter name
	ErrInvalidVisibility = "E109" // visibility must be public or private
	ErrNameCollision     = "E110" // two generated identifiers coincide
	ErrPackageName       = "E111" // package name missing or invalid
	ErrInvalidImport     = "E112" // import name invalid or duplicate, or empty path
)

// RuntimePackage is the name generated code uses for the chanrt runtime.
const RuntimePackage = "chanrt"

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
// Supports InterfaceSpec and []InterfaceSpec.
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.InterfaceSpec:
		return validateInterface(spec)
	case ir.InterfaceSpec:
		return validateInterface(&spec)
	case []ir.InterfaceSpec:
		return ValidateSet(spec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// ValidateSet validates interfaces that will be generated into one file:
// each interface on its own, then generated identifiers across all of them
// and the shared package name.
func ValidateSet(specs []ir.InterfaceSpec) []ValidationError {
	var errs []ValidationError
	for i := range specs {
		errs = append(errs, validateInterface(&specs[i])...)
	}

	owner := make(map[string]int)
	for i := range specs {
		spec := &specs[i]
		if i > 0 && spec.Package != specs[0].Package {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.package", spec.Name),
				Message: fmt.Sprintf("package %q differs from %q; interfaces generated into one file share a package", spec.Package, specs[0].Package),
				Code:    ErrPackageName,
				Line:    spec.Pos.Line,
			})
		}
		for _, name := range topLevelNames(spec) {
			if prev, ok := owner[name]; ok && prev != i {
				errs = append(errs, ValidationError{
					Field:   spec.Name,
					Message: fmt.Sprintf("generated identifier %s is also generated for interface %s", name, specs[prev].Name),
					Code:    ErrNameCollision,
					Line:    spec.Pos.Line,
				})
				continue
			}
			owner[name] = i
		}
	}
	return errs
}

func topLevelNames(spec *ir.InterfaceSpec) []string {
	ops := make([]string, len(spec.Operations))
	for i, op := range spec.Operations {
		ops[i] = op.Name
	}
	return schemeOf(spec).TopLevel(ops, func(i int) bool { return spec.Operations[i].HasParams() })
}

func schemeOf(spec *ir.InterfaceSpec) naming.Scheme {
	return naming.Scheme{Interface: spec.Name, Private: spec.Visibility == ir.Private}
}

// validateInterface validates one interface specification.
func validateInterface(spec *ir.InterfaceSpec) []ValidationError {
	var errs []ValidationError
	add := func(field, code string, line int, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
			Line:    line,
		})
	}

	// E101: interface name
	if !naming.IsIdentifier(spec.Name) || naming.Pascal(spec.Name) == "" {
		add("name", ErrInterfaceName, spec.Pos.Line, "interface name %q is not a valid Go identifier", spec.Name)
	}

	// E109: visibility
	if !ir.ValidVisibilities[spec.Visibility] {
		add("visibility", ErrInvalidVisibility, spec.Pos.Line, "invalid visibility %q, must be \"public\" or \"private\"", spec.Visibility)
	}

	// E111: package
	if !naming.IsIdentifier(spec.Package) || spec.Package == "_" {
		add("package", ErrPackageName, spec.Pos.Line, "package name %q is not a valid Go identifier", spec.Package)
	}

	// E112: imports
	importNames := make(map[string]bool)
	for i, imp := range spec.Imports {
		field := fmt.Sprintf("imports[%d]", i)
		switch {
		case !naming.IsIdentifier(imp.Name) || imp.Name == "_":
			add(field, ErrInvalidImport, spec.Pos.Line, "import name %q is not a valid Go identifier", imp.Name)
		case imp.Name == RuntimePackage:
			add(field, ErrInvalidImport, spec.Pos.Line, "import name %q is reserved for the runtime package", imp.Name)
		case importNames[imp.Name]:
			add(field, ErrInvalidImport, spec.Pos.Line, "duplicate import name %q", imp.Name)
		case imp.Path == "":
			add(field, ErrInvalidImport, spec.Pos.Line, "import %q has an empty path", imp.Name)
		}
		importNames[imp.Name] = true
	}

	// E102: at least one operation
	if len(spec.Operations) == 0 {
		add("operations", ErrNoOperations, spec.Pos.Line, "at least one operation is required")
	}

	generated := make(map[string]bool)
	for _, name := range topLevelNames(spec) {
		generated[name] = true
	}

	opNames := make(map[string]bool)
	variants := make(map[string]string)
	for i, op := range spec.Operations {
		field := fmt.Sprintf("operations[%d]", i)
		line := op.Pos.Line

		// E103: operation name
		if !naming.IsIdentifier(op.Name) || naming.Pascal(op.Name) == "" {
			add(field+".name", ErrOperationName, line, "operation name %q is not a valid Go identifier", op.Name)
		}

		// E105: duplicate, E106: collision after case conversion
		if opNames[op.Name] {
			add(field+".name", ErrDuplicateOp, line, "duplicate operation name: %q", op.Name)
		} else if prev, ok := variants[naming.Method(op.Name)]; ok {
			add(field+".name", ErrVariantCollision, line, "operations %q and %q both generate %s", prev, op.Name, naming.Method(op.Name))
		}
		opNames[op.Name] = true
		if _, ok := variants[naming.Method(op.Name)]; !ok {
			variants[naming.Method(op.Name)] = op.Name
		}

		errs = append(errs, validateParams(op, field, importNames, generated)...)

		// E104: return type
		if op.HasReturn() {
			errs = append(errs, validateType(op.Returns, field+".returns", line, importNames)...)
		}
	}

	// E110: generated identifiers colliding within the interface. Operations
	// already reported by E105/E106 are left out.
	distinct := &ir.InterfaceSpec{Name: spec.Name, Visibility: spec.Visibility}
	for _, op := range spec.Operations {
		if variants[naming.Method(op.Name)] == op.Name && !slices.ContainsFunc(distinct.Operations, func(o ir.OperationSpec) bool { return o.Name == op.Name }) {
			distinct.Operations = append(distinct.Operations, op)
		}
	}
	seenNames := make(map[string]bool)
	for _, name := range topLevelNames(distinct) {
		if seenNames[name] {
			add("name", ErrNameCollision, spec.Pos.Line, "generated identifier %s is produced twice", name)
		}
		seenNames[name] = true
	}

	return errs
}

func validateParams(op ir.OperationSpec, field string, importNames, generated map[string]bool) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)
	fields := make(map[string]string)

	typeNames := make(map[string]bool)
	for _, p := range op.Params {
		for _, id := range Idents(p.Type) {
			typeNames[id] = true
		}
	}
	for _, id := range Idents(op.Returns) {
		typeNames[id] = true
	}

	for j, p := range op.Params {
		pf := fmt.Sprintf("%s.params[%d]", field, j)
		line := p.Pos.Line
		if line == 0 {
			line = op.Pos.Line
		}

		// E108: keyword, blank or shadowing
		switch {
		case p.Name == "_" || p.Name == "":
			errs = append(errs, ValidationError{Field: pf, Code: ErrParamName, Line: line,
				Message: fmt.Sprintf("operation %q has a blank parameter name", op.Name)})
		case naming.IsKeyword(p.Name) || !naming.IsIdentifier(p.Name):
			errs = append(errs, ValidationError{Field: pf, Code: ErrParamName, Line: line,
				Message: fmt.Sprintf("parameter name %q is not a valid Go identifier", p.Name)})
		case p.Name == RuntimePackage || importNames[p.Name]:
			errs = append(errs, ValidationError{Field: pf, Code: ErrParamName, Line: line,
				Message: fmt.Sprintf("parameter %q shadows the package of the same name", p.Name)})
		case generated[p.Name]:
			errs = append(errs, ValidationError{Field: pf, Code: ErrParamName, Line: line,
				Message: fmt.Sprintf("parameter %q shadows a generated identifier", p.Name)})
		case typeNames[p.Name]:
			errs = append(errs, ValidationError{Field: pf, Code: ErrParamName, Line: line,
				Message: fmt.Sprintf("parameter %q shadows a type used by operation %q", p.Name, op.Name)})
		}

		// E107: duplicate or colliding parameter
		if seen[p.Name] {
			errs = append(errs, ValidationError{Field: pf, Code: ErrParamCollision, Line: line,
				Message: fmt.Sprintf("duplicate parameter %q in operation %q", p.Name, op.Name)})
		} else if prev, ok := fields[naming.Field(p.Name)]; ok {
			errs = append(errs, ValidationError{Field: pf, Code: ErrParamCollision, Line: line,
				Message: fmt.Sprintf("parameters %q and %q both generate field %s", prev, p.Name, naming.Field(p.Name))})
		}
		seen[p.Name] = true
		if _, ok := fields[naming.Field(p.Name)]; !ok {
			fields[naming.Field(p.Name)] = p.Name
		}

		errs = append(errs, validateType(p.Type, pf+".type", line, importNames)...)
	}
	return errs
}

// validateType checks that a type expression parses, is supported and only
// references declared imports.
func validateType(expr, field string, line int, importNames map[string]bool) []ValidationError {
	if _, err := NormalizeType(expr); err != nil {
		return []ValidationError{{Field: field, Code: ErrInvalidType, Line: line, Message: err.Error()}}
	}
	var errs []ValidationError
	for _, q := range Qualifiers(expr) {
		if !importNames[q] {
			errs = append(errs, ValidationError{Field: field, Code: ErrInvalidType, Line: line,
				Message: fmt.Sprintf("type %q references package %q, which is not imported", expr, q)})
		}
	}
	if slices.Contains(Idents(expr), RuntimePackage) {
		errs = append(errs, ValidationError{Field: field, Code: ErrInvalidType, Line: line,
			Message: fmt.Sprintf("type %q uses the reserved name %q", expr, RuntimePackage)})
	}
	return errs
}
