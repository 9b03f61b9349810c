package ir

import "fmt"

// Visibility controls whether generated top-level identifiers are exported.
type Visibility string

const (
	// Public exports every generated top-level identifier.
	Public Visibility = "public"
	// Private unexports generated top-level identifiers.
	// Methods and struct fields stay exported.
	Private Visibility = "private"
)

// ValidVisibilities defines allowed visibility values.
var ValidVisibilities = map[Visibility]bool{
	Public:  true,
	Private: true,
}

// InterfaceSpec is a compiled interface declaration: an ordered list of
// operation signatures plus what the emitters need to place the output.
type InterfaceSpec struct {
	Visibility Visibility      `json:"visibility"`
	Name       string          `json:"name"`
	Package    string          `json:"package"`
	Source     string          `json:"source,omitempty"` // base name of the declaration file
	Imports    []Import        `json:"imports,omitempty"`
	Operations []OperationSpec `json:"operations"`
	Pos        Position        `json:"-"`
}

// OperationSpec is one operation signature. Param order is significant.
type OperationSpec struct {
	Name    string   `json:"name"`
	Params  []Param  `json:"params"`
	Returns string   `json:"returns,omitempty"` // Go type expression, empty = no return
	Pos     Position `json:"-"`
}

// Param is a named, typed operation parameter.
type Param struct {
	Name string   `json:"name"`
	Type string   `json:"type"` // Go type expression
	Pos  Position `json:"-"`
}

// Import makes a package available to type expressions as Name.Type.
type Import struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// HasParams reports whether the operation declares parameters.
func (op OperationSpec) HasParams() bool {
	return len(op.Params) > 0
}

// HasReturn reports whether the operation declares a return type.
func (op OperationSpec) HasReturn() bool {
	return op.Returns != ""
}

// Kind is shorthand for Classify(op).
func (op OperationSpec) Kind() SignatureKind {
	return Classify(op)
}

// ImportPath returns the path bound to name, if any.
func (s *InterfaceSpec) ImportPath(name string) (string, bool) {
	for _, imp := range s.Imports {
		if imp.Name == name {
			return imp.Path, true
		}
	}
	return "", false
}

// Position locates a declaration in its source file.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// IsValid reports whether the position carries a line number.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		return p.Filename
	}
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}
