package compiler

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"slices"
	"strings"
)

// NormalizeType parses a Go type expression and returns it in canonical
// form, so that "map[string]  int" and "map[string]int" compare equal.
// Variadic parameters, struct literals with fields and interface literals
// with methods are rejected.
func NormalizeType(expr string) (string, error) {
	e, err := parseType(expr)
	if err != nil {
		return "", err
	}
	return types.ExprString(e), nil
}

// Qualifiers returns the package names referenced by a type expression,
// sorted and deduplicated.
func Qualifiers(expr string) []string {
	e, err := parseType(expr)
	if err != nil {
		return nil
	}
	var names []string
	ast.Inspect(e, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				names = append(names, id.Name)
			}
			return false
		}
		return true
	})
	slices.Sort(names)
	return slices.Compact(names)
}

// Idents returns the unqualified identifiers referenced by a type
// expression, such as "int32" or a local type name.
func Idents(expr string) []string {
	e, err := parseType(expr)
	if err != nil {
		return nil
	}
	var names []string
	ast.Inspect(e, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.SelectorExpr:
			return false
		case *ast.Ident:
			names = append(names, n.Name)
		}
		return true
	})
	slices.Sort(names)
	return slices.Compact(names)
}

func parseType(expr string) (ast.Expr, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty type expression")
	}
	e, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid type expression %q: %w", expr, err)
	}
	if err := checkType(e, false); err != nil {
		return nil, fmt.Errorf("unsupported type expression %q: %w", expr, err)
	}
	return e, nil
}

// checkType walks a type expression. variadicOK is set for the last
// parameter of a func type.
func checkType(e ast.Expr, variadicOK bool) error {
	switch t := e.(type) {
	case *ast.Ident:
		if t.Name == "_" {
			return fmt.Errorf("blank identifier is not a type")
		}
		return nil
	case *ast.SelectorExpr:
		if _, ok := t.X.(*ast.Ident); !ok {
			return fmt.Errorf("qualified type must be pkg.Name")
		}
		return nil
	case *ast.ParenExpr:
		return checkType(t.X, false)
	case *ast.StarExpr:
		return checkType(t.X, false)
	case *ast.ArrayType:
		if t.Len != nil {
			switch l := t.Len.(type) {
			case *ast.BasicLit:
				if l.Kind != token.INT {
					return fmt.Errorf("array length must be an integer")
				}
			case *ast.Ident, *ast.SelectorExpr:
			default:
				return fmt.Errorf("array length must be a constant")
			}
		}
		return checkType(t.Elt, false)
	case *ast.MapType:
		if err := checkType(t.Key, false); err != nil {
			return err
		}
		return checkType(t.Value, false)
	case *ast.ChanType:
		return checkType(t.Value, false)
	case *ast.FuncType:
		if t.TypeParams != nil {
			return fmt.Errorf("func types cannot have type parameters")
		}
		if t.Params != nil {
			for i, f := range t.Params.List {
				if err := checkType(f.Type, i == len(t.Params.List)-1); err != nil {
					return err
				}
			}
		}
		if t.Results != nil {
			for _, f := range t.Results.List {
				if err := checkType(f.Type, false); err != nil {
					return err
				}
			}
		}
		return nil
	case *ast.Ellipsis:
		if !variadicOK || t.Elt == nil {
			return fmt.Errorf("variadic parameters are not supported")
		}
		return checkType(t.Elt, false)
	case *ast.InterfaceType:
		if t.Methods != nil && len(t.Methods.List) > 0 {
			return fmt.Errorf("interface literals must be empty, declare a named interface")
		}
		return nil
	case *ast.StructType:
		if t.Fields != nil && len(t.Fields.List) > 0 {
			return fmt.Errorf("struct literals must be empty, declare a named struct")
		}
		return nil
	case *ast.IndexExpr:
		if err := checkType(t.X, false); err != nil {
			return err
		}
		return checkType(t.Index, false)
	case *ast.IndexListExpr:
		if err := checkType(t.X, false); err != nil {
			return err
		}
		for _, idx := range t.Indices {
			if err := checkType(idx, false); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%T is not a type", e)
	}
}
