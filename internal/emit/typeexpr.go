package emit

import (
	"go/ast"
	"go/token"

	"github.com/dave/jennifer/jen"
)

// typeCode converts a validated type expression into jennifer code.
// Qualified names go through Qual so the import block is managed by the
// file.
func (p *Plan) typeCode(e ast.Expr) *jen.Statement {
	switch t := e.(type) {
	case *ast.Ident:
		return jen.Id(t.Name)
	case *ast.SelectorExpr:
		pkg := t.X.(*ast.Ident).Name
		if path, ok := p.imports[pkg]; ok {
			return jen.Qual(path, t.Sel.Name)
		}
		return jen.Id(pkg).Dot(t.Sel.Name)
	case *ast.ParenExpr:
		return jen.Parens(p.typeCode(t.X))
	case *ast.StarExpr:
		return jen.Op("*").Add(p.typeCode(t.X))
	case *ast.ArrayType:
		if t.Len == nil {
			return jen.Index().Add(p.typeCode(t.Elt))
		}
		var n jen.Code
		switch l := t.Len.(type) {
		case *ast.BasicLit:
			n = jen.Id(l.Value)
		default:
			n = p.typeCode(l)
		}
		return jen.Index(n).Add(p.typeCode(t.Elt))
	case *ast.MapType:
		return jen.Map(p.typeCode(t.Key)).Add(p.typeCode(t.Value))
	case *ast.ChanType:
		switch t.Dir {
		case ast.SEND:
			return jen.Chan().Op("<-").Add(p.typeCode(t.Value))
		case ast.RECV:
			return jen.Op("<-").Chan().Add(p.typeCode(t.Value))
		default:
			return jen.Chan().Add(p.typeCode(t.Value))
		}
	case *ast.FuncType:
		s := jen.Func().Params(p.fieldList(t.Params)...)
		if t.Results == nil || len(t.Results.List) == 0 {
			return s
		}
		if len(t.Results.List) == 1 && len(t.Results.List[0].Names) == 0 {
			return s.Add(p.typeCode(t.Results.List[0].Type))
		}
		return s.Params(p.fieldList(t.Results)...)
	case *ast.Ellipsis:
		return jen.Op("...").Add(p.typeCode(t.Elt))
	case *ast.InterfaceType:
		return jen.Interface()
	case *ast.StructType:
		return jen.Struct()
	case *ast.IndexExpr:
		return p.typeCode(t.X).Types(p.typeCode(t.Index))
	case *ast.IndexListExpr:
		args := make([]jen.Code, len(t.Indices))
		for i, idx := range t.Indices {
			args[i] = p.typeCode(idx)
		}
		return p.typeCode(t.X).Types(args...)
	case *ast.BasicLit:
		if t.Kind == token.INT {
			return jen.Id(t.Value)
		}
	}
	// Unreachable for validated input.
	panic("emit: unsupported type expression")
}

// fieldList converts func type parameters or results, keeping names.
func (p *Plan) fieldList(fl *ast.FieldList) []jen.Code {
	if fl == nil {
		return nil
	}
	var out []jen.Code
	for _, f := range fl.List {
		if len(f.Names) == 0 {
			out = append(out, p.typeCode(f.Type))
			continue
		}
		for _, n := range f.Names {
			out = append(out, jen.Id(n.Name).Add(p.typeCode(f.Type)))
		}
	}
	return out
}

// paramType returns the code for the i-th parameter type of o.
func (p *Plan) paramType(o OpPlan, i int) *jen.Statement {
	return p.typeCode(o.params[i])
}

// returnType returns the code for the return type of o.
func (p *Plan) returnType(o OpPlan) *jen.Statement {
	return p.typeCode(o.ret)
}

// stateType is the handler state type: the configured type or the type
// parameter.
func (p *Plan) stateType() *jen.Statement {
	if p.state != nil {
		return p.typeCode(p.state)
	}
	return jen.Id(p.typeParam)
}

// handlerType is the handler interface, instantiated when generic.
func (p *Plan) handlerType() *jen.Statement {
	if p.state != nil {
		return jen.Id(p.Names.Handler())
	}
	return jen.Id(p.Names.Handler()).Types(jen.Id(p.typeParam))
}

// typeParams is the type parameter list of generic declarations, or Null.
func (p *Plan) typeParams() *jen.Statement {
	if p.state != nil {
		return jen.Null()
	}
	return jen.Types(jen.Id(p.typeParam).Any())
}

func rt(name string) *jen.Statement {
	return jen.Qual(RuntimePath, name)
}
