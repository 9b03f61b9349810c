package emit

import (
	"github.com/dave/jennifer/jen"
)

// Messages emits the message types: one parameter bundle per operation with
// parameters, the sealed union interface, and per operation its variant
// struct, marker method and optional diagnostic String method.
func Messages(p *Plan) []jen.Code {
	var decls []jen.Code
	union := p.Names.Union()

	for _, o := range p.Ops {
		if o.Bundle == "" {
			continue
		}
		fields := make([]jen.Code, len(o.Fields))
		for i, f := range o.Fields {
			fields[i] = jen.Id(f).Add(p.paramType(o, i))
		}
		decls = append(decls, jen.Commentf("%s carries the arguments of %s.%s.", o.Bundle, p.Spec.Name, o.Op.Name).Line().
			Type().Id(o.Bundle).Struct(fields...))
	}

	decls = append(decls, jen.Commentf("%s is a request to a %s handler. Its variants are the", union, p.Spec.Name).Line().
		Commentf("%s* types.", union).Line().
		Type().Id(union).Interface(jen.Id(p.Names.Marker()).Params()))

	for _, o := range p.Ops {
		decls = append(decls, jen.Commentf("%s requests %s.%s.", o.Variant, p.Spec.Name, o.Op.Name).Line().
			Type().Id(o.Variant).Struct(variantFields(p, o)...))
		decls = append(decls, jen.Func().Params(jen.Id(o.Variant)).Id(p.Names.Marker()).Params().Block())
		if p.Options.Stringers {
			decls = append(decls, jen.Func().Params(jen.Id(o.Variant)).Id("String").Params().String().Block(
				jen.Return(jen.Lit(p.Signature(o))),
			))
		}
	}
	return decls
}

// variantFields is the payload of a variant, fixed by its signature kind.
func variantFields(p *Plan, o OpPlan) []jen.Code {
	var fields []jen.Code
	if o.Kind.HasBundle() {
		fields = append(fields, jen.Id("Params").Id(o.Bundle))
	}
	if o.Kind.HasReply() {
		fields = append(fields, jen.Id("Reply").Add(rt("ReplySender")).Types(p.returnType(o)))
	}
	return fields
}
