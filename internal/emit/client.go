package emit

import (
	"github.com/dave/jennifer/jen"
)

// Client emits the client stub: a struct wrapping the mailbox sender, its
// constructor, and one method per operation. Each method sends exactly one
// message and, for operations with a return value, blocks on one reply.
func Client(p *Plan) []jen.Code {
	client := p.Names.Client()
	union := p.Names.Union()

	decls := []jen.Code{
		jen.Commentf("%s calls a %s handler through its mailbox. Copies share the", client, p.Spec.Name).Line().
			Comment("mailbox and may be used from any number of goroutines.").Line().
			Type().Id(client).Struct(
			jen.Id("tx").Add(rt("Sender")).Types(jen.Id(union)),
		),
		jen.Commentf("%s returns a client and the receiver its handler serves.", p.Names.Constructor()).Line().
			Func().Id(p.Names.Constructor()).Params().Params(
			jen.Id(client),
			jen.Op("*").Add(rt("Receiver")).Types(jen.Id(union)),
		).Block(
			jen.List(jen.Id("tx"), jen.Id("rx")).Op(":=").Add(rt("NewMailbox")).Types(jen.Id(union)).Call(),
			jen.Return(jen.Id(client).Values(jen.Id("tx").Op(":").Id("tx")), jen.Id("rx")),
		),
	}

	for _, o := range p.Ops {
		decls = append(decls, clientMethod(p, o))
	}
	return decls
}

func clientMethod(p *Plan, o OpPlan) jen.Code {
	params := make([]jen.Code, len(o.Op.Params))
	for i, param := range o.Op.Params {
		params[i] = jen.Id(param.Name).Add(p.paramType(o, i))
	}

	doc := jen.Commentf("%s sends %s.", o.Method, o.Variant)
	if o.Kind.HasReply() {
		doc = jen.Commentf("%s sends %s and waits for the reply.", o.Method, o.Variant)
	}

	// The variant literal, fields in declared order.
	var values []jen.Code
	if o.Kind.HasBundle() {
		args := make([]jen.Code, len(o.Op.Params))
		for i, param := range o.Op.Params {
			args[i] = jen.Id(o.Fields[i]).Op(":").Id(param.Name)
		}
		values = append(values, jen.Id("Params").Op(":").Id(o.Bundle).Values(args...))
	}
	if o.Kind.HasReply() {
		values = append(values, jen.Id("Reply").Op(":").Id(o.reply))
	}
	send := jen.Id(o.recv).Dot("tx").Dot("Send").Call(jen.Id(o.Variant).Values(values...))

	var results jen.Code
	var body []jen.Code
	errMode := p.Options.Failure == FailError
	switch {
	case !o.Kind.HasReply() && errMode:
		results = jen.Error()
		body = []jen.Code{jen.Return(send)}
	case !o.Kind.HasReply():
		results = jen.Null()
		body = []jen.Code{rt("Must").Call(send)}
	case errMode:
		results = jen.Params(p.returnType(o), jen.Error())
		body = []jen.Code{
			newReply(p, o),
			jen.Return(rt("Await").Call(send, jen.Id(o.result))),
		}
	default:
		results = p.returnType(o)
		body = []jen.Code{
			newReply(p, o),
			rt("Must").Call(send),
			jen.Return(rt("MustRecv").Call(jen.Id(o.result))),
		}
	}

	return doc.Line().
		Func().Params(jen.Id(o.recv).Id(p.Names.Client())).Id(o.Method).Params(params...).Add(results).Block(body...)
}

func newReply(p *Plan, o OpPlan) jen.Code {
	return jen.List(jen.Id(o.reply), jen.Id(o.result)).Op(":=").Add(rt("NewReply")).Types(p.returnType(o)).Call()
}
