package emit

import (
	"github.com/dave/jennifer/jen"
)

// Handler emits the handler contract: an interface with one method per
// operation taking the state first, a dispatch function that routes one
// message to the matching method, and a serve loop.
func Handler(p *Plan) []jen.Code {
	return []jen.Code{handlerInterface(p), dispatch(p), serve(p)}
}

func handlerInterface(p *Plan) jen.Code {
	methods := make([]jen.Code, len(p.Ops))
	for i, o := range p.Ops {
		params := []jen.Code{jen.Id(o.stateArg).Add(p.stateType())}
		for j, param := range o.Op.Params {
			params = append(params, jen.Id(param.Name).Add(p.paramType(o, j)))
		}
		ret := jen.Null()
		if o.Kind.HasReply() {
			ret = p.returnType(o)
		}
		methods[i] = jen.Id(o.Method).Params(params...).Add(ret)
	}

	return jen.Commentf("%s is implemented by the owner of %s state. %s calls", p.Names.Handler(), p.Spec.Name, p.Names.Serve()).Line().
		Comment("one method per message, in arrival order, from a single goroutine.").Line().
		Type().Id(p.Names.Handler()).Add(p.typeParams()).Interface(methods...)
}

func dispatch(p *Plan) jen.Code {
	errMode := p.Options.Failure == FailError
	usesMsg := false
	fallsThrough := false

	var cases []jen.Code
	for _, o := range p.Ops {
		args := []jen.Code{jen.Id("state")}
		for _, f := range o.Fields {
			args = append(args, jen.Id("m").Dot("Params").Dot(f))
		}
		call := jen.Id("h").Dot(o.Method).Call(args...)

		var body []jen.Code
		switch {
		case !o.Kind.HasReply():
			body = []jen.Code{call}
			fallsThrough = true
		default:
			send := jen.Id("m").Dot("Reply").Dot("Send").Call(call)
			body = []jen.Code{jen.Defer().Id("m").Dot("Reply").Dot("Close").Call()}
			switch {
			case p.Options.ReplyDrop == ReplyIgnore:
				body = append(body, jen.Id("_").Op("=").Add(send))
				fallsThrough = true
			case errMode:
				body = append(body, jen.Return(send))
			default:
				body = append(body, rt("MustReply").Call(jen.Id("m").Dot("Reply"), call))
				fallsThrough = true
			}
		}
		if o.Kind.HasBundle() || o.Kind.HasReply() {
			usesMsg = true
		}
		cases = append(cases, jen.Case(jen.Id(o.Variant)).Block(body...))
	}

	if errMode {
		cases = append(cases, jen.Default().Block(jen.Return(rt("UnknownMessage").Call(jen.Id("msg")))))
	} else {
		cases = append(cases, jen.Default().Block(jen.Panic(rt("UnknownMessage").Call(jen.Id("msg")))))
	}

	subject := jen.Id("msg").Assert(jen.Type())
	if usesMsg {
		subject = jen.Id("m").Op(":=").Add(subject)
	}
	body := []jen.Code{jen.Switch(subject).Block(cases...)}
	results := jen.Null()
	if errMode {
		results = jen.Error()
		if fallsThrough {
			body = append(body, jen.Return(jen.Nil()))
		}
	}

	doc := jen.Commentf("%s calls the %s method matching msg and, for operations", p.Names.Dispatch(), p.Names.Handler()).Line().
		Comment("that return a value, sends the result through the message's reply.").Line()
	return doc.Func().Id(p.Names.Dispatch()).Add(p.typeParams()).Params(
		jen.Id("h").Add(p.handlerType()),
		jen.Id("state").Add(p.stateType()),
		jen.Id("msg").Id(p.Names.Union()),
	).Add(results).Block(body...)
}

func serve(p *Plan) jen.Code {
	call := jen.Id(p.Names.Dispatch())
	if p.Generic() {
		call = call.Types(jen.Id(p.typeParam))
	}
	call = call.Call(jen.Id("h"), jen.Id("state"), jen.Id("msg"))

	doc := jen.Commentf("%s dispatches every message from rx until it is closed and", p.Names.Serve()).Line().
		Comment("drained.").Line()

	var loop jen.Code = call
	results := jen.Null()
	var tail []jen.Code
	if p.Options.Failure == FailError {
		onErr := append([]jen.Code{jen.Id("rx").Dot("Close").Call()}, release(p)...)
		onErr = append(onErr, jen.Return(jen.Err()))
		loop = jen.If(jen.Err().Op(":=").Add(call), jen.Err().Op("!=").Nil()).Block(onErr...)
		results = jen.Error()
		tail = []jen.Code{jen.Return(jen.Nil())}
		doc = jen.Commentf("%s dispatches every message from rx until it is closed and", p.Names.Serve()).Line().
			Comment("drained. On the first dispatch error it closes rx, releases the").Line().
			Comment("callers of queued messages and returns the error.").Line()
	}

	body := append([]jen.Code{
		jen.For(jen.Id("msg").Op(":=").Range().Id("rx").Dot("All").Call()).Block(loop),
	}, tail...)

	return doc.Func().Id(p.Names.Serve()).Add(p.typeParams()).Params(
		jen.Id("h").Add(p.handlerType()),
		jen.Id("state").Add(p.stateType()),
		jen.Id("rx").Op("*").Add(rt("Receiver")).Types(jen.Id(p.Names.Union())),
	).Add(results).Block(body...)
}

// release drains a closed rx, closing the reply of every queued message so
// its caller gets chanrt.ErrSenderGone.
func release(p *Plan) []jen.Code {
	var cases []jen.Code
	for _, o := range p.Ops {
		if o.Kind.HasReply() {
			cases = append(cases, jen.Case(jen.Id(o.Variant)).Block(jen.Id("m").Dot("Reply").Dot("Close").Call()))
		}
	}
	if len(cases) == 0 {
		return nil
	}
	return []jen.Code{
		jen.For(jen.Id("msg").Op(":=").Range().Id("rx").Dot("All").Call()).Block(
			jen.Switch(jen.Id("m").Op(":=").Id("msg").Assert(jen.Type())).Block(cases...),
		),
	}
}
