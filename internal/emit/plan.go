// Package emit builds the three generated artifacts of an interface: the
// message types, the client stub and the handler contract.
//
// Every emitter is a pure function of a Plan. The Plan classifies each
// operation once and derives every identifier once, so the three artifacts
// always agree on names, field order and variant shape.
package emit

import (
	"fmt"
	"go/ast"
	"go/parser"
	"slices"

	"github.com/roach88/chanproto/internal/compiler"
	"github.com/roach88/chanproto/internal/ir"
	"github.com/roach88/chanproto/internal/naming"
)

// RuntimePath is the import path of the runtime generated code links
// against.
const RuntimePath = "github.com/roach88/chanproto/chanrt"

// FailureMode selects how generated code reports channel failures.
type FailureMode string

const (
	// FailPanic panics in the calling goroutine.
	FailPanic FailureMode = "panic"
	// FailError returns chanrt errors from client methods, dispatch and
	// the serve loop.
	FailError FailureMode = "error"
)

// ReplyDrop selects what dispatch does when a reply cannot be delivered.
type ReplyDrop string

const (
	// ReplyFatal treats an undeliverable reply as a failure.
	ReplyFatal ReplyDrop = "fatal"
	// ReplyIgnore discards reply send errors.
	ReplyIgnore ReplyDrop = "ignore"
)

// Options control the shape of generated code.
type Options struct {
	Failure   FailureMode
	ReplyDrop ReplyDrop
	// StateType is a Go type expression for the handler state. Empty makes
	// the handler contract generic over the state type.
	StateType string
	// Stringers adds a diagnostic String method to every variant.
	Stringers bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Failure:   FailPanic,
		ReplyDrop: ReplyFatal,
		Stringers: true,
	}
}

// Validate checks option values.
func (o Options) Validate() error {
	switch o.Failure {
	case FailPanic, FailError:
	default:
		return fmt.Errorf("invalid failure mode %q, must be %q or %q", o.Failure, FailPanic, FailError)
	}
	switch o.ReplyDrop {
	case ReplyFatal, ReplyIgnore:
	default:
		return fmt.Errorf("invalid reply-drop policy %q, must be %q or %q", o.ReplyDrop, ReplyFatal, ReplyIgnore)
	}
	if o.StateType != "" {
		if _, err := compiler.NormalizeType(o.StateType); err != nil {
			return fmt.Errorf("state type: %w", err)
		}
	}
	return nil
}

// Plan is everything the emitters need for one interface.
type Plan struct {
	Spec    *ir.InterfaceSpec
	Names   naming.Scheme
	Ops     []OpPlan
	Options Options

	imports   map[string]string // qualifier -> path
	state     ast.Expr          // nil when generic
	typeParam string            // handler state type parameter, when generic
}

// OpPlan is one classified operation with its generated identifiers.
type OpPlan struct {
	Op      ir.OperationSpec
	Kind    ir.SignatureKind
	Method  string
	Variant string
	Bundle  string   // empty when the operation has no parameters
	Fields  []string // bundle fields, in parameter order

	params []ast.Expr
	ret    ast.Expr

	// Local identifiers, made unique against the parameter names.
	recv, reply, result, stateArg string
}

// NewPlan classifies the operations of a validated spec and derives every
// generated identifier.
func NewPlan(spec *ir.InterfaceSpec, opts Options) (*Plan, error) {
	p := &Plan{
		Spec:    spec,
		Names:   naming.Scheme{Interface: spec.Name, Private: spec.Visibility == ir.Private},
		Options: opts,
		imports: make(map[string]string, len(spec.Imports)),
	}
	for _, imp := range spec.Imports {
		p.imports[imp.Name] = imp.Path
	}

	var idents []string
	if opts.StateType != "" {
		e, err := parser.ParseExpr(opts.StateType)
		if err != nil {
			return nil, fmt.Errorf("state type %q: %w", opts.StateType, err)
		}
		p.state = e
	}

	for _, op := range spec.Operations {
		kind := ir.Classify(op)
		o := OpPlan{
			Op:      op,
			Kind:    kind,
			Method:  naming.Method(op.Name),
			Variant: p.Names.Variant(op.Name),
		}
		if kind.HasBundle() {
			o.Bundle = p.Names.Bundle(op.Name)
		}
		var taken []string
		for _, param := range op.Params {
			e, err := parser.ParseExpr(param.Type)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: parameter %s: %w", spec.Name, op.Name, param.Name, err)
			}
			o.params = append(o.params, e)
			o.Fields = append(o.Fields, naming.Field(param.Name))
			taken = append(taken, param.Name)
			idents = append(idents, compiler.Idents(param.Type)...)
		}
		if kind.HasReply() {
			e, err := parser.ParseExpr(op.Returns)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: return type: %w", spec.Name, op.Name, err)
			}
			o.ret = e
			idents = append(idents, compiler.Idents(op.Returns)...)
		}
		isTaken := func(s string) bool { return slices.Contains(taken, s) }
		o.reply = naming.Unique("reply", isTaken)
		o.result = naming.Unique("result", isTaken)
		o.stateArg = naming.Unique("state", isTaken)
		p.Ops = append(p.Ops, o)
	}

	// One receiver name for every client method.
	var allParams []string
	for _, o := range p.Ops {
		for _, param := range o.Op.Params {
			allParams = append(allParams, param.Name)
		}
	}
	recv := naming.Unique("c", func(s string) bool { return slices.Contains(allParams, s) })
	for i := range p.Ops {
		p.Ops[i].recv = recv
	}

	if p.state == nil {
		p.typeParam = naming.Unique("S", func(s string) bool { return slices.Contains(idents, s) })
	}
	return p, nil
}

// Generic reports whether the handler contract is generic over its state.
func (p *Plan) Generic() bool {
	return p.state == nil
}

// Signature renders the diagnostic form of an operation, e.g.
// "Counter.GetAndInc(i int32) int32".
func (p *Plan) Signature(o OpPlan) string {
	s := p.Spec.Name + "." + o.Op.Name + "("
	for i, param := range o.Op.Params {
		if i > 0 {
			s += ", "
		}
		s += param.Name + " " + param.Type
	}
	s += ")"
	if o.Kind.HasReply() {
		s += " " + o.Op.Returns
	}
	return s
}
