// Package external defines the wire-level shape of a host attribute/method
// call and a dispatch structure for routing one to a registered handler.
package external

import (
	"context"

	"github.com/rulekit/rulekit/term"
)

// Request is a single attribute/method call raised against a host-owned
// instance: Tag{...}.Attribute(Args...). CallID correlates a Request with
// however many Cursor values the host subsequently supplies for it.
type Request struct {
	CallID    uint64
	Instance  *term.Term
	Attribute term.Symbol
	Args      []*term.Term
}

// Cursor yields the successive values of a (possibly multi-valued) call,
// one per Next, until hasValue is false.
type Cursor interface {
	Next(ctx context.Context) (value *term.Term, hasValue bool, err error)
}

// Resolver answers a Request with a Cursor over its values.
type Resolver interface {
	Resolve(ctx context.Context, req Request) (Cursor, error)
}

// ResolverFunc adapts a function returning at most one value to a Resolver,
// for handlers that never need multi-valued iteration.
type ResolverFunc func(ctx context.Context, req Request) (*term.Term, bool, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, req Request) (Cursor, error) {
	v, ok, err := f(ctx, req)
	if err != nil {
		return nil, err
	}
	return &onceCursor{value: v, hasValue: ok}, nil
}

type onceCursor struct {
	value    *term.Term
	hasValue bool
	done     bool
}

func (c *onceCursor) Next(context.Context) (*term.Term, bool, error) {
	if c.done || !c.hasValue {
		return nil, false, nil
	}
	c.done = true
	return c.value, true, nil
}

// SliceCursor iterates a fixed, already-materialized slice of values.
type SliceCursor struct {
	Values []*term.Term
	i      int
}

// Next implements Cursor.
func (c *SliceCursor) Next(context.Context) (*term.Term, bool, error) {
	if c.i >= len(c.Values) {
		return nil, false, nil
	}
	v := c.Values[c.i]
	c.i++
	return v, true, nil
}

// SliceCursorResolver answers every Request with a fresh SliceCursor over
// Values, useful for tests and for handlers whose result set doesn't
// depend on the request's args.
type SliceCursorResolver struct {
	Values []*term.Term
}

// Resolve implements Resolver.
func (r *SliceCursorResolver) Resolve(context.Context, Request) (Cursor, error) {
	values := make([]*term.Term, len(r.Values))
	copy(values, r.Values)
	return &SliceCursor{Values: values}, nil
}

// TagOf extracts the dispatch tag carried by an ExternalCall's target
// term: an InstanceLiteral's own tag, or the tag recorded on the
// ExternalInstance handle it was constructed from, if any.
func TagOf(t *term.Term) (term.Symbol, bool) {
	if t == nil {
		return "", false
	}
	switch v := t.Value.(type) {
	case *term.InstanceLiteral:
		return v.Tag, true
	case *term.ExternalInstance:
		if v.Literal != nil {
			return v.Literal.Tag, true
		}
	}
	return "", false
}
