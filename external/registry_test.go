package external

import (
	"context"
	"testing"

	"github.com/rulekit/rulekit/term"
)

func intResolver(v int64) Resolver {
	return ResolverFunc(func(ctx context.Context, req Request) (*term.Term, bool, error) {
		return term.NewTerm(term.Integer(v)), true, nil
	})
}

func TestRegistry_ExactPathWins(t *testing.T) {
	reg := NewRegistry()
	reg.Register([]term.Symbol{"Account"}, intResolver(1))
	reg.Register([]term.Symbol{"Account", "balance"}, intResolver(2))

	r := reg.Resolve([]term.Symbol{"Account", "balance"})
	if r == nil {
		t.Fatal("expected a resolver for Account.balance")
	}
	cur, err := r.Resolve(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	val, hasValue, err := cur.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !hasValue || val.String() != "2" {
		t.Errorf("Account.balance resolved to %v, want 2", val)
	}
}

func TestRegistry_TagFallback(t *testing.T) {
	reg := NewRegistry()
	reg.Register([]term.Symbol{"Account"}, intResolver(7))

	r := reg.Resolve([]term.Symbol{"Account", "anything"})
	if r == nil {
		t.Fatal("expected the tag-level resolver to answer an unregistered attribute")
	}
	cur, err := r.Resolve(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	val, hasValue, err := cur.Next(context.Background())
	if err != nil || !hasValue || val.String() != "7" {
		t.Errorf("got (%v, %v, %v), want (7, true, nil)", val, hasValue, err)
	}
}

func TestRegistry_Unregistered(t *testing.T) {
	reg := NewRegistry()
	if r := reg.Resolve([]term.Symbol{"Nope", "x"}); r != nil {
		t.Error("expected nil for an unregistered path")
	}
}

func TestRegistry_ResolveRequest(t *testing.T) {
	reg := NewRegistry()
	reg.Register([]term.Symbol{"Foo", "get"}, intResolver(42))

	instance := term.NewTerm(&term.InstanceLiteral{Tag: "Foo"})
	r, ok := reg.ResolveRequest(Request{Instance: instance, Attribute: "get"})
	if !ok || r == nil {
		t.Fatal("expected ResolveRequest to find Foo.get")
	}

	externalHandle := term.NewTerm(&term.ExternalInstance{ID: 1, Literal: &term.InstanceLiteral{Tag: "Foo"}})
	if _, ok := reg.ResolveRequest(Request{Instance: externalHandle, Attribute: "get"}); !ok {
		t.Error("expected ResolveRequest to resolve via an ExternalInstance's recorded Literal tag")
	}

	opaque := term.NewTerm(&term.ExternalInstance{ID: 2})
	if _, ok := reg.ResolveRequest(Request{Instance: opaque, Attribute: "get"}); ok {
		t.Error("expected ResolveRequest to fail for an instance with no recoverable tag")
	}
}

func TestSliceCursor(t *testing.T) {
	cur := &SliceCursor{Values: []*term.Term{term.NewTerm(term.Integer(1)), term.NewTerm(term.Integer(2))}}
	var got []string
	for {
		v, ok, err := cur.Next(context.Background())
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, v.String())
	}
	if len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Errorf("got %v, want [1 2]", got)
	}
}
