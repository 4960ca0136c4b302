package rules

import (
	"testing"

	"github.com/rulekit/rulekit/term"
)

func TestRule_IsFact(t *testing.T) {
	fact := &Rule{Head: &term.Call{Name: "f"}, Body: &And{}}
	if !fact.IsFact() {
		t.Error("rule with empty conjunction body should be a fact")
	}

	rule := &Rule{Head: &term.Call{Name: "g"}, Body: &Unify{A: term.NewTerm(term.Integer(1)), B: term.NewTerm(term.Integer(1))}}
	if rule.IsFact() {
		t.Error("rule with a non-empty body should not be a fact")
	}
}

func TestRule_String(t *testing.T) {
	fact := &Rule{Head: &term.Call{Name: "f", Args: []*term.Term{term.NewTerm(term.Integer(1))}}, Body: &And{}}
	if got, want := fact.String(), "f(1);"; got != want {
		t.Errorf("fact.String() = %q, want %q", got, want)
	}

	rule := &Rule{
		Head: &term.Call{Name: "g", Args: []*term.Term{term.NewTerm(term.Symbol("x"))}},
		Body: &Unify{A: term.NewTerm(term.Symbol("x")), B: term.NewTerm(term.Integer(1))},
	}
	if got, want := rule.String(), "g(x) := x=1;"; got != want {
		t.Errorf("rule.String() = %q, want %q", got, want)
	}
}

func TestFunctorOf(t *testing.T) {
	call := &term.Call{Name: "f", Args: []*term.Term{term.NewTerm(term.Integer(1)), term.NewTerm(term.Integer(2))}}
	got := FunctorOf(call)
	want := Functor{Name: "f", Arity: 2}
	if got != want {
		t.Errorf("FunctorOf(%s) = %v, want %v", call, got, want)
	}
}

func TestFunctor_String(t *testing.T) {
	if got, want := (Functor{Name: "f", Arity: 3}).String(), "f/3"; got != want {
		t.Errorf("Functor.String() = %q, want %q", got, want)
	}
}
