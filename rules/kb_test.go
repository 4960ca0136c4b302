package rules

import (
	"testing"

	"github.com/rulekit/rulekit/term"
)

func factRule(name string, args ...*term.Term) *Rule {
	return &Rule{Head: &term.Call{Name: name, Args: args}, Body: &And{}}
}

func TestKnowledgeBase_InsertPreservesOrder(t *testing.T) {
	kb := New()
	kb.Insert(factRule("f", term.NewTerm(term.Integer(1))))
	kb.Insert(factRule("f", term.NewTerm(term.Integer(2))))
	kb.Insert(factRule("f", term.NewTerm(term.Integer(3))))

	rs := kb.RulesFor(Functor{Name: "f", Arity: 1})
	if len(rs) != 3 {
		t.Fatalf("RulesFor returned %d rules, want 3", len(rs))
	}
	for i, want := range []int64{1, 2, 3} {
		got := rs[i].Head.Args[0].Value.(term.Integer)
		if int64(got) != want {
			t.Errorf("rule %d = %v, want %d", i, got, want)
		}
	}
}

func TestKnowledgeBase_RulesForUnknownFunctorIsEmpty(t *testing.T) {
	kb := New()
	if rs := kb.RulesFor(Functor{Name: "nope", Arity: 0}); len(rs) != 0 {
		t.Errorf("RulesFor(undefined) = %v, want empty", rs)
	}
}

func TestKnowledgeBase_FunctorsListsEveryDefinedFunctor(t *testing.T) {
	kb := New()
	kb.Insert(factRule("f"))
	kb.Insert(factRule("g", term.NewTerm(term.Integer(1))))

	want := map[Functor]bool{{Name: "f", Arity: 0}: true, {Name: "g", Arity: 1}: true}
	got := kb.Functors()
	if len(got) != len(want) {
		t.Fatalf("Functors() = %v, want %v", got, want)
	}
	for _, f := range got {
		if !want[f] {
			t.Errorf("unexpected functor %s", f)
		}
	}
}

func TestKnowledgeBase_InlineQueryFIFO(t *testing.T) {
	kb := New()
	if _, ok := kb.NextInlineQuery(); ok {
		t.Fatal("NextInlineQuery on empty KB reported a query")
	}
	g1 := &Query{Call: &term.Call{Name: "a"}}
	g2 := &Query{Call: &term.Call{Name: "b"}}
	kb.EnqueueQuery(g1)
	kb.EnqueueQuery(g2)

	got1, ok := kb.NextInlineQuery()
	if !ok || got1 != Goal(g1) {
		t.Fatalf("first NextInlineQuery = %v, %v, want %v, true", got1, ok, g1)
	}
	got2, ok := kb.NextInlineQuery()
	if !ok || got2 != Goal(g2) {
		t.Fatalf("second NextInlineQuery = %v, %v, want %v, true", got2, ok, g2)
	}
	if _, ok := kb.NextInlineQuery(); ok {
		t.Fatal("NextInlineQuery after draining reported a query")
	}
}
