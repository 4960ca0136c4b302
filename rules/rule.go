package rules

import (
	"fmt"

	"github.com/rulekit/rulekit/term"
)

// Rule is `head := body;` (or, for a fact, `head;` with an empty body)
//.
type Rule struct {
	Head *term.Call
	Body Goal
}

// IsFact reports whether the rule has an empty body.
func (r *Rule) IsFact() bool {
	and, ok := r.Body.(*And)
	return ok && len(and.Goals) == 0
}

func (r *Rule) String() string {
	if r.IsFact() {
		return fmt.Sprintf("%s;", r.Head)
	}
	return fmt.Sprintf("%s := %s;", r.Head, r.Body)
}

// Functor is the (name, arity) identity used to index rules in the
// knowledge base (GLOSSARY "Functor").
type Functor struct {
	Name  string
	Arity int
}

func (f Functor) String() string { return fmt.Sprintf("%s/%d", f.Name, f.Arity) }

// FunctorOf returns the functor identity of a call.
func FunctorOf(c *term.Call) Functor {
	return Functor{Name: c.Name, Arity: len(c.Args)}
}
