// Package rules implements the policy data model: rule bodies (goals),
// rules, and the knowledge base that indexes them by functor.
package rules

import (
	"fmt"
	"strings"

	"github.com/rulekit/rulekit/term"
)

// Goal is a node of a rule body or query. Every variant is a
// distinct, comparable Go type implementing this marker interface so the
// VM can type-switch on dispatch.
type Goal interface {
	fmt.Stringer
	isGoal()
}

// Unify is the `a = b` goal: syntactic unification of two terms.
type Unify struct {
	A, B *term.Term
}

func (*Unify) isGoal() {}
func (g *Unify) String() string { return fmt.Sprintf("%s=%s", g.A, g.B) }

// Isa is the `term isa pattern` structural match goal.
type Isa struct {
	Term, Pattern *term.Term
}

func (*Isa) isGoal() {}
func (g *Isa) String() string { return fmt.Sprintf("%s isa %s", g.Term, g.Pattern) }

// Not is the `!goal` negation-as-failure goal.
type Not struct {
	Goal Goal
}

func (*Not) isGoal() {}
func (g *Not) String() string { return "!" + g.Goal.String() }

// And is a conjunction of goals, evaluated left to right.
type And struct {
	Goals []Goal
}

func (*And) isGoal() {}
func (g *And) String() string { return joinGoals(g.Goals, ",") }

// Or is a disjunction of goals, each tried in order on backtrack.
type Or struct {
	Goals []Goal
}

func (*Or) isGoal() {}
func (g *Or) String() string { return joinGoals(g.Goals, "|") }

func joinGoals(goals []Goal, sep string) string {
	parts := make([]string, len(goals))
	for i, gl := range goals {
		parts[i] = gl.String()
	}
	return strings.Join(parts, sep)
}

// Query is a predicate invocation that resolves against the knowledge
// base's rules for (Call.Name, Call.Arity()).
type Query struct {
	Call *term.Call
}

func (*Query) isGoal() {}
func (g *Query) String() string { return g.Call.String() }

// Lookup requests an attribute value (or method result) on an external
// instance or a dictionary key.
type Lookup struct {
	Target    *term.Term
	Attribute term.Symbol
	Args      []*term.Term
	Result    term.Symbol
}

func (*Lookup) isGoal() {}
func (g *Lookup) String() string {
	if len(g.Args) == 0 {
		return fmt.Sprintf("%s = %s.%s", g.Result, g.Target, g.Attribute)
	}
	parts := make([]string, len(g.Args))
	for i, a := range g.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s = %s.%s(%s)", g.Result, g.Target, g.Attribute, strings.Join(parts, ", "))
}

// CmpOp is a comparison operator for Cmp goals.
type CmpOp string

// Comparison operators.
const (
	CmpLT CmpOp = "<"
	CmpLE CmpOp = "<="
	CmpGT CmpOp = ">"
	CmpGE CmpOp = ">="
	CmpEQ CmpOp = "=="
	CmpNE CmpOp = "!="
)

// Cmp is an integer comparison goal; both operands must reduce to
// Integer or the VM raises a TypeError.
type Cmp struct {
	Op   CmpOp
	A, B *term.Term
}

func (*Cmp) isGoal() {}
func (g *Cmp) String() string { return fmt.Sprintf("%s%s%s", g.A, g.Op, g.B) }

// In is the list-membership goal `elem in collection`.
type In struct {
	Elem, Collection *term.Term
}

func (*In) isGoal() {}
func (g *In) String() string { return fmt.Sprintf("%s in %s", g.Elem, g.Collection) }

// Debug emits a Debug event carrying message, then suspends for a
// debugger command.
type Debug struct {
	Message string
}

func (*Debug) isGoal() {}
func (g *Debug) String() string { return fmt.Sprintf("debug(%q)", g.Message) }

// Cut removes every choice point created since entering the current rule
// activation.
type Cut struct{}

func (*Cut) isGoal() {}
func (*Cut) String() string { return "cut" }
