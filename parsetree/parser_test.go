package parsetree

import (
	"strings"
	"testing"

	"github.com/rulekit/rulekit/rules"
	"github.com/rulekit/rulekit/term"
)

func TestParse_FactAndRule(t *testing.T) {
	rs, qs, err := Parse(`f(1); g(x) := f(x);`, "t.rk")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(qs) != 0 {
		t.Fatalf("unexpected inline queries: %v", qs)
	}
	if len(rs) != 2 {
		t.Fatalf("got %d rules, want 2", len(rs))
	}
	if !rs[0].IsFact() {
		t.Errorf("f(1) should parse as a fact, got %s", rs[0])
	}
	if rs[1].IsFact() {
		t.Errorf("g(x) := f(x) should not parse as a fact")
	}
	if got, want := rs[1].Head.String(), "g(x)"; got != want {
		t.Errorf("head = %q, want %q", got, want)
	}
}

func TestParse_InlineQuery(t *testing.T) {
	rs, qs, err := Parse(`?= f(1);`, "t.rk")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(rs) != 0 {
		t.Fatalf("unexpected rules: %v", rs)
	}
	if len(qs) != 1 {
		t.Fatalf("got %d inline queries, want 1", len(qs))
	}
	q, ok := qs[0].(*rules.Query)
	if !ok {
		t.Fatalf("inline query is a %T, want *rules.Query", qs[0])
	}
	if got, want := q.Call.String(), "f(1)"; got != want {
		t.Errorf("query call = %q, want %q", got, want)
	}
}

func TestParseGoal(t *testing.T) {
	g, err := ParseGoal("f(x)", "<test>")
	if err != nil {
		t.Fatalf("ParseGoal error: %v", err)
	}
	q, ok := g.(*rules.Query)
	if !ok {
		t.Fatalf("goal is a %T, want *rules.Query", g)
	}
	if got, want := q.Call.String(), "f(x)"; got != want {
		t.Errorf("goal = %q, want %q", got, want)
	}
}

func TestParseGoal_RejectsTrailingInput(t *testing.T) {
	if _, err := ParseGoal("f(x) g(x)", "<test>"); err == nil {
		t.Fatal("expected an error for trailing input after a goal")
	}
}

func TestParse_HeadSpecializerDesugarsToLeadingIsa(t *testing.T) {
	rs, _, err := Parse(`f(x: 1) := x == 1;`, "t.rk")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	and, ok := rs[0].Body.(*rules.And)
	if !ok || len(and.Goals) != 2 {
		t.Fatalf("body = %v, want a 2-goal conjunction", rs[0].Body)
	}
	isa, ok := and.Goals[0].(*rules.Isa)
	if !ok {
		t.Fatalf("first goal = %T, want *rules.Isa", and.Goals[0])
	}
	if got, want := isa.String(), "x isa 1"; got != want {
		t.Errorf("specializer goal = %q, want %q", got, want)
	}
}

func TestParse_AttributeAccessDesugarsToLookup(t *testing.T) {
	g, err := ParseGoal("x.name == y", "<test>")
	if err != nil {
		t.Fatalf("ParseGoal error: %v", err)
	}
	and, ok := g.(*rules.And)
	if !ok || len(and.Goals) != 2 {
		t.Fatalf("goal = %v, want a 2-goal conjunction (lookup + compare)", g)
	}
	lookup, ok := and.Goals[0].(*rules.Lookup)
	if !ok {
		t.Fatalf("first goal = %T, want *rules.Lookup", and.Goals[0])
	}
	if lookup.Attribute != "name" {
		t.Errorf("lookup attribute = %q, want %q", lookup.Attribute, "name")
	}
	cmp, ok := and.Goals[1].(*rules.Cmp)
	if !ok {
		t.Fatalf("second goal = %T, want *rules.Cmp", and.Goals[1])
	}
	if a, ok := cmp.A.Value.(term.Symbol); !ok || a != lookup.Result {
		t.Errorf("compare's left side = %v, want lookup result symbol %s", cmp.A, lookup.Result)
	}
}

func TestParse_InstanceLiteralAndDict(t *testing.T) {
	g, err := ParseGoal(`x = Foo{a: 1, b: "two"}`, "<test>")
	if err != nil {
		t.Fatalf("ParseGoal error: %v", err)
	}
	unify, ok := g.(*rules.Unify)
	if !ok {
		t.Fatalf("goal = %T, want *rules.Unify", g)
	}
	lit, ok := unify.B.Value.(*term.InstanceLiteral)
	if !ok {
		t.Fatalf("rhs = %T, want *term.InstanceLiteral", unify.B.Value)
	}
	if lit.Tag != "Foo" {
		t.Errorf("tag = %q, want %q", lit.Tag, "Foo")
	}
	if v, ok := lit.Fields.Get("a"); !ok || !v.Equal(term.NewTerm(term.Integer(1))) {
		t.Errorf("field a = %v, want 1", v)
	}
}

func TestParse_List(t *testing.T) {
	g, err := ParseGoal("x = [1, 2, 3]", "<test>")
	if err != nil {
		t.Fatalf("ParseGoal error: %v", err)
	}
	unify := g.(*rules.Unify)
	list, ok := unify.B.Value.(term.List)
	if !ok || len(list) != 3 {
		t.Fatalf("rhs = %v, want a 3-element list", unify.B)
	}
}

func TestParse_ComparisonOperators(t *testing.T) {
	cases := map[string]rules.CmpOp{
		"1 < 2":  rules.CmpLT,
		"1 <= 2": rules.CmpLE,
		"1 > 2":  rules.CmpGT,
		"1 >= 2": rules.CmpGE,
		"1 == 2": rules.CmpEQ,
		"1 != 2": rules.CmpNE,
	}
	for src, want := range cases {
		g, err := ParseGoal(src, "<test>")
		if err != nil {
			t.Fatalf("ParseGoal(%q) error: %v", src, err)
		}
		cmp, ok := g.(*rules.Cmp)
		if !ok {
			t.Fatalf("ParseGoal(%q) = %T, want *rules.Cmp", src, g)
		}
		if cmp.Op != want {
			t.Errorf("ParseGoal(%q).Op = %s, want %s", src, cmp.Op, want)
		}
	}
}

func TestParse_CutAndNegationAndIn(t *testing.T) {
	g, err := ParseGoal("!(x in [1, 2]), cut", "<test>")
	if err != nil {
		t.Fatalf("ParseGoal error: %v", err)
	}
	and, ok := g.(*rules.And)
	if !ok || len(and.Goals) != 2 {
		t.Fatalf("goal = %v, want a 2-goal conjunction", g)
	}
	not, ok := and.Goals[0].(*rules.Not)
	if !ok {
		t.Fatalf("first goal = %T, want *rules.Not", and.Goals[0])
	}
	inner, ok := not.Goal.(*rules.And)
	if !ok || len(inner.Goals) != 1 {
		t.Fatalf("negated goal = %v, want a 1-goal conjunction wrapping the parenthesized 'in'", not.Goal)
	}
	if _, ok := inner.Goals[0].(*rules.In); !ok {
		t.Fatalf("parenthesized goal = %T, want *rules.In", inner.Goals[0])
	}
	if _, ok := and.Goals[1].(*rules.Cut); !ok {
		t.Fatalf("second goal = %T, want *rules.Cut", and.Goals[1])
	}
}

func TestParse_Disjunction(t *testing.T) {
	g, err := ParseGoal("x == 1 | x == 2", "<test>")
	if err != nil {
		t.Fatalf("ParseGoal error: %v", err)
	}
	or, ok := g.(*rules.Or)
	if !ok || len(or.Goals) != 2 {
		t.Fatalf("goal = %v, want a 2-branch disjunction", g)
	}
}

func TestParse_DebugGoal(t *testing.T) {
	g, err := ParseGoal(`debug("checkpoint")`, "<test>")
	if err != nil {
		t.Fatalf("ParseGoal error: %v", err)
	}
	dbg, ok := g.(*rules.Debug)
	if !ok || dbg.Message != "checkpoint" {
		t.Fatalf("goal = %v, want Debug(\"checkpoint\")", g)
	}
}

func TestParse_ReservedWordAsPredicateNameFails(t *testing.T) {
	_, _, err := Parse(`cut(1);`, "t.rk")
	if err == nil {
		t.Fatal("expected a reserved-word error")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error = %T, want *parsetree.Error", err)
	}
	if perr.Code != ErrReservedWord {
		t.Errorf("error code = %s, want ReservedWord", perr.Code)
	}
}

func TestParse_UnterminatedStringFails(t *testing.T) {
	_, err := ParseGoal(`x = "abc`, "<test>")
	if err == nil {
		t.Fatal("expected an unterminated-string error")
	}
	if !strings.Contains(err.Error(), "UnexpectedEOF") {
		t.Errorf("error = %v, want UnexpectedEOF", err)
	}
}

func TestParse_IntegerOverflowFails(t *testing.T) {
	_, err := ParseGoal("x = 99999999999999999999999999", "<test>")
	if err == nil {
		t.Fatal("expected an integer-overflow error")
	}
	perr, ok := err.(*Error)
	if !ok || perr.Code != ErrIntegerOverflow {
		t.Fatalf("error = %v, want IntegerOverflow", err)
	}
}

func TestParse_UnrecognizedTokenFails(t *testing.T) {
	_, err := ParseGoal("x = @", "<test>")
	if err == nil {
		t.Fatal("expected an unrecognized-token error")
	}
}

func TestParse_ErrorReportsLocation(t *testing.T) {
	_, _, err := Parse("f(1);\ncut(2);", "policy.rk")
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := err.Error(); !strings.HasPrefix(got, "policy.rk:2:") {
		t.Errorf("error location = %q, want it to start with \"policy.rk:2:\"", got)
	}
}
