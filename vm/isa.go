package vm

import (
	"github.com/rulekit/rulekit/rules"
	"github.com/rulekit/rulekit/term"
)

// isaOutcome is the result of matching a term against a pattern. When
// needsExternal is set, matched is meaningless and goals must be pushed
// onto the continuation instead: a dictionary or instance-literal
// pattern matched against an external instance can only be resolved by
// asking the host for each field's value, so it desugars into a
// conjunction of Lookup and nested Isa goals rather than completing
// synchronously.
type isaOutcome struct {
	matched       bool
	needsExternal bool
	goals         []rules.Goal
}

// isaMatch performs the structural match described for Isa: scalar
// equality, list element-wise matching, dictionary subset matching
// (extra keys on the value side are allowed, unlike Unify's exact key
// set), and tag+field matching for instance literals. An unbound target
// falls back to ordinary unification against the pattern, which lets a
// specializer on a not-yet-bound parameter behave like an assertion.
func (q *Query) isaMatch(target, pattern *term.Term) isaOutcome {
	t := q.bindings.deref(target)
	p := q.bindings.deref(pattern)

	if _, ok := t.Value.(term.Symbol); ok {
		return isaOutcome{matched: unify(q.bindings, t, p)}
	}

	switch pv := p.Value.(type) {
	case term.Dictionary:
		switch tv := t.Value.(type) {
		case term.Dictionary:
			var goals []rules.Goal
			needsExternal := false
			for _, e := range pv {
				val, found := tv.Get(e.Key)
				if !found {
					return isaOutcome{matched: false}
				}
				sub := q.isaMatch(val, e.Value)
				if sub.needsExternal {
					needsExternal = true
					goals = append(goals, sub.goals...)
					continue
				}
				if !sub.matched {
					return isaOutcome{matched: false}
				}
			}
			if needsExternal {
				return isaOutcome{needsExternal: true, goals: goals}
			}
			return isaOutcome{matched: true}
		case *term.ExternalInstance:
			return q.desugarDictIsa(t, pv)
		default:
			return isaOutcome{matched: false}
		}
	case *term.InstanceLiteral:
		tv, ok := t.Value.(*term.ExternalInstance)
		if !ok {
			return isaOutcome{matched: false}
		}
		if tv.Literal != nil && tv.Literal.Tag != pv.Tag {
			return isaOutcome{matched: false}
		}
		return q.desugarDictIsa(t, pv.Fields)
	case term.List:
		tv, ok := t.Value.(term.List)
		if !ok || len(tv) != len(pv) {
			return isaOutcome{matched: false}
		}
		var goals []rules.Goal
		needsExternal := false
		for i := range pv {
			sub := q.isaMatch(tv[i], pv[i])
			if sub.needsExternal {
				needsExternal = true
				goals = append(goals, sub.goals...)
				continue
			}
			if !sub.matched {
				return isaOutcome{matched: false}
			}
		}
		if needsExternal {
			return isaOutcome{needsExternal: true, goals: goals}
		}
		return isaOutcome{matched: true}
	default:
		return isaOutcome{matched: t.Value.Equal(p.Value)}
	}
}

// desugarDictIsa builds `result = target.key, result isa pattern` for
// every field of an Isa pattern matched against an external instance,
// conjoined so all fields must match. The Lookup goals carry the VM's
// external-call suspension machinery; isaMatch itself never blocks.
func (q *Query) desugarDictIsa(target *term.Term, fields term.Dictionary) isaOutcome {
	goals := make([]rules.Goal, 0, len(fields)*2)
	for _, e := range fields {
		result := q.nextInternalSymbol("isa")
		goals = append(goals,
			&rules.Lookup{Target: target, Attribute: e.Key, Result: result},
			&rules.Isa{Term: term.NewTerm(result), Pattern: e.Value},
		)
	}
	return isaOutcome{needsExternal: true, goals: goals}
}
