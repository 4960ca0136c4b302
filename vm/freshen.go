package vm

import (
	"strconv"

	"github.com/rulekit/rulekit/rules"
	"github.com/rulekit/rulekit/term"
)

// freshener renames every Symbol *value* appearing in a rule's head and
// body to `_<name>_<activation>`, consistently within a single
// activation, without deep-copying anything that contains no variables.
// Dictionary keys and instance-literal tags are plain Symbol labels, not
// variable references, and are left untouched.
type freshener struct {
	suffix  string
	renamed map[term.Symbol]term.Symbol
}

func newFreshener(activation uint64) *freshener {
	return &freshener{suffix: strconv.FormatUint(activation, 10), renamed: map[term.Symbol]term.Symbol{}}
}

func (f *freshener) rename(s term.Symbol) term.Symbol {
	if r, ok := f.renamed[s]; ok {
		return r
	}
	r := term.Symbol("_" + string(s) + "_" + f.suffix)
	f.renamed[s] = r
	return r
}

func (f *freshener) term(t *term.Term) *term.Term {
	if t == nil {
		return nil
	}
	switch v := t.Value.(type) {
	case term.Symbol:
		return term.NewTerm(f.rename(v))
	case term.List:
		out := make(term.List, len(v))
		for i, e := range v {
			out[i] = f.term(e)
		}
		return term.NewTerm(out)
	case term.Dictionary:
		out := make(term.Dictionary, len(v))
		for i, e := range v {
			out[i] = term.DictEntry{Key: e.Key, Value: f.term(e.Value)}
		}
		return term.NewTerm(out)
	case *term.Call:
		args := make([]*term.Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = f.term(a)
		}
		return term.NewTerm(&term.Call{Name: v.Name, Args: args})
	case *term.InstanceLiteral:
		fields := make(term.Dictionary, len(v.Fields))
		for i, e := range v.Fields {
			fields[i] = term.DictEntry{Key: e.Key, Value: f.term(e.Value)}
		}
		return term.NewTerm(&term.InstanceLiteral{Tag: v.Tag, Fields: fields})
	default:
		// Ground atoms (Integer, Boolean, String) and external instances
		// carry no variables, so they are returned unchanged.
		return t
	}
}

func (f *freshener) call(c *term.Call) *term.Call {
	args := make([]*term.Term, len(c.Args))
	for i, a := range c.Args {
		args[i] = f.term(a)
	}
	return &term.Call{Name: c.Name, Args: args}
}

func (f *freshener) goal(g rules.Goal) rules.Goal {
	switch v := g.(type) {
	case *rules.Unify:
		return &rules.Unify{A: f.term(v.A), B: f.term(v.B)}
	case *rules.Isa:
		return &rules.Isa{Term: f.term(v.Term), Pattern: f.term(v.Pattern)}
	case *rules.Not:
		return &rules.Not{Goal: f.goal(v.Goal)}
	case *rules.And:
		return &rules.And{Goals: f.goals(v.Goals)}
	case *rules.Or:
		return &rules.Or{Goals: f.goals(v.Goals)}
	case *rules.Query:
		return &rules.Query{Call: f.call(v.Call)}
	case *rules.Lookup:
		return &rules.Lookup{
			Target:    f.term(v.Target),
			Attribute: v.Attribute,
			Args:      f.terms(v.Args),
			Result:    f.rename(v.Result),
		}
	case *rules.Cmp:
		return &rules.Cmp{Op: v.Op, A: f.term(v.A), B: f.term(v.B)}
	case *rules.In:
		return &rules.In{Elem: f.term(v.Elem), Collection: f.term(v.Collection)}
	case *rules.Debug:
		return &rules.Debug{Message: v.Message}
	case *rules.Cut:
		return &rules.Cut{}
	default:
		return g
	}
}

func (f *freshener) goals(gs []rules.Goal) []rules.Goal {
	out := make([]rules.Goal, len(gs))
	for i, g := range gs {
		out[i] = f.goal(g)
	}
	return out
}

func (f *freshener) terms(ts []*term.Term) []*term.Term {
	out := make([]*term.Term, len(ts))
	for i, t := range ts {
		out[i] = f.term(t)
	}
	return out
}
