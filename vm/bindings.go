package vm

import "github.com/rulekit/rulekit/term"

// bindings is the query's trail: a log of variable bindings in the order
// they were made. A choice point remembers the trail length at the time
// it was pushed; backtracking truncates the trail back to that mark,
// which is O(1) to record and O(trail-delta) to undo. This intentionally
// avoids per-frame hash maps.
type bindings struct {
	values map[term.Symbol]*term.Term
	trail  []term.Symbol
}

func newBindings() *bindings {
	return &bindings{values: map[term.Symbol]*term.Term{}}
}

// mark returns the current trail length, to be passed to undo later.
func (b *bindings) mark() int { return len(b.trail) }

// undo truncates the trail back to mark, removing every binding made
// since. Bindings are never partially undone: mark must be a value
// previously returned by mark on this same bindings.
func (b *bindings) undo(mark int) {
	for i := len(b.trail) - 1; i >= mark; i-- {
		delete(b.values, b.trail[i])
	}
	b.trail = b.trail[:mark]
}

// bind extends the trail with sym = val. Callers must have already
// confirmed sym is unbound.
func (b *bindings) bind(sym term.Symbol, val *term.Term) {
	b.values[sym] = val
	b.trail = append(b.trail, sym)
}

// lookup returns the term bound to sym, if any.
func (b *bindings) lookup(sym term.Symbol) (*term.Term, bool) {
	v, ok := b.values[sym]
	return v, ok
}

// deref follows variable bindings until it reaches an unbound Symbol or
// a non-Symbol value. It does not recurse into compound structure.
func (b *bindings) deref(t *term.Term) *term.Term {
	for {
		sym, ok := t.Value.(term.Symbol)
		if !ok {
			return t
		}
		bound, ok := b.lookup(sym)
		if !ok {
			return t
		}
		t = bound
	}
}

// plug fully substitutes every bound variable reachable from t, recursing
// into lists, dictionaries, and compound terms, producing a term with no
// bound variables left in it (unbound variables remain as Symbols).
func (b *bindings) plug(t *term.Term) *term.Term {
	t = b.deref(t)
	switch v := t.Value.(type) {
	case term.List:
		out := make(term.List, len(v))
		for i, e := range v {
			out[i] = b.plug(e)
		}
		return term.NewTerm(out)
	case term.Dictionary:
		out := make(term.Dictionary, len(v))
		for i, e := range v {
			out[i] = term.DictEntry{Key: e.Key, Value: b.plug(e.Value)}
		}
		return term.NewTerm(out)
	case *term.Call:
		args := make([]*term.Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = b.plug(a)
		}
		return term.NewTerm(&term.Call{Name: v.Name, Args: args})
	case *term.InstanceLiteral:
		fields := make(term.Dictionary, len(v.Fields))
		for i, e := range v.Fields {
			fields[i] = term.DictEntry{Key: e.Key, Value: b.plug(e.Value)}
		}
		return term.NewTerm(&term.InstanceLiteral{Tag: v.Tag, Fields: fields})
	default:
		return t
	}
}

// isGroundAfterPlug reports whether plugging t leaves no unbound Symbol,
// used to enforce the external protocol's "args are always ground"
// guarantee before emitting an ExternalCall event.
func isGroundAfterPlug(t *term.Term) bool {
	return t.IsGround()
}
