package vm

import "github.com/rulekit/rulekit/term"

// unify attempts syntactic unification of x and y, occurs check off,
// extending b's trail for every newly bound variable. On failure the
// caller is responsible for undoing the trail back to a mark taken
// before the call; unify itself leaves whatever partial bindings it made
// before failing, since the VM always backtracks through a choice point
// mark rather than unwinding unify calls individually.
func unify(b *bindings, x, y *term.Term) bool {
	x = b.deref(x)
	y = b.deref(y)

	xs, xIsVar := x.Value.(term.Symbol)
	ys, yIsVar := y.Value.(term.Symbol)
	switch {
	case xIsVar && yIsVar:
		if xs == ys {
			return true
		}
		b.bind(xs, y)
		return true
	case xIsVar:
		b.bind(xs, y)
		return true
	case yIsVar:
		b.bind(ys, x)
		return true
	}

	switch xv := x.Value.(type) {
	case term.List:
		yv, ok := y.Value.(term.List)
		if !ok || len(xv) != len(yv) {
			return false
		}
		for i := range xv {
			if !unify(b, xv[i], yv[i]) {
				return false
			}
		}
		return true
	case term.Dictionary:
		yv, ok := y.Value.(term.Dictionary)
		if !ok || len(xv) != len(yv) {
			return false
		}
		return unifyDict(b, xv, yv)
	case *term.Call:
		yv, ok := y.Value.(*term.Call)
		if !ok || xv.Name != yv.Name || len(xv.Args) != len(yv.Args) {
			return false
		}
		for i := range xv.Args {
			if !unify(b, xv.Args[i], yv.Args[i]) {
				return false
			}
		}
		return true
	case *term.InstanceLiteral:
		yv, ok := y.Value.(*term.InstanceLiteral)
		if !ok || xv.Tag != yv.Tag {
			return false
		}
		return unifyDict(b, xv.Fields, yv.Fields)
	case *term.ExternalInstance:
		yv, ok := y.Value.(*term.ExternalInstance)
		return ok && xv.ID == yv.ID
	default:
		return x.Value.Equal(y.Value)
	}
}

// unifyDict unifies two dictionaries whose key sets must be exactly
// equal (as opposed to the subset check Isa performs).
func unifyDict(b *bindings, x, y term.Dictionary) bool {
	for _, e := range x {
		v, ok := y.Get(e.Key)
		if !ok {
			return false
		}
		if !unify(b, e.Value, v) {
			return false
		}
	}
	return true
}
