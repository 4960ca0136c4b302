package vm

import (
	"github.com/rulekit/rulekit/rules"
	"github.com/rulekit/rulekit/term"
)

// cpKind tags which alternative-generation strategy a choice point uses.
type cpKind int

const (
	cpOr cpKind = iota
	cpQuery
	cpIn
	cpExternal
)

// choicePoint is a reified resume record: a trail mark to restore before
// retrying, the continuation to resume into, and kind-specific data for
// producing the next alternative. Everything needed to retry lives here
// instead of on a call stack, since the VM's own call stack returns to
// the host between every suspension point.
type choicePoint struct {
	kind       cpKind
	trailMark  int
	activation uint64
	cont       *contFrame
	trace      *TraceNode // parent node new alternatives are attached under

	// cpOr
	orRemaining []rules.Goal

	// cpQuery
	call       *term.Call
	candidates []*rules.Rule

	// cpIn
	elemVar        *term.Term
	elemRemaining  []*term.Term

	// cpExternal: re-asking the host for the next value of a live
	// multi-valued lookup, reusing the same call_id.
	callID    uint64
	target    *term.Term
	attribute term.Symbol
	args      []*term.Term
	result    term.Symbol
}

// exhausted reports whether this choice point has no alternative left to
// offer (cpExternal is never exhausted on its own: only an explicit
// call_result(callID, None) retires it, handled in query.go).
func (cp *choicePoint) exhausted() bool {
	switch cp.kind {
	case cpOr:
		return len(cp.orRemaining) == 0
	case cpQuery:
		return len(cp.candidates) == 0
	case cpIn:
		return len(cp.elemRemaining) == 0
	default:
		return false
	}
}
