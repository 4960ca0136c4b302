package rules

import "sync"

// KnowledgeBase is an ordered mapping from functor to the sequence of
// rules defined for it. Insertion order is preserved across multiple
// loads; the engine never reorders rules.
//
// A KnowledgeBase is append-only for its lifetime: Insert only adds
// rules, never removes or reorders them. Concurrent queries may safely
// range over RulesFor while a load appends more rules for a *different*
// functor; the host is responsible for serializing loads against queries
// on the same functor.
type KnowledgeBase struct {
	mu      sync.RWMutex
	rules   map[Functor][]*Rule
	queries []Goal
}

// New returns an empty knowledge base.
func New() *KnowledgeBase {
	return &KnowledgeBase{rules: map[Functor][]*Rule{}}
}

// Insert appends rule to its functor's ordered list.
func (kb *KnowledgeBase) Insert(rule *Rule) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	f := FunctorOf(rule.Head)
	kb.rules[f] = append(kb.rules[f], rule)
}

// EnqueueQuery appends an inline query (`?= goal;`) to the FIFO drained
// by NextInlineQuery.
func (kb *KnowledgeBase) EnqueueQuery(goal Goal) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.queries = append(kb.queries, goal)
}

// NextInlineQuery pops the oldest pending inline query, if any.
func (kb *KnowledgeBase) NextInlineQuery() (Goal, bool) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if len(kb.queries) == 0 {
		return nil, false
	}
	goal := kb.queries[0]
	kb.queries = kb.queries[1:]
	return goal, true
}

// RulesFor returns the current ordered rule list for functor. The
// returned slice is a snapshot header (append-only backing array), safe
// to range over even if a concurrent Insert grows the same functor's
// list afterward: rule lists only grow, so positions already enumerated
// never move or disappear.
func (kb *KnowledgeBase) RulesFor(f Functor) []*Rule {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.rules[f]
}

// Functors returns every functor with at least one rule, for diagnostics
// (e.g. "did you mean" suggestions on an unresolved query).
func (kb *KnowledgeBase) Functors() []Functor {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	out := make([]Functor, 0, len(kb.rules))
	for f := range kb.rules {
		out = append(out, f)
	}
	return out
}
