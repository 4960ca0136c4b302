package vm

import "github.com/rulekit/rulekit/rules"

// contFrame is one link of the goal continuation: a persistent
// (structure-sharing) stack of goals still to run, each tagged with the
// rule activation it belongs to. Choice points capture a *contFrame
// pointer as their resume token instead of deep-copying the goal stack,
// per the trail-based VM's O(1) choice-point design.
type contFrame struct {
	goal       rules.Goal
	activation uint64
	trace      *TraceNode
	next       *contFrame
}

// push returns a new continuation with goal on top of cont, inheriting
// activation and parented under trace (nil if tracing is disabled).
func push(cont *contFrame, goal rules.Goal, activation uint64, trace *TraceNode) *contFrame {
	return &contFrame{goal: goal, activation: activation, trace: trace, next: cont}
}

// pushAll pushes goals in order so that goals[0] runs first, each
// becoming its own traced child of parent.
func pushAll(cont *contFrame, goals []rules.Goal, activation uint64, parent *TraceNode) *contFrame {
	for i := len(goals) - 1; i >= 0; i-- {
		var node *TraceNode
		if parent != nil {
			node = newTraceNode(goals[i].String())
			parent.prependChild(node)
		}
		cont = push(cont, goals[i], activation, node)
	}
	return cont
}
