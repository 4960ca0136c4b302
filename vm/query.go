package vm

import (
	"strconv"

	"github.com/rulekit/rulekit/rules"
	"github.com/rulekit/rulekit/term"
)

// EventKind tags the variant of Event a Query yields from NextEvent.
type EventKind int

// Event kinds.
const (
	// EventResult carries one solution's bindings for the query's free
	// variables, plus a trace tree when tracing was requested.
	EventResult EventKind = iota
	// EventExternalCall asks the host to resolve an attribute or method
	// lookup on an external instance (or construct one from an
	// InstanceLiteral), tagged with CallID for the matching CallResult.
	EventExternalCall
	// EventDebug surfaces a debug(...) goal's message and suspends the
	// query until DebugCommand is called.
	EventDebug
	// EventDone reports that every alternative has been exhausted: no
	// further Result events will ever be produced.
	EventDone
)

func (k EventKind) String() string {
	switch k {
	case EventResult:
		return "Result"
	case EventExternalCall:
		return "ExternalCall"
	case EventDebug:
		return "Debug"
	case EventDone:
		return "Done"
	default:
		return "UnknownEvent"
	}
}

// Event is what NextEvent returns: exactly one of the fields below is
// meaningful, selected by Kind.
type Event struct {
	Kind EventKind

	// EventResult
	Bindings map[term.Symbol]*term.Term
	Trace    *TraceNode

	// EventExternalCall
	CallID    uint64
	Instance  *term.Term
	Attribute term.Symbol
	Args      []*term.Term

	// EventDebug
	Message string
}

// phase tracks the three-step dance imposed by call_result's signature
// returning no Event of its own: a Result must be handed back to the
// host before the search resumes, and resuming means popping a choice
// point, which can only happen on the *next* NextEvent call.
type phase int

const (
	phaseRun phase = iota
	phaseBacktrackThenRun
	phaseDone
)

type pendingLookup struct {
	callID     uint64
	target     *term.Term
	attribute  term.Symbol
	args       []*term.Term
	result     term.Symbol
	cont       *contFrame
	activation uint64
}

// Query drives one goal to its solutions, suspending at every point the
// host must be consulted: a Result to report, an external call to
// resolve, or a debug breakpoint to step past. All search state -
// bindings, choice points, and the goal continuation - lives here so the
// engine can hold any number of independently-paused queries at once.
type Query struct {
	id  string
	kb  *rules.KnowledgeBase
	opt Options

	bindings     *bindings
	choicePoints []*choicePoint
	cont         *contFrame
	queryVars    []term.Symbol

	activationCounter uint64
	activationEntry   map[uint64]int
	callIDCounter     uint64
	internalCounter   uint64

	goalsExecuted uint64
	phase         phase
	err           *Error

	awaitingCallID  uint64
	pending         *pendingLookup
	awaitingDebug   bool
	debugCont       *contFrame
	debugActivation uint64

	rootTrace *TraceNode

	Instrumentation *Instrumentation
}

// Options configures a Query. The zero value is a usable default: no
// trace, no instrumentation, and the package's default goal budget.
type Options struct {
	ID              string
	MaxGoals        uint64
	Trace           bool
	Instrumentation *Instrumentation
}

// DefaultMaxGoals bounds an unconfigured Query's search so a buggy or
// adversarial rule set cannot spin the host process forever.
const DefaultMaxGoals = 10_000

// NewQuery starts a new query for goal against kb. goal is run exactly
// as written, at the root activation (id 0), so its free variables keep
// their source-level names in the Bindings a Result reports.
func NewQuery(kb *rules.KnowledgeBase, goal rules.Goal, opt Options) *Query {
	maxGoals := opt.MaxGoals
	if maxGoals == 0 {
		maxGoals = DefaultMaxGoals
	}
	q := &Query{
		id:              opt.ID,
		kb:              kb,
		opt:             opt,
		bindings:        newBindings(),
		activationEntry: map[uint64]int{0: 0},
		Instrumentation: opt.Instrumentation,
	}
	q.opt.MaxGoals = maxGoals
	q.queryVars = collectSymbols(goal, nil)

	var root *TraceNode
	if opt.Trace {
		root = newTraceNode(goal.String())
		q.rootTrace = root
	}
	q.cont = push(nil, goal, 0, root)
	return q
}

// ID returns the identifier this query was created with (empty if none
// was given), echoed in every Error it produces.
func (q *Query) ID() string { return q.id }

// NextEvent advances the search to its next suspension point: a
// solution, an external call request, a debug breakpoint, or exhaustion.
// It is an error to call NextEvent while awaiting a CallResult or
// DebugCommand, or after the query has already produced an Error.
func (q *Query) NextEvent() (Event, error) {
	if q.err != nil {
		return Event{}, deadQueryError(q.id, q.err)
	}
	if q.awaitingCallID != 0 {
		return Event{}, newError(q.id, ErrHostError, "next_event called while awaiting call_result for call_id %d", q.awaitingCallID)
	}
	if q.awaitingDebug {
		return Event{}, newError(q.id, ErrHostError, "next_event called while awaiting a debug_command")
	}
	if q.phase == phaseDone {
		return Event{Kind: EventDone}, nil
	}
	if q.phase == phaseBacktrackThenRun {
		q.phase = phaseRun
		cont, ev, exhausted := q.popAndRetry()
		if exhausted {
			q.phase = phaseDone
			return Event{Kind: EventDone}, nil
		}
		if ev != nil {
			return *ev, nil
		}
		q.cont = cont
	}
	return q.run()
}

// CallResult delivers the host's answer to a pending EventExternalCall.
// hasValue false means "no more values" (for Lookup's multi-valued
// semantics, this retires the lookup instead of offering another
// alternative on backtrack).
func (q *Query) CallResult(callID uint64, value *term.Term, hasValue bool) error {
	if q.err != nil {
		return deadQueryError(q.id, q.err)
	}
	if q.awaitingCallID == 0 || q.awaitingCallID != callID {
		return newError(q.id, ErrHostError, "call_result for unknown or inactive call_id %d", callID)
	}
	pending := q.pending
	q.awaitingCallID = 0
	q.pending = nil

	if !hasValue {
		// No value, and no further re-ask is possible: the lookup
		// simply failed. Defer the actual backtrack to the next
		// NextEvent call, which is the only place a new Event can be
		// returned to the host.
		q.phase = phaseBacktrackThenRun
		return nil
	}

	mark := q.bindings.mark()
	q.choicePoints = append(q.choicePoints, &choicePoint{
		kind:       cpExternal,
		trailMark:  mark,
		activation: pending.activation,
		cont:       pending.cont,
		callID:     pending.callID,
		target:     pending.target,
		attribute:  pending.attribute,
		args:       pending.args,
		result:     pending.result,
	})
	if q.Instrumentation != nil {
		q.Instrumentation.choicePointPushed(mark)
	}
	if !unify(q.bindings, term.NewTerm(pending.result), value) {
		// The choice point just pushed lets a future backtrack ask
		// for a different value; this attempt's own failure is
		// handled like any other, deferred to the next NextEvent.
		q.phase = phaseBacktrackThenRun
		return nil
	}
	q.cont = pending.cont
	return nil
}

// DebugCommand resumes a query suspended on an EventDebug. The VM does
// not interpret the command text itself: the Debug goal has already
// yielded its message, and any command (step, continue, inspect) is
// equivalent from the VM's point of view once acknowledged, since this
// implementation has no interactive breakpoint state machine beyond the
// single suspend point.
func (q *Query) DebugCommand(text string) error {
	if q.err != nil {
		return deadQueryError(q.id, q.err)
	}
	if !q.awaitingDebug {
		return newError(q.id, ErrHostError, "debug_command called with no pending debug suspension")
	}
	q.awaitingDebug = false
	q.cont = q.debugCont
	q.debugCont = nil
	return nil
}

// run executes goals synchronously until the continuation is empty
// (success), a goal requires host interaction (Debug, ExternalCall), the
// goal budget is exceeded, or every choice point is exhausted.
func (q *Query) run() (Event, error) {
	for {
		if q.cont == nil {
			q.phase = phaseBacktrackThenRun
			return q.makeResultEvent(), nil
		}
		frame := q.cont
		q.cont = frame.next
		q.goalsExecuted++
		if q.Instrumentation != nil {
			q.Instrumentation.goalExecuted()
		}
		if q.goalsExecuted > q.opt.MaxGoals {
			err := newError(q.id, ErrStackOverflow, "exceeded maximum of %d executed goals", q.opt.MaxGoals)
			q.err = err
			return Event{}, err
		}

		ok, ev, err := q.dispatch(frame)
		if err != nil {
			q.err = err
			return Event{}, err
		}
		if ev != nil {
			return *ev, nil
		}
		if ok {
			continue
		}

		cont, ev2, exhausted := q.popAndRetry()
		if exhausted {
			q.phase = phaseDone
			return Event{Kind: EventDone}, nil
		}
		if ev2 != nil {
			return *ev2, nil
		}
		q.cont = cont
	}
}

// dispatch executes exactly one goal. The returned bool is the goal's
// success/failure outcome; a non-nil event means the goal suspended for
// host interaction instead of succeeding or failing outright.
func (q *Query) dispatch(frame *contFrame) (bool, *Event, *Error) {
	switch g := frame.goal.(type) {
	case *rules.Unify:
		return unify(q.bindings, g.A, g.B), nil, nil

	case *rules.Isa:
		outcome := q.isaMatch(g.Term, g.Pattern)
		if outcome.needsExternal {
			q.cont = pushAll(frame.next, outcome.goals, frame.activation, frame.trace)
			return true, nil, nil
		}
		return outcome.matched, nil, nil

	case *rules.Not:
		ok, err := q.negationSucceeds(g.Goal, frame.activation)
		if err != nil {
			return false, nil, err
		}
		return !ok, nil, nil

	case *rules.And:
		q.cont = pushAll(frame.next, g.Goals, frame.activation, frame.trace)
		return true, nil, nil

	case *rules.Or:
		return q.dispatchOr(g, frame)

	case *rules.Query:
		candidates := q.kb.RulesFor(rules.FunctorOf(g.Call))
		newCont, ok := q.tryRules(g.Call, candidates, frame.next, frame.trace)
		if !ok {
			return false, nil, nil
		}
		q.cont = newCont
		return true, nil, nil

	case *rules.Lookup:
		return q.dispatchLookup(g, frame)

	case *rules.Cmp:
		return q.dispatchCmp(g)

	case *rules.In:
		return q.dispatchIn(g, frame)

	case *rules.Debug:
		q.awaitingDebug = true
		q.debugCont = frame.next
		q.debugActivation = frame.activation
		ev := Event{Kind: EventDebug, Message: g.Message}
		return false, &ev, nil

	case *rules.Cut:
		if depth, ok := q.activationEntry[frame.activation]; ok && depth < len(q.choicePoints) {
			q.choicePoints = q.choicePoints[:depth]
		}
		return true, nil, nil

	default:
		return false, nil, newError(q.id, ErrHostError, "unknown goal type %T", g)
	}
}

func (q *Query) dispatchOr(g *rules.Or, frame *contFrame) (bool, *Event, *Error) {
	if len(g.Goals) == 0 {
		return false, nil, nil
	}
	first, rest := g.Goals[0], g.Goals[1:]
	mark := q.bindings.mark()
	if len(rest) > 0 {
		q.choicePoints = append(q.choicePoints, &choicePoint{
			kind: cpOr, trailMark: mark, activation: frame.activation,
			cont: frame.next, trace: frame.trace, orRemaining: rest,
		})
		if q.Instrumentation != nil {
			q.Instrumentation.choicePointPushed(mark)
		}
	}
	var node *TraceNode
	if frame.trace != nil {
		node = newTraceNode(first.String())
		frame.trace.appendChild(node)
	}
	q.cont = push(frame.next, first, frame.activation, node)
	return true, nil, nil
}

func (q *Query) dispatchCmp(g *rules.Cmp) (bool, *Event, *Error) {
	a := q.bindings.deref(g.A)
	b := q.bindings.deref(g.B)
	ai, aok := a.Value.(term.Integer)
	bi, bok := b.Value.(term.Integer)
	if !aok || !bok {
		return false, nil, newError(q.id, ErrTypeError, "comparison %s%s%s requires integers", a, g.Op, b)
	}
	var result bool
	switch g.Op {
	case rules.CmpLT:
		result = ai < bi
	case rules.CmpLE:
		result = ai <= bi
	case rules.CmpGT:
		result = ai > bi
	case rules.CmpGE:
		result = ai >= bi
	case rules.CmpEQ:
		result = ai == bi
	case rules.CmpNE:
		result = ai != bi
	default:
		return false, nil, newError(q.id, ErrHostError, "unknown comparison operator %q", g.Op)
	}
	return result, nil, nil
}

func (q *Query) dispatchIn(g *rules.In, frame *contFrame) (bool, *Event, *Error) {
	coll := q.bindings.deref(g.Collection)
	lst, ok := coll.Value.(term.List)
	if !ok {
		return false, nil, newError(q.id, ErrTypeError, "'in' requires a list, got %s", coll)
	}
	if len(lst) == 0 {
		return false, nil, nil
	}
	first, rest := lst[0], lst[1:]
	mark := q.bindings.mark()
	if len(rest) > 0 {
		q.choicePoints = append(q.choicePoints, &choicePoint{
			kind: cpIn, trailMark: mark, activation: frame.activation,
			cont: frame.next, trace: frame.trace, elemVar: g.Elem, elemRemaining: rest,
		})
		if q.Instrumentation != nil {
			q.Instrumentation.choicePointPushed(mark)
		}
	}
	ok2 := unify(q.bindings, g.Elem, first)
	if frame.trace != nil {
		frame.trace.appendChild(newTraceNode((&rules.Unify{A: g.Elem, B: first}).String()))
	}
	return ok2, nil, nil
}

// dispatchLookup resolves a dictionary attribute directly, or suspends
// for the host when target is an opaque external instance or a literal
// the host must first construct.
func (q *Query) dispatchLookup(g *rules.Lookup, frame *contFrame) (bool, *Event, *Error) {
	target := q.bindings.deref(g.Target)
	switch tv := target.Value.(type) {
	case term.Dictionary:
		if len(g.Args) > 0 {
			return false, nil, newError(q.id, ErrTypeError, "dictionary %s has no method %q", target, g.Attribute)
		}
		val, found := tv.Get(g.Attribute)
		if !found {
			return false, nil, nil
		}
		return unify(q.bindings, term.NewTerm(g.Result), val), nil, nil

	case *term.ExternalInstance, *term.InstanceLiteral:
		pluggedArgs := make([]*term.Term, len(g.Args))
		for i, a := range g.Args {
			p := q.bindings.plug(a)
			if !isGroundAfterPlug(p) {
				return false, nil, newError(q.id, ErrTypeError, "external call arguments must be ground, got %s", p)
			}
			pluggedArgs[i] = p
		}
		pluggedTarget := q.bindings.plug(target)
		callID := q.nextCallID()
		q.awaitingCallID = callID
		q.pending = &pendingLookup{
			callID: callID, target: pluggedTarget, attribute: g.Attribute,
			args: pluggedArgs, result: g.Result, cont: frame.next, activation: frame.activation,
		}
		if q.Instrumentation != nil {
			q.Instrumentation.externalCallIssued()
		}
		ev := Event{Kind: EventExternalCall, CallID: callID, Instance: pluggedTarget, Attribute: g.Attribute, Args: pluggedArgs}
		return false, &ev, nil

	default:
		return false, nil, newError(q.id, ErrTypeError, "cannot look up attribute %q on %s", g.Attribute, target)
	}
}

// tryRules resolves a call against candidates in order, freshening and
// head-unifying each in turn, leaving a choice point for any remaining
// candidates the moment one succeeds. Candidates whose head simply fails
// to unify are skipped silently, matching ordinary Prolog clause
// resolution rather than treating a head mismatch as a hard failure.
func (q *Query) tryRules(call *term.Call, candidates []*rules.Rule, cont *contFrame, parentTrace *TraceNode) (*contFrame, bool) {
	for i, rule := range candidates {
		depthAtEntry := len(q.choicePoints)
		mark := q.bindings.mark()
		activation := q.nextActivation()
		fr := newFreshener(activation)

		headArgs := make([]*term.Term, len(rule.Head.Args))
		for j, a := range rule.Head.Args {
			headArgs[j] = fr.term(a)
		}
		unified := len(headArgs) == len(call.Args)
		for j := 0; unified && j < len(headArgs); j++ {
			if !unify(q.bindings, headArgs[j], call.Args[j]) {
				unified = false
			}
		}
		if !unified {
			q.bindings.undo(mark)
			continue
		}

		if i+1 < len(candidates) {
			q.choicePoints = append(q.choicePoints, &choicePoint{
				kind: cpQuery, trailMark: mark, activation: activation,
				cont: cont, trace: parentTrace, call: call, candidates: candidates[i+1:],
			})
			if q.Instrumentation != nil {
				q.Instrumentation.choicePointPushed(mark)
			}
		}
		q.activationEntry[activation] = depthAtEntry

		body := fr.goal(rule.Body)
		var bodyNode *TraceNode
		if parentTrace != nil {
			ruleNode := newTraceNode(rule.String())
			parentTrace.appendChild(ruleNode)
			bodyNode = newTraceNode(body.String())
			ruleNode.appendChild(bodyNode)
		}
		return push(cont, body, activation, bodyNode), true
	}
	return nil, false
}

// popAndRetry pops choice points until one yields a new continuation or
// an external-call event, or the stack runs dry.
func (q *Query) popAndRetry() (*contFrame, *Event, bool) {
	for len(q.choicePoints) > 0 {
		cp := q.choicePoints[len(q.choicePoints)-1]
		q.choicePoints = q.choicePoints[:len(q.choicePoints)-1]
		if q.Instrumentation != nil {
			q.Instrumentation.backtracked()
		}
		q.bindings.undo(cp.trailMark)

		switch cp.kind {
		case cpOr:
			if len(cp.orRemaining) == 0 {
				continue
			}
			first, rest := cp.orRemaining[0], cp.orRemaining[1:]
			if len(rest) > 0 {
				q.choicePoints = append(q.choicePoints, &choicePoint{
					kind: cpOr, trailMark: cp.trailMark, activation: cp.activation,
					cont: cp.cont, trace: cp.trace, orRemaining: rest,
				})
			}
			var node *TraceNode
			if cp.trace != nil {
				node = newTraceNode(first.String())
				cp.trace.appendChild(node)
			}
			return push(cp.cont, first, cp.activation, node), nil, false

		case cpQuery:
			newCont, ok := q.tryRules(cp.call, cp.candidates, cp.cont, cp.trace)
			if ok {
				return newCont, nil, false
			}
			continue

		case cpIn:
			if len(cp.elemRemaining) == 0 {
				continue
			}
			elem, rest := cp.elemRemaining[0], cp.elemRemaining[1:]
			if len(rest) > 0 {
				q.choicePoints = append(q.choicePoints, &choicePoint{
					kind: cpIn, trailMark: cp.trailMark, activation: cp.activation,
					cont: cp.cont, trace: cp.trace, elemVar: cp.elemVar, elemRemaining: rest,
				})
			}
			unifyGoal := &rules.Unify{A: cp.elemVar, B: elem}
			ok := unify(q.bindings, unifyGoal.A, unifyGoal.B)
			var node *TraceNode
			if cp.trace != nil {
				node = newTraceNode(unifyGoal.String())
				cp.trace.appendChild(node)
			}
			if !ok {
				continue
			}
			return cp.cont, nil, false

		case cpExternal:
			q.awaitingCallID = cp.callID
			q.pending = &pendingLookup{
				callID: cp.callID, target: cp.target, attribute: cp.attribute,
				args: cp.args, result: cp.result, cont: cp.cont, activation: cp.activation,
			}
			if q.Instrumentation != nil {
				q.Instrumentation.externalCallIssued()
			}
			ev := Event{Kind: EventExternalCall, CallID: cp.callID, Instance: cp.target, Attribute: cp.attribute, Args: cp.args}
			return nil, &ev, false
		}
	}
	return nil, nil, true
}

// negationSucceeds evaluates g to its first solution under an isolated
// choice-point stack and trail mark, per Not's "sub-VM to first
// solution" semantics: whatever g binds along the way is always undone,
// win or lose, so nothing it does ever escapes to the surrounding query.
func (q *Query) negationSucceeds(g rules.Goal, activation uint64) (bool, *Error) {
	mark := q.bindings.mark()
	savedCont := q.cont
	savedChoicePoints := q.choicePoints
	q.choicePoints = nil
	q.cont = push(nil, g, activation, nil)

	found := false
	var fatal *Error
loop:
	for {
		if q.cont == nil {
			found = true
			break
		}
		frame := q.cont
		q.cont = frame.next
		q.goalsExecuted++
		if q.Instrumentation != nil {
			q.Instrumentation.goalExecuted()
		}
		if q.goalsExecuted > q.opt.MaxGoals {
			fatal = newError(q.id, ErrStackOverflow, "exceeded maximum of %d executed goals", q.opt.MaxGoals)
			break
		}

		ok, ev, err := q.dispatch(frame)
		if err != nil {
			fatal = err
			break
		}
		if ev != nil {
			fatal = newError(q.id, ErrHostError, "negation cannot suspend for host interaction")
			break
		}
		if ok {
			continue
		}
		cont, ev2, exhausted := q.popAndRetry()
		if exhausted {
			found = false
			break loop
		}
		if ev2 != nil {
			fatal = newError(q.id, ErrHostError, "negation cannot suspend for host interaction")
			break
		}
		q.cont = cont
	}

	q.choicePoints = savedChoicePoints
	q.cont = savedCont
	q.bindings.undo(mark)
	if fatal != nil {
		return false, fatal
	}
	return found, nil
}

func (q *Query) nextActivation() uint64 {
	q.activationCounter++
	return q.activationCounter
}

func (q *Query) nextCallID() uint64 {
	q.callIDCounter++
	return q.callIDCounter
}

// nextInternalSymbol allocates a fresh variable name for goals the VM
// synthesizes itself (Isa's external-instance desugaring), guaranteed
// never to collide with a source-level or freshened rule variable.
func (q *Query) nextInternalSymbol(prefix string) term.Symbol {
	q.internalCounter++
	return term.Symbol("_$" + prefix + "_" + strconv.FormatUint(q.internalCounter, 10))
}

func (q *Query) makeResultEvent() Event {
	out := make(map[term.Symbol]*term.Term, len(q.queryVars))
	for _, v := range q.queryVars {
		if _, ok := q.bindings.lookup(v); ok {
			out[v] = q.bindings.plug(term.NewTerm(v))
		}
	}
	ev := Event{Kind: EventResult, Bindings: out}
	if q.opt.Trace {
		ev.Trace = q.rootTrace
	}
	return ev
}

// collectSymbols walks a goal tree collecting every distinct Symbol it
// references, in first-appearance order, used to scope a Result's
// Bindings to the query's own free variables.
func collectSymbols(g rules.Goal, seen map[term.Symbol]bool) []term.Symbol {
	if seen == nil {
		seen = map[term.Symbol]bool{}
	}
	var out []term.Symbol
	add := func(s term.Symbol) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	var walkTerm func(t *term.Term)
	walkTerm = func(t *term.Term) {
		if t == nil {
			return
		}
		switch v := t.Value.(type) {
		case term.Symbol:
			add(v)
		case term.List:
			for _, e := range v {
				walkTerm(e)
			}
		case term.Dictionary:
			for _, e := range v {
				walkTerm(e.Value)
			}
		case *term.Call:
			for _, a := range v.Args {
				walkTerm(a)
			}
		case *term.InstanceLiteral:
			for _, e := range v.Fields {
				walkTerm(e.Value)
			}
		}
	}
	switch v := g.(type) {
	case *rules.Unify:
		walkTerm(v.A)
		walkTerm(v.B)
	case *rules.Isa:
		walkTerm(v.Term)
		walkTerm(v.Pattern)
	case *rules.Not:
		out = append(out, collectSymbols(v.Goal, seen)...)
	case *rules.And:
		for _, sub := range v.Goals {
			out = append(out, collectSymbols(sub, seen)...)
		}
	case *rules.Or:
		for _, sub := range v.Goals {
			out = append(out, collectSymbols(sub, seen)...)
		}
	case *rules.Query:
		for _, a := range v.Call.Args {
			walkTerm(a)
		}
	case *rules.Lookup:
		walkTerm(v.Target)
		for _, a := range v.Args {
			walkTerm(a)
		}
		add(v.Result)
	case *rules.Cmp:
		walkTerm(v.A)
		walkTerm(v.B)
	case *rules.In:
		walkTerm(v.Elem)
		walkTerm(v.Collection)
	}
	return out
}
