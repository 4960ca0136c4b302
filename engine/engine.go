// Package engine is the host-facing facade over parsing, the knowledge
// base, and the query VM: new_engine, engine.Load, and engine.NewQuery
// from the wire protocol, wired together the way rego.Rego's options
// pattern assembles a prepared query from a handful of independent
// concerns (compiler, store, tracer) in the teacher's rego package.
package engine

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/google/uuid"

	"github.com/rulekit/rulekit/internal/config"
	"github.com/rulekit/rulekit/internal/levenshtein"
	"github.com/rulekit/rulekit/log"
	"github.com/rulekit/rulekit/metrics"
	"github.com/rulekit/rulekit/parsetree"
	"github.com/rulekit/rulekit/rules"
	"github.com/rulekit/rulekit/vm"
)

// parsed is the parse cache's value: either a rule+inline-query batch
// (from Load) or a single goal (from NewQuery), never both.
type parsed struct {
	rules []*rules.Rule
	goals []rules.Goal
	goal  rules.Goal
}

// Engine owns a knowledge base and the options every Query it creates
// inherits. It is not safe for concurrent Load/NewQuery calls from
// multiple goroutines without external synchronization, matching the
// VM's own single-threaded-per-query design (§5).
type Engine struct {
	kb        *rules.KnowledgeBase
	opt       config.EngineOptions
	log       log.Logger
	cache     *lru.Cache[string, *parsed]
	instrFunc func() *vm.Instrumentation
	metrics   metrics.Metrics
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithOptions sets the engine-wide defaults. MaxExecutedGoals and
// TraceEnabled are passed to every subsequently created Query;
// DebugEnabled is stored but not passed to Queries.
func WithOptions(opt config.EngineOptions) Option {
	return func(e *Engine) { e.opt = opt }
}

// WithLogger overrides the engine's logger; defaults to log.Global().
func WithLogger(l log.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithInstrumentation enables per-query Instrumentation, built fresh for
// each NewQuery call via factory.
func WithInstrumentation(factory func() *vm.Instrumentation) Option {
	return func(e *Engine) { e.instrFunc = factory }
}

// WithParseCacheSize overrides the default parse-cache capacity (256
// entries of source text -> parsed rules/goal).
func WithParseCacheSize(n int) Option {
	return func(e *Engine) {
		c, err := lru.New[string, *parsed](n)
		if err == nil {
			e.cache = c
		}
	}
}

// New returns an Engine with an empty knowledge base.
func New(options ...Option) *Engine {
	e := &Engine{
		kb:      rules.New(),
		opt:     config.Defaults(),
		log:     log.Global(),
		metrics: metrics.New(),
	}
	e.cache, _ = lru.New[string, *parsed](256)
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Load parses src and inserts every rule it defines into the knowledge
// base, enqueuing any inline `?= goal;` queries it contains. Parsing is
// cached by the exact source text: loading the same literal text twice
// (a REPL re-submitting a pasted block, a file watcher firing twice for
// one write) skips re-lexing and re-parsing, but still re-inserts the
// rules, since KB membership is not itself cached.
func (e *Engine) Load(src, filename string) error {
	t := e.metrics.Timer(metrics.EngineLoad)
	t.Start()
	defer t.Stop()
	p, ok := e.cache.Get(src)
	if !ok {
		rs, qs, err := parsetree.Parse(src, filename)
		if err != nil {
			return err
		}
		p = &parsed{rules: rs, goals: qs}
		e.cache.Add(src, p)
	}
	for _, r := range p.rules {
		e.kb.Insert(r)
	}
	for _, g := range p.goals {
		e.kb.EnqueueQuery(g)
	}
	e.log.WithFields(log.Fields{"rules": len(p.rules), "queries": len(p.goals)}).Info("loaded policy source")
	return nil
}

// NextInlineQuery dequeues the next `?= goal;` query the loaded source
// declared, if any.
func (e *Engine) NextInlineQuery() (rules.Goal, bool) {
	return e.kb.NextInlineQuery()
}

// NewQuery parses goalSrc (cached the same way Load caches rule text)
// and returns a Query over the engine's current knowledge base, tagged
// with a fresh correlation id.
func (e *Engine) NewQuery(goalSrc, filename string) (*vm.Query, error) {
	p, ok := e.cache.Get(goalSrc)
	if !ok {
		g, err := parsetree.ParseGoal(goalSrc, filename)
		if err != nil {
			return nil, err
		}
		p = &parsed{goal: g}
		e.cache.Add(goalSrc, p)
	}
	if err := e.checkFunctorExists(p.goal); err != nil {
		return nil, err
	}
	return e.newQuery(p.goal), nil
}

// checkFunctorExists reports an error naming the closest known functor
// when goal is a top-level Query against a functor the knowledge base
// has no rules for. This is a facade-level convenience: the VM itself
// simply fails such a query with zero results, since an undefined
// functor is indistinguishable from one with no matching facts once
// execution starts.
func (e *Engine) checkFunctorExists(goal rules.Goal) error {
	q, ok := goal.(*rules.Query)
	if !ok {
		return nil
	}
	want := rules.FunctorOf(q.Call)
	if len(e.kb.RulesFor(want)) > 0 {
		return nil
	}
	names := func(yield func(string) bool) {
		for _, f := range e.kb.Functors() {
			if !yield(f.String()) {
				return
			}
		}
	}
	if hint := levenshtein.SuggestionFor(want.String(), names); hint != "" {
		return fmt.Errorf("engine: no rules define %s; %s", want, hint)
	}
	return fmt.Errorf("engine: no rules define %s", want)
}

// NewQueryFromGoal returns a Query over an already-parsed goal, for a
// host that built its goal programmatically instead of from source text.
func (e *Engine) NewQueryFromGoal(goal rules.Goal) *vm.Query {
	return e.newQuery(goal)
}

func (e *Engine) newQuery(goal rules.Goal) *vm.Query {
	e.metrics.Counter(metrics.EngineQuery).Inc(1)
	id := uuid.NewString()
	var instr *vm.Instrumentation
	if e.instrFunc != nil {
		instr = e.instrFunc()
	}
	q := vm.NewQuery(e.kb, goal, vm.Options{
		ID:              id,
		MaxGoals:        e.opt.MaxExecutedGoals,
		Trace:           e.opt.TraceEnabled,
		Instrumentation: instr,
	})
	e.log.WithFields(log.Fields{"query_id": id}).Info("query started")
	return q
}

// SetTraceEnabled toggles trace capture for every Query created after
// this call, without disturbing MaxExecutedGoals/DebugEnabled. Intended
// for an interactive REPL's `:trace on`/`:trace off` command.
func (e *Engine) SetTraceEnabled(enabled bool) {
	e.opt.TraceEnabled = enabled
}

// Metrics returns the engine's lifecycle timers/counters (load duration,
// queries started), separate from any per-Query vm.Instrumentation.
func (e *Engine) Metrics() metrics.Metrics {
	return e.metrics
}

// Functors reports the KB's current predicate inventory (the same list
// NewQuery draws its "did you mean" suggestion from for an undefined
// functor reference).
func (e *Engine) Functors() []rules.Functor {
	return e.kb.Functors()
}

func (e *Engine) String() string {
	return fmt.Sprintf("engine(functors=%d)", len(e.kb.Functors()))
}
