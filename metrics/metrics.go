// Package metrics provides named timers and counters for the engine
// facade's own lifecycle (load, query), distinct from vm.Instrumentation
// which tracks a single query's internal resolution counters. Each
// Metrics from New keeps its own rcrowley/go-metrics registry; the
// vm.Instrumentation counters are not registered in it.
package metrics

import (
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// Well-known metric names.
const (
	EngineLoad  = "engine.load"
	EngineQuery = "engine.query"
)

// Metrics is a named collection of timers and counters scoped to one
// engine, mirroring the teacher's per-request Metrics value that gets
// attached to a call and read back afterward.
type Metrics interface {
	Timer(name string) Timer
	Counter(name string) gometrics.Counter
	All() map[string]interface{}
}

// Timer accumulates elapsed time across possibly multiple Start/Stop
// pairs: a query that suspends for ExternalCall/Debug and resumes still
// wants one cumulative duration.
type Timer interface {
	Start()
	Stop() time.Duration
}

type metrics struct {
	reg    gometrics.Registry
	timers map[string]*timer
}

// New returns an empty, unregistered Metrics collection.
func New() Metrics {
	return &metrics{reg: gometrics.NewRegistry(), timers: map[string]*timer{}}
}

func (m *metrics) Timer(name string) Timer {
	if t, ok := m.timers[name]; ok {
		return t
	}
	t := &timer{}
	m.timers[name] = t
	return t
}

func (m *metrics) Counter(name string) gometrics.Counter {
	return gometrics.GetOrRegisterCounter(name, m.reg)
}

func (m *metrics) All() map[string]interface{} {
	out := map[string]interface{}{}
	for name, t := range m.timers {
		out[name] = t.elapsed
	}
	m.reg.Each(func(name string, v interface{}) {
		if c, ok := v.(gometrics.Counter); ok {
			out[name] = c.Count()
		}
	})
	return out
}

type timer struct {
	elapsed time.Duration
	started time.Time
}

func (t *timer) Start() { t.started = time.Now() }

func (t *timer) Stop() time.Duration {
	if t.started.IsZero() {
		return t.elapsed
	}
	t.elapsed += time.Since(t.started)
	t.started = time.Time{}
	return t.elapsed
}
