package vm

import "github.com/rcrowley/go-metrics"

// Instrumentation tracks per-query resolution counters. It is opt-in: a
// Query created without one (nil) skips every call below at zero cost.
// The counters are standalone go-metrics values, not registered in any
// registry and never exported over the network by this package; a host
// wanting Prometheus-style scraping wires them up itself.
type Instrumentation struct {
	GoalsExecuted     metrics.Counter
	ChoicePointsMade  metrics.Counter
	Backtracks        metrics.Counter
	ExternalCalls     metrics.Counter
	TrailDepth        metrics.Histogram
}

// NewInstrumentation returns a fresh, unregistered set of counters. Pass
// the result to NewQuery to enable tracking for that query.
func NewInstrumentation() *Instrumentation {
	return &Instrumentation{
		GoalsExecuted:    metrics.NewCounter(),
		ChoicePointsMade: metrics.NewCounter(),
		Backtracks:       metrics.NewCounter(),
		ExternalCalls:    metrics.NewCounter(),
		TrailDepth:       metrics.NewHistogram(metrics.NewUniformSample(1024)),
	}
}

func (in *Instrumentation) goalExecuted() {
	if in == nil {
		return
	}
	in.GoalsExecuted.Inc(1)
}

func (in *Instrumentation) choicePointPushed(trailDepth int) {
	if in == nil {
		return
	}
	in.ChoicePointsMade.Inc(1)
	in.TrailDepth.Update(int64(trailDepth))
}

func (in *Instrumentation) backtracked() {
	if in == nil {
		return
	}
	in.Backtracks.Inc(1)
}

func (in *Instrumentation) externalCallIssued() {
	if in == nil {
		return
	}
	in.ExternalCalls.Inc(1)
}
