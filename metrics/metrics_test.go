package metrics

import "testing"

func TestMetrics_TimerAccumulates(t *testing.T) {
	m := New()
	tm := m.Timer(EngineLoad)
	tm.Start()
	tm.Stop()
	tm.Start()
	total := tm.Stop()
	if total <= 0 {
		t.Errorf("accumulated duration = %v, want > 0", total)
	}
	if got := m.All()[EngineLoad]; got == nil {
		t.Error("All() missing EngineLoad entry")
	}
}

func TestMetrics_CounterIncrements(t *testing.T) {
	m := New()
	c := m.Counter("queries")
	c.Inc(1)
	c.Inc(2)
	if c.Count() != 3 {
		t.Errorf("Count() = %d, want 3", c.Count())
	}
	if got := m.All()["queries"]; got != int64(3) {
		t.Errorf("All()[\"queries\"] = %v, want 3", got)
	}
}

func TestMetrics_TimerIdempotentWithoutStart(t *testing.T) {
	m := New()
	tm := m.Timer(EngineQuery)
	if d := tm.Stop(); d != 0 {
		t.Errorf("Stop() without Start = %v, want 0", d)
	}
}
