package metrics

import (
	"sync"
	"testing"
)

func TestIncAndValue(t *testing.T) {
	m := New(Config{Enabled: true})

	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginFailure)

	if got := m.Value(MetricLoginSuccess); got != 2 {
		t.Fatalf("Value(MetricLoginSuccess) = %d, want 2", got)
	}
	if got := m.Value(MetricLoginFailure); got != 1 {
		t.Fatalf("Value(MetricLoginFailure) = %d, want 1", got)
	}
	if got := m.Value(MetricLogout); got != 0 {
		t.Fatalf("Value(MetricLogout) = %d, want 0", got)
	}
}

func TestDisabledMetricsNoOp(t *testing.T) {
	m := New(Config{})

	m.Inc(MetricLoginSuccess)
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("disabled metrics counted: %d", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("disabled snapshot has %d counters", len(snap.Counters))
	}
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLoginSuccess)
	if m.Value(MetricLoginSuccess) != 0 {
		t.Fatal("nil Value != 0")
	}
	if m.Enabled() {
		t.Fatal("nil metrics enabled")
	}
	if snap := m.Snapshot(); snap.Counters == nil {
		t.Fatal("nil snapshot has no counter map")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	m := New(Config{Enabled: true})
	m.Inc(MetricSessionCreated)

	snap := m.Snapshot()
	if snap.Counters[MetricSessionCreated] != 1 {
		t.Fatalf("snapshot counter = %d", snap.Counters[MetricSessionCreated])
	}
	if len(snap.Counters) != MetricIDCount {
		t.Fatalf("snapshot has %d counters, want %d", len(snap.Counters), MetricIDCount)
	}

	m.Inc(MetricSessionCreated)
	if snap.Counters[MetricSessionCreated] != 1 {
		t.Fatal("snapshot changed after a later Inc")
	}
}

func TestConcurrentInc(t *testing.T) {
	m := New(Config{Enabled: true})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Inc(MetricRefreshSuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricRefreshSuccess); got != 8000 {
		t.Fatalf("Value = %d, want 8000", got)
	}
}
