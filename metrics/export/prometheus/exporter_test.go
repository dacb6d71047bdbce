package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrEthical07/authcore/metrics"
)

type staticSource struct {
	snapshot metrics.Snapshot
	dropped  uint64
}

func (s staticSource) MetricsSnapshot() metrics.Snapshot { return s.snapshot }
func (s staticSource) AuditDropped() uint64              { return s.dropped }

func testSource() staticSource {
	return staticSource{
		snapshot: metrics.Snapshot{Counters: map[metrics.MetricID]uint64{
			metrics.MetricLoginSuccess: 7,
			metrics.MetricLoginFailure: 3,
		}},
		dropped: 2,
	}
}

func TestRenderTextExposition(t *testing.T) {
	out := New(testSource()).Render()

	for _, want := range []string{
		"# HELP authcore_login_success_total",
		"# TYPE authcore_login_success_total counter",
		"authcore_login_success_total 7",
		"authcore_login_failure_total 3",
		"authcore_register_success_total 0",
		"authcore_audit_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderNilSafe(t *testing.T) {
	var e *Exporter
	if e.Render() != "" {
		t.Fatal("nil exporter rendered output")
	}
	if New(nil).Render() != "" {
		t.Fatal("exporter without source rendered output")
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)

	New(testSource()).Handler().ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "authcore_login_success_total 7") {
		t.Fatalf("body missing counter: %s", rec.Body.String())
	}
}
