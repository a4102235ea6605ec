package graph

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RecordRun("completed")
	m.RecordRun("interrupted")
	m.RecordRun("interrupted")
	m.RecordNodeDuration("reviewer", 25*time.Millisecond, "success")
	m.RecordInterrupt("poster")
	m.RecordResume("resumed")

	t.Run("counters track outcomes", func(t *testing.T) {
		if got := testutil.ToFloat64(m.runs.WithLabelValues("interrupted")); got != 2 {
			t.Errorf("runs{interrupted} = %v, want 2", got)
		}
		if got := testutil.ToFloat64(m.runs.WithLabelValues("completed")); got != 1 {
			t.Errorf("runs{completed} = %v, want 1", got)
		}
		if got := testutil.ToFloat64(m.interrupts.WithLabelValues("poster")); got != 1 {
			t.Errorf("interrupts{poster} = %v, want 1", got)
		}
		if got := testutil.ToFloat64(m.resumes.WithLabelValues("resumed")); got != 1 {
			t.Errorf("resumes{resumed} = %v, want 1", got)
		}
	})

	t.Run("all families registered", func(t *testing.T) {
		families, err := registry.Gather()
		if err != nil {
			t.Fatalf("Gather() error: %v", err)
		}
		want := map[string]bool{
			"gitguard_runs_total":       false,
			"gitguard_node_duration_ms": false,
			"gitguard_interrupts_total": false,
			"gitguard_resumes_total":    false,
		}
		for _, f := range families {
			if _, ok := want[f.GetName()]; ok {
				want[f.GetName()] = true
			}
		}
		for name, seen := range want {
			if !seen {
				t.Errorf("metric family %s not registered", name)
			}
		}
	})
}

func TestMetricsNilReceiver(t *testing.T) {
	// The engine holds a nil *Metrics when none is configured; every
	// method must be a no-op.
	var m *Metrics
	m.RecordRun("completed")
	m.RecordNodeDuration("n", time.Millisecond, "success")
	m.RecordInterrupt("n")
	m.RecordResume("resumed")
}
