package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for workflow execution.
//
// Metrics exposed (namespaced "gitguard_"):
//
//   - runs_total (counter): completed runs by outcome
//     (completed, interrupted, error). Labels: outcome.
//   - node_duration_ms (histogram): node execution duration in
//     milliseconds. Labels: node_id, status (success, error).
//   - interrupts_total (counter): interrupt snapshots persisted.
//     Labels: node_id.
//   - resumes_total (counter): resume attempts by outcome
//     (resumed, not_interrupted, already_resumed). Labels: outcome.
//
// Expose via promhttp:
//
//	registry := prometheus.NewRegistry()
//	metrics := graph.NewMetrics(registry)
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
//
// All methods are safe for concurrent use.
type Metrics struct {
	runs         *prometheus.CounterVec
	nodeDuration *prometheus.HistogramVec
	interrupts   *prometheus.CounterVec
	resumes      *prometheus.CounterVec
}

// NewMetrics creates and registers all workflow metrics with the given
// registry. Pass prometheus.DefaultRegisterer for the global registry,
// or a fresh prometheus.NewRegistry() for isolation.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gitguard",
			Name:      "runs_total",
			Help:      "Workflow runs by outcome (completed, interrupted, error)",
		}, []string{"outcome"}),
		nodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gitguard",
			Name:      "node_duration_ms",
			Help:      "Node execution duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 30000},
		}, []string{"node_id", "status"}),
		interrupts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gitguard",
			Name:      "interrupts_total",
			Help:      "Interrupt snapshots persisted before gated nodes",
		}, []string{"node_id"}),
		resumes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gitguard",
			Name:      "resumes_total",
			Help:      "Resume attempts by outcome (resumed, not_interrupted, already_resumed)",
		}, []string{"outcome"}),
	}
}

// RecordRun counts a finished run with the given outcome.
func (m *Metrics) RecordRun(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}

// RecordNodeDuration observes a node execution duration.
func (m *Metrics) RecordNodeDuration(nodeID string, d time.Duration, status string) {
	if m == nil {
		return
	}
	m.nodeDuration.WithLabelValues(nodeID, status).Observe(float64(d.Milliseconds()))
}

// RecordInterrupt counts a persisted interrupt snapshot.
func (m *Metrics) RecordInterrupt(nodeID string) {
	if m == nil {
		return
	}
	m.interrupts.WithLabelValues(nodeID).Inc()
}

// RecordResume counts a resume attempt with the given outcome.
func (m *Metrics) RecordResume(outcome string) {
	if m == nil {
		return
	}
	m.resumes.WithLabelValues(outcome).Inc()
}
