// Package metrics exposes Prometheus instrumentation for the scheduler and
// runner, mirroring the shape of a production graph engine's metrics
// surface but renamed to the sequence engine's own concerns (ready queue,
// in-flight functions, active colors, sync waits).
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every gauge/counter/histogram the scheduler updates
// during a run. All namespaced "seqengine_".
type Metrics struct {
	readyQueueDepth   prometheus.Gauge
	inflightFunctions prometheus.Gauge
	activeColors      prometheus.Gauge
	syncWait          *prometheus.GaugeVec

	nodeLatency *prometheus.HistogramVec

	testFailures *prometheus.CounterVec
	nodeErrors   *prometheus.CounterVec
	timeouts     *prometheus.CounterVec

	mu      sync.RWMutex
	enabled bool
}

// New registers and returns a Metrics collector bound to registry (uses
// prometheus.DefaultRegisterer if nil).
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	m := &Metrics{enabled: true}

	m.readyQueueDepth = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "seqengine",
		Name:      "ready_queue_depth",
		Help:      "Number of tokens waiting in the scheduler's ready queue",
	})

	m.inflightFunctions = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "seqengine",
		Name:      "inflight_functions",
		Help:      "Number of Function node invocations currently executing in the worker pool",
	})

	m.activeColors = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "seqengine",
		Name:      "active_colors",
		Help:      "Number of parallel-split colors with at least one unresolved sync arrival",
	})

	m.syncWait = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "seqengine",
		Name:      "sync_wait_arrivals",
		Help:      "Arrivals recorded so far for a sync node's current color, by sync node id",
	}, []string{"run_id", "node_id"})

	m.nodeLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "seqengine",
		Name:      "node_latency_ms",
		Help:      "Node execution duration in milliseconds",
		Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
	}, []string{"run_id", "node_id", "status"})

	m.testFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seqengine",
		Name:      "test_failures_total",
		Help:      "Function nodes marked is_test that raised",
	}, []string{"run_id", "node_id"})

	m.nodeErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seqengine",
		Name:      "node_errors_total",
		Help:      "Node completions carrying a non-absent exception",
	}, []string{"run_id", "node_id", "kind"})

	m.timeouts = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seqengine",
		Name:      "node_timeouts_total",
		Help:      "Function node invocations that exceeded their timeout",
	}, []string{"run_id", "node_id"})

	return m
}

func (m *Metrics) isEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// Disable stops metric recording (useful for benchmark isolation).
func (m *Metrics) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}

// Enable resumes metric recording after Disable.
func (m *Metrics) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
}

// SetReadyQueueDepth records the current ready-queue length.
func (m *Metrics) SetReadyQueueDepth(n int) {
	if !m.isEnabled() {
		return
	}
	m.readyQueueDepth.Set(float64(n))
}

// SetInflightFunctions records the current worker-pool occupancy.
func (m *Metrics) SetInflightFunctions(n int) {
	if !m.isEnabled() {
		return
	}
	m.inflightFunctions.Set(float64(n))
}

// SetActiveColors records the number of colors with an open sync wait.
func (m *Metrics) SetActiveColors(n int) {
	if !m.isEnabled() {
		return
	}
	m.activeColors.Set(float64(n))
}

// SetSyncArrivals records the arrival count for a sync node's live color.
func (m *Metrics) SetSyncArrivals(runID string, nodeID int, n int) {
	if !m.isEnabled() {
		return
	}
	m.syncWait.WithLabelValues(runID, strconv.Itoa(nodeID)).Set(float64(n))
}

// ObserveNodeLatency records one node's execution duration.
func (m *Metrics) ObserveNodeLatency(runID string, nodeID int, d time.Duration, status string) {
	if !m.isEnabled() {
		return
	}
	m.nodeLatency.WithLabelValues(runID, strconv.Itoa(nodeID), status).Observe(float64(d.Milliseconds()))
}

// IncTestFailure counts one is_test node failure.
func (m *Metrics) IncTestFailure(runID string, nodeID int) {
	if !m.isEnabled() {
		return
	}
	m.testFailures.WithLabelValues(runID, strconv.Itoa(nodeID)).Inc()
}

// IncNodeError counts one node completion carrying an exception, kind
// being "function", "wrapper", or "timeout".
func (m *Metrics) IncNodeError(runID string, nodeID int, kind string) {
	if !m.isEnabled() {
		return
	}
	m.nodeErrors.WithLabelValues(runID, strconv.Itoa(nodeID), kind).Inc()
}

// IncTimeout counts one timeout expiry.
func (m *Metrics) IncTimeout(runID string, nodeID int) {
	if !m.isEnabled() {
		return
	}
	m.timeouts.WithLabelValues(runID, strconv.Itoa(nodeID)).Inc()
}
