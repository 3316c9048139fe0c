package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestMetrics_ReadyQueueDepth(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SetReadyQueueDepth(3)
	if got := gaugeValue(t, m.readyQueueDepth); got != 3 {
		t.Errorf("readyQueueDepth = %v, want 3", got)
	}
}

func TestMetrics_DisableStopsRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SetInflightFunctions(2)
	m.Disable()
	m.SetInflightFunctions(5)

	if got := gaugeValue(t, m.inflightFunctions); got != 2 {
		t.Errorf("inflightFunctions = %v, want 2 (write while disabled should be ignored)", got)
	}

	m.Enable()
	m.SetInflightFunctions(5)
	if got := gaugeValue(t, m.inflightFunctions); got != 5 {
		t.Errorf("inflightFunctions = %v, want 5 after Enable", got)
	}
}

func TestMetrics_ObserveNodeLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveNodeLatency("run-1", 7, 25*time.Millisecond, "success")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "seqengine_node_latency_ms" {
			found = true
		}
	}
	if !found {
		t.Error("expected seqengine_node_latency_ms to be registered")
	}
}
