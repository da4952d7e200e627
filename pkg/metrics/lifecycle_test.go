package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLifecycleMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLifecycleMetrics(reg)

	m.ObserveTransition("DRAFT", "IN_REVIEW")
	m.ObserveTransition("DRAFT", "IN_REVIEW")
	m.IncDeliveryJob("SPOTIFY")
	m.IncQCItem("ERROR")

	if got := testutil.ToFloat64(m.transitions.WithLabelValues("DRAFT", "IN_REVIEW")); got != 2 {
		t.Fatalf("expected 2 transitions, got %v", got)
	}
	if got := testutil.ToFloat64(m.deliveryJobs.WithLabelValues("SPOTIFY")); got != 1 {
		t.Fatalf("expected 1 delivery job, got %v", got)
	}
	if got := testutil.ToFloat64(m.qcItems.WithLabelValues("ERROR")); got != 1 {
		t.Fatalf("expected 1 qc item, got %v", got)
	}
}

func TestLifecycleMetricsNilSafe(t *testing.T) {
	var m *LifecycleMetrics
	m.ObserveTransition("a", "b")
	m.IncDeliveryJob("")
	m.IncQCItem("")

	empty := NewLifecycleMetrics(nil)
	empty.ObserveTransition("a", "b")
}
