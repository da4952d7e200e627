package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics records release lifecycle activity.
type LifecycleMetrics struct {
	transitions  *prometheus.CounterVec
	deliveryJobs *prometheus.CounterVec
	qcItems      *prometheus.CounterVec
}

// NewLifecycleMetrics registers the lifecycle metrics on the provided registerer.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "release_status_transitions_total",
		Help: "Release status transitions by from/to status.",
	}, []string{"from", "to"})
	deliveryJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_jobs_created_total",
		Help: "Delivery jobs created per DSP target.",
	}, []string{"target"})
	qcItems := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qc_items_created_total",
		Help: "QC items created per severity.",
	}, []string{"severity"})
	reg.MustRegister(transitions, deliveryJobs, qcItems)
	return &LifecycleMetrics{
		transitions:  transitions,
		deliveryJobs: deliveryJobs,
		qcItems:      qcItems,
	}
}

// ObserveTransition increments the transition counter for the given pair.
func (m *LifecycleMetrics) ObserveTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncDeliveryJob increments the delivery job counter for the named target.
func (m *LifecycleMetrics) IncDeliveryJob(target string) {
	if m == nil || m.deliveryJobs == nil {
		return
	}
	m.deliveryJobs.WithLabelValues(normalizeLabel(target)).Inc()
}

// IncQCItem increments the QC item counter for the named severity.
func (m *LifecycleMetrics) IncQCItem(severity string) {
	if m == nil || m.qcItems == nil {
		return
	}
	m.qcItems.WithLabelValues(normalizeLabel(severity)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
