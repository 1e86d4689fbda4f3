package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics records compound estimate operations (create, save,
// duplicate, convert...) and the pipeline step that failed them.
type LifecycleMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	retries  *prometheus.CounterVec
}

// NewLifecycleMetrics registers the lifecycle metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "estimate_operation_duration_seconds",
		Help:    "Duration of estimate lifecycle operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estimate_operation_success_total",
		Help: "Successful estimate lifecycle operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estimate_operation_failure_total",
		Help: "Failed estimate lifecycle operations by pipeline step.",
	}, []string{"operation", "step"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estimate_number_retries_total",
		Help: "Reference number collisions that triggered a retry.",
	}, []string{"operation"})
	reg.MustRegister(duration, success, failure, retries)
	return &LifecycleMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		retries:  retries,
	}
}

// ObserveDuration records how long the named operation took.
func (m *LifecycleMetrics) ObserveDuration(operation string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(d.Seconds())
}

func (m *LifecycleMetrics) IncSuccess(operation string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure counts a failed operation against the step that aborted it.
func (m *LifecycleMetrics) IncFailure(operation, step string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(operation), normalizeLabel(step)).Inc()
}

func (m *LifecycleMetrics) IncNumberRetry(operation string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
