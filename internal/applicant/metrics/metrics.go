// Package metrics exposes Prometheus instrumentation for the applicant
// validation flow.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"finrisk/pkg/platform/circuit"
)

type Metrics struct {
	ValidationsTotal        *prometheus.CounterVec
	UpstreamAttemptsTotal   *prometheus.CounterVec
	BreakerTransitionsTotal *prometheus.CounterVec
	BreakerState            prometheus.Gauge
	ValidationDuration      prometheus.Histogram
}

// New registers all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers all metrics on the given registerer. Tests pass an
// isolated registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ValidationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finrisk_validations_total",
			Help: "Total applicant validation calls by outcome",
		}, []string{"outcome"}),
		UpstreamAttemptsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finrisk_upstream_attempts_total",
			Help: "Terminal upstream scoring outcomes by result",
		}, []string{"result"}),
		BreakerTransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finrisk_breaker_transitions_total",
			Help: "Circuit breaker state transitions by target state",
		}, []string{"to"}),
		BreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "finrisk_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		ValidationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "finrisk_validation_duration_seconds",
			Help:    "End-to-end applicant validation latency",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordValidation counts one completed validation call.
func (m *Metrics) RecordValidation(outcome string, duration time.Duration) {
	m.ValidationsTotal.WithLabelValues(outcome).Inc()
	m.ValidationDuration.Observe(duration.Seconds())
}

// RecordUpstreamResult counts one terminal scoring outcome.
func (m *Metrics) RecordUpstreamResult(result string) {
	m.UpstreamAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordBreakerChange tracks a breaker transition and the resulting state.
func (m *Metrics) RecordBreakerChange(change circuit.StateChange) {
	if change.Changed() {
		m.BreakerTransitionsTotal.WithLabelValues(change.To.String()).Inc()
	}
	m.BreakerState.Set(float64(change.To))
}
