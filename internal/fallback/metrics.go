package fallback

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder observes wrapped calls.
type Recorder interface {
	ObserveDecision(feature Feature, decision Decision)
	ObserveDuration(feature Feature, d time.Duration)
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func (NopRecorder) ObserveDecision(Feature, Decision)      {}
func (NopRecorder) ObserveDuration(Feature, time.Duration) {}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	decisionsTotal    *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the fallback metrics with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		decisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchpad_fallback_decisions_total",
				Help: "Total number of wrapped endpoint calls by endpoint and fallback decision",
			},
			[]string{"endpoint", "decision"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launchpad_operation_duration_seconds",
				Help:    "Duration of the wrapped data-source operation in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}
}

// ObserveDecision increments the decision counter.
func (p *PrometheusRecorder) ObserveDecision(feature Feature, decision Decision) {
	p.decisionsTotal.WithLabelValues(string(feature), string(decision)).Inc()
}

// ObserveDuration records how long the wrapped operation ran.
func (p *PrometheusRecorder) ObserveDuration(feature Feature, d time.Duration) {
	p.operationDuration.WithLabelValues(string(feature)).Observe(d.Seconds())
}
