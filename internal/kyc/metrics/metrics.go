// Package metrics provides observability for the compliance pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus collectors. All methods are
// nil-safe so callers can run without metrics in tests.
type Metrics struct {
	// Assessment outcomes by stage and risk
	AssessmentOutcome *prometheus.CounterVec

	// Profiles whose assessment panicked during a batch run
	BatchFailures prometheus.Counter

	// Full single-driver assessment latency
	AssessmentLatency prometheus.Histogram
}

// New creates a Metrics instance with all pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		AssessmentOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetkyc_assessments_total",
			Help: "Total KYC assessments by resulting stage and overall risk",
		}, []string{"stage", "risk"}),

		BatchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fleetkyc_batch_assessment_failures_total",
			Help: "Profiles replaced with a degraded result during batch assessment",
		}),

		AssessmentLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleetkyc_assessment_duration_seconds",
			Help:    "Duration of a full single-driver KYC assessment",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
	}
}

// IncrementOutcome records an assessment outcome.
func (m *Metrics) IncrementOutcome(stage, risk string) {
	if m != nil {
		m.AssessmentOutcome.WithLabelValues(stage, risk).Inc()
	}
}

// IncrementBatchFailure records a profile isolated during batch assessment.
func (m *Metrics) IncrementBatchFailure() {
	if m != nil {
		m.BatchFailures.Inc()
	}
}

// ObserveAssessmentLatency records the duration of one assessment.
func (m *Metrics) ObserveAssessmentLatency(d time.Duration) {
	if m != nil {
		m.AssessmentLatency.Observe(d.Seconds())
	}
}
