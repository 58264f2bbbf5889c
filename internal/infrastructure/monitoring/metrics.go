package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/turtacn/kam/internal/domain/models"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	AuthOutcomes          *prometheus.CounterVec
	TokenPolls            *prometheus.CounterVec
	Registrations         *prometheus.CounterVec
	RegistrationDurations prometheus.Histogram
	ActiveJobs            prometheus.Gauge
}

// NewMetrics creates and registers the Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		AuthOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kam_device_auth_outcomes_total",
				Help: "Terminal device authorization outcomes by state.",
			},
			[]string{"state"},
		),
		TokenPolls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kam_token_polls_total",
				Help: "Token endpoint polls by status.",
			},
			[]string{"status"},
		),
		Registrations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kam_registrations_total",
				Help: "Account registration attempts by result.",
			},
			[]string{"result"},
		),
		RegistrationDurations: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kam_registration_duration_seconds",
				Help:    "Duration of single registration attempts.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		ActiveJobs: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "kam_registration_job_active",
				Help: "Set to 1 while a batch registration job is running.",
			},
		),
	}
}

// RecordAuthOutcome counts a terminal device authorization state.
func (m *Metrics) RecordAuthOutcome(state string) {
	m.AuthOutcomes.WithLabelValues(state).Inc()
}

// RecordPoll counts one token poll with its status.
func (m *Metrics) RecordPoll(status models.PollStatus) {
	m.TokenPolls.WithLabelValues(string(status)).Inc()
}

// RecordRegistration counts one registration attempt outcome.
func (m *Metrics) RecordRegistration(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.Registrations.WithLabelValues(result).Inc()
}

// ObserveRegistrationDuration records how long one attempt took.
func (m *Metrics) ObserveRegistrationDuration(seconds float64) {
	m.RegistrationDurations.Observe(seconds)
}

// SetJobActive flags whether a batch registration job is in progress.
func (m *Metrics) SetJobActive(active bool) {
	if active {
		m.ActiveJobs.Set(1)
		return
	}
	m.ActiveJobs.Set(0)
}

// NoopMetrics satisfies the recorder interface without registering
// anything, for tests.
type NoopMetrics struct{}

func (NoopMetrics) RecordAuthOutcome(string)            {}
func (NoopMetrics) RecordPoll(models.PollStatus)        {}
func (NoopMetrics) RecordRegistration(bool)             {}
func (NoopMetrics) ObserveRegistrationDuration(float64) {}
func (NoopMetrics) SetJobActive(bool)                   {}
