package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks newsletter job runs for the worker process.
type Metrics struct {
	// JobRunsTotal counts newsletter runs by status (started/success/failure).
	JobRunsTotal *prometheus.CounterVec

	// JobDurationSeconds measures one full newsletter run.
	JobDurationSeconds prometheus.Histogram

	// EmailsSentTotal counts emails delivered across all runs.
	EmailsSentTotal prometheus.Counter

	// JobLastSuccessTimestamp is the unix time of the last clean run.
	JobLastSuccessTimestamp prometheus.Gauge
}

// NewMetrics registers and returns the worker metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_newsletter_runs_total",
			Help: "Total number of newsletter job runs by status",
		}, []string{"status"}),

		JobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_newsletter_duration_seconds",
			Help:    "Duration of one newsletter run in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 600},
		}),

		EmailsSentTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_newsletter_emails_sent_total",
			Help: "Total number of newsletter emails delivered",
		}),

		JobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_newsletter_last_success_timestamp",
			Help: "Unix timestamp of the last successful newsletter run",
		}),
	}
}

// RecordJobRun records one run with its status.
func (m *Metrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration records how long a run took.
func (m *Metrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

// RecordEmailsSent adds the delivered count of one run.
func (m *Metrics) RecordEmailsSent(count int) {
	m.EmailsSentTotal.Add(float64(count))
}

// RecordLastSuccess stamps the last successful run.
func (m *Metrics) RecordLastSuccess() {
	m.JobLastSuccessTimestamp.SetToCurrentTime()
}
