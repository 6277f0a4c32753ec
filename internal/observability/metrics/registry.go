// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch metrics track the resilient fetch layer
var (
	// FetchAttemptsTotal counts entity-level fetch attempts
	FetchAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fetch_attempts_total",
			Help: "Total number of entity-level fetch attempts",
		},
	)

	// FetchSuccessesTotal counts successful fetches by source (primary or fallback)
	FetchSuccessesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_successes_total",
			Help: "Total number of successful fetches",
		},
		[]string{"source"}, // source: primary, fallback
	)

	// FetchFailuresTotal counts entities for which every source was exhausted
	FetchFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fetch_failures_total",
			Help: "Total number of entities that exhausted all sources",
		},
	)

	// FetchRetriesTotal counts retries consumed before an eventual primary success
	FetchRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fetch_retries_total",
			Help: "Total number of retries consumed before a primary success",
		},
	)

	// ProviderCallDuration measures one provider call including retries
	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_call_duration_seconds",
			Help:    "Duration of one provider call cycle including retries",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"provider"},
	)
)

// Mail metrics track newsletter delivery
var (
	// MailDeliveriesTotal counts transactional mail sends by result
	MailDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_deliveries_total",
			Help: "Total number of transactional mail deliveries",
		},
		[]string{"result"}, // result: sent, failed
	)

	// MailDeliveryDuration measures time to deliver one email
	MailDeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mail_delivery_duration_seconds",
			Help:    "Time taken to deliver one email",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	// SubscribersActive tracks the number of active subscribers
	SubscribersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "subscribers_active",
			Help: "Number of active newsletter subscribers",
		},
	)
)

// RecordFetchOutcome records the terminal state of one entity fetch.
func RecordFetchOutcome(source string, retries int) {
	FetchAttemptsTotal.Inc()
	if source == "" {
		FetchFailuresTotal.Inc()
		return
	}
	FetchSuccessesTotal.WithLabelValues(source).Inc()
	if retries > 0 {
		FetchRetriesTotal.Add(float64(retries))
	}
}

// RecordProviderCall records the duration of one provider call cycle.
func RecordProviderCall(provider string, duration time.Duration) {
	ProviderCallDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordMailDelivery records one mail send with its result and duration.
func RecordMailDelivery(sent bool, duration time.Duration) {
	result := "sent"
	if !sent {
		result = "failed"
	}
	MailDeliveriesTotal.WithLabelValues(result).Inc()
	MailDeliveryDuration.Observe(duration.Seconds())
}
