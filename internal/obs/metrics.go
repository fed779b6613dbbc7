// Package obs holds the prometheus collectors for the API and the notifier.
package obs

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RateLimitRejections counts requests refused by a limiter. scope is
	// "edge" for the redis middleware or the action key for domain budgets.
	RateLimitRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Requests rejected by a rate limiter.",
		},
		[]string{"scope"},
	)

	AuditEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Audit entries written, by action.",
		},
		[]string{"action"},
	)

	ReconciliationMismatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_reconciliation_mismatch_total",
		Help: "Successful payment reports whose amount or currency did not match the order.",
	})

	QueueEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_events_total",
			Help: "Order events published or consumed, by outcome.",
		},
		[]string{"direction", "outcome"},
	)
)

var initOnce sync.Once

// Init registers the collectors with the default registry. Safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			HTTPInFlight, HTTPRequestsTotal, HTTPRequestDuration,
			RateLimitRejections, AuditEntries, ReconciliationMismatches, QueueEvents,
		)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
