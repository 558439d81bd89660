// Package metrics provides Prometheus metrics for gamefeed.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts calls to the third-party APIs.
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamefeed",
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream API requests",
		},
		[]string{"api", "outcome"},
	)

	// UpstreamDuration measures upstream request latency.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gamefeed",
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of upstream API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"api"},
	)

	// Escalations counts fallback and narrowed-retry queries.
	Escalations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamefeed",
			Name:      "fetch_escalations_total",
			Help:      "Total number of fallback or narrowed-retry queries issued",
		},
		[]string{"operation", "stage"},
	)

	// DegradedResults counts operations that swallowed a failure.
	DegradedResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamefeed",
			Name:      "degraded_results_total",
			Help:      "Total number of fetch operations resolved to empty because of a failure",
		},
		[]string{"operation"},
	)

	// CacheLookups counts memoization hits and misses.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamefeed",
			Name:      "cache_lookups_total",
			Help:      "Total number of memoization layer lookups",
		},
		[]string{"result"},
	)
)

// RecordUpstream records one upstream request.
func RecordUpstream(api, outcome string, seconds float64) {
	UpstreamRequests.WithLabelValues(api, outcome).Inc()
	UpstreamDuration.WithLabelValues(api).Observe(seconds)
}

// RecordEscalation records a fallback stage being entered.
func RecordEscalation(operation, stage string) {
	Escalations.WithLabelValues(operation, stage).Inc()
}

// RecordDegraded records an operation that returned empty because of an error.
func RecordDegraded(operation string) {
	DegradedResults.WithLabelValues(operation).Inc()
}

// RecordCache records a memoization lookup.
func RecordCache(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}
