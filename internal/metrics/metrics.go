// Package metrics exposes Prometheus instrumentation for the feed engine.
//
// Source fetch metrics:
//   - feed_source_fetch_total: per-source fetch outcomes (counter)
//     Labels: kind (community, author), result (ok, error, breaker_open)
//
// Circuit breaker metrics:
//   - feed_circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
//     Labels: name
//
// Refresh metrics:
//   - feed_refresh_total: refresh outcomes (counter), Labels: result
//   - feed_refresh_items: items written per refresh (histogram)
//   - feed_cache_write_failures_total: cache puts that failed (counter)
//
// Request metrics:
//   - feed_request_duration_seconds: engine operation latency (histogram)
//     Labels: operation (get_feed, refresh, stats)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch result labels
const (
	ResultOK          = "ok"
	ResultError       = "error"
	ResultBreakerOpen = "breaker_open"
)

var (
	SourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_source_fetch_total",
			Help: "Total candidate source fetches by source kind and result",
		},
		[]string{"kind", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_refresh_total",
			Help: "Total feed refreshes by result",
		},
		[]string{"result"},
	)

	RefreshItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_refresh_items",
			Help:    "Number of feed items written per refresh",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 75, 100},
		},
	)

	CacheWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_cache_write_failures_total",
			Help: "Total feed cache writes that failed during refresh",
		},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_request_duration_seconds",
			Help:    "Duration of feed engine operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// RecordSourceFetch counts one source fetch outcome
func RecordSourceFetch(kind, result string) {
	SourceFetchTotal.WithLabelValues(kind, result).Inc()
}

// RecordCircuitBreakerState records a breaker state using gobreaker's numbering
func RecordCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
