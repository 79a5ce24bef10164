package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RepositoryOperations counts repository calls by operation and outcome.
	RepositoryOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_repository_operations_total",
		Help: "Total number of repository operations by outcome",
	}, []string{"operation", "outcome"})

	// RepositoryOperationDuration records how long repository calls take.
	RepositoryOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "folio_repository_operation_duration_seconds",
		Help:    "Repository operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_cache_lookups_total",
		Help: "Total number of cache lookups by result",
	}, []string{"result"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "folio_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostEventsPublished counts post change events by type and delivery result.
	PostEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_post_events_published_total",
		Help: "Total number of post change events published",
	}, []string{"event_type", "result"})
)

// Outcome labels for RepositoryOperations.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ObserveRepositoryCall records one repository call.
func ObserveRepositoryCall(operation, outcome string, elapsed time.Duration) {
	RepositoryOperations.WithLabelValues(operation, outcome).Inc()
	RepositoryOperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
