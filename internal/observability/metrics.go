package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReviewUpserts counts review writes by outcome ("created" or "updated").
	ReviewUpserts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reeltrack_review_upserts_total",
		Help: "Total number of review upserts by outcome",
	}, []string{"outcome"})

	// ListMutations counts favorites/watchlist changes by list and operation.
	ListMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reeltrack_list_mutations_total",
		Help: "Total number of list add/remove operations",
	}, []string{"list", "operation"})

	// FollowOperations counts follow and unfollow operations.
	FollowOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reeltrack_follow_operations_total",
		Help: "Total number of follow/unfollow operations",
	}, []string{"operation"})

	// PartialRelationWrites counts follow/unfollow calls where only one side was written.
	PartialRelationWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reeltrack_partial_relation_writes_total",
		Help: "Follow/unfollow operations that updated only one side of the relationship",
	}, []string{"operation"})

	// DatabaseQueryLatency records store latency by operation and collection/table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reeltrack_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
