package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Lookups counts cache lookups by resource type and outcome
	// (fresh|stale|miss).
	Lookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "providercache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"resource", "outcome"},
	)

	// StoreErrors counts degraded storage operations by resource and
	// operation (get|upsert|delete|sweep).
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "providercache_store_errors_total",
			Help: "Total number of storage operations that degraded gracefully",
		},
		[]string{"resource", "op"},
	)

	// JanitorDeleted counts rows removed by expiry sweeps.
	JanitorDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "providercache_janitor_deleted_total",
			Help: "Total number of expired cache rows deleted by the janitor",
		},
		[]string{"resource"},
	)
)
