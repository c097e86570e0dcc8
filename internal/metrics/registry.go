// Package metrics holds the application's Prometheus instruments, exposed
// through the default registry on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry groups the engine's metrics. One instance per process;
// promauto registers everything on construction.
type Registry struct {
	RunsCompleted    prometheus.Counter
	RunsFailed       prometheus.Counter
	RunDuration      prometheus.Histogram
	AccountsAnalyzed prometheus.Counter
	AccountsFlagged  prometheus.Counter
	RowsDropped      prometheus.Counter
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
}

func NewRegistry() *Registry {
	return &Registry{
		RunsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgraph_runs_completed_total",
			Help: "Analysis runs that finished successfully.",
		}),
		RunsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgraph_runs_failed_total",
			Help: "Analysis runs that ended in an error.",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraudgraph_run_duration_seconds",
			Help:    "End-to-end duration of analysis runs.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
		AccountsAnalyzed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgraph_accounts_analyzed_total",
			Help: "Accounts processed across all runs.",
		}),
		AccountsFlagged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgraph_accounts_flagged_total",
			Help: "Accounts flagged as suspicious across all runs.",
		}),
		RowsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgraph_rows_dropped_total",
			Help: "Input rows rejected during ingestion.",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgraph_result_cache_hits_total",
			Help: "Analyze requests served from the result cache.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgraph_result_cache_misses_total",
			Help: "Analyze requests that required a fresh run.",
		}),
	}
}
