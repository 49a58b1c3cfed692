// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DedupRunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_runs_completed_total",
			Help: "Total number of deduplication runs completed",
		},
		[]string{"entity_type"},
	)

	DedupRunsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_runs_failed_total",
			Help: "Total number of deduplication runs failed",
		},
		[]string{"entity_type", "error_code"},
	)

	DedupGroupDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_group_decisions_total",
			Help: "Candidate group decisions by outcome",
		},
		[]string{"entity_type", "outcome"},
	)

	DedupPairComparisons = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_pair_comparisons_total",
			Help: "Total pairwise similarity comparisons scored",
		},
	)

	DedupRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dedup_run_duration_seconds",
			Help: "Duration of deduplication runs in seconds",
		},
		[]string{"entity_type"},
	)

	ReviewQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dedup_review_queue_depth",
			Help: "Number of review items pending a human decision",
		},
	)

	ResultCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_result_cache_hits_total",
			Help: "Result cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)
