// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the event pool service.
var (
	// Counters.
	PredictionsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "predictions_submitted_total",
			Help: "Total number of predictions accepted and persisted",
		},
	)

	PredictionsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_rejected_total",
			Help: "Total number of prediction submissions rejected",
		},
		[]string{"reason"},
	)

	StoreConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_conflicts_total",
			Help: "Total compare-and-swap write conflicts against the backing store",
		},
		[]string{"store"},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total prediction list reads served from cache",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total prediction list reads that hit the backing store",
		},
	)

	StagesCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crawl_stages_completed_total",
			Help: "Total pub crawl stages completed across all participants",
		},
	)

	PunishmentSpinsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crawl_punishment_spins_total",
			Help: "Total punishment wheel spins",
		},
	)

	AchievementsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawl_achievements_awarded_total",
			Help: "Total achievements awarded",
		},
		[]string{"achievement"},
	)

	// Gauges.
	CrawlParticipants = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crawl_participants",
			Help: "Number of registered crawl participants",
		},
	)

	// Histograms.
	StoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_request_duration_seconds",
			Help:    "Duration of backing store operations",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
		[]string{"store", "op"},
	)

	// Scheduler metrics.
	DigestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_runs_total",
			Help: "Total leaderboard digest job executions",
		},
		[]string{"status"},
	)
)
