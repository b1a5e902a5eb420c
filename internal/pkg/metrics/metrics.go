// Package metrics registers the Prometheus instruments exposed by the
// webservice's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts orchestrator runs by scenario kind, simulator mode,
	// and outcome.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridplan_runs_total",
			Help: "Total number of simulation runs",
		},
		[]string{"kind", "mode", "outcome"},
	)

	// CacheHitsTotal counts cache lookups that returned a stored result.
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gridplan_cache_hits_total",
			Help: "Total number of result cache hits",
		},
	)

	// CacheMissesTotal counts cache lookups that required a computation.
	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gridplan_cache_misses_total",
			Help: "Total number of result cache misses",
		},
	)

	// SolveDuration observes wall-clock solver time.
	SolveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridplan_solve_duration_seconds",
			Help:    "Duration of solver invocations in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"solver"},
	)
)
