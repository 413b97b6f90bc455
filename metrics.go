package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "s3cache_lookups_total",
		Help: "The total number of cache lookups by result.",
	}, []string{
		"result", // One of "hit", "miss" or "expired".
	})
	absorbedErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "s3cache_absorbed_errors_total",
		Help: "The total number of storage errors absorbed by the never-raises contract.",
	}, []string{
		"op", // The cache operation that absorbed the error.
	})
	cullRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "s3cache_cull_runs_total",
		Help: "The total number of completed cull cycles.",
	})
	culledKeys = promauto.NewCounter(prometheus.CounterOpts{
		Name: "s3cache_culled_keys_total",
		Help: "The total number of keys deleted by culling.",
	})
)
