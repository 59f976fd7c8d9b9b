package cache

import (
	"github.com/Sternrassler/image-cache/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Backend labels.
const (
	backendRedis  = "redis"
	backendSQLite = "sqlite"
	backendMemory = "memory"
)

var (
	// StoreHits tracks lookups that found an entry, by backend
	StoreHits = promauto.With(metrics.Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgcache_store_hits_total",
			Help: "Total number of cache store hits",
		},
		[]string{"backend"},
	)

	// StoreMisses tracks lookups that found nothing, by backend
	StoreMisses = promauto.With(metrics.Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgcache_store_misses_total",
			Help: "Total number of cache store misses",
		},
		[]string{"backend"},
	)

	// StoreErrors tracks failed store operations
	StoreErrors = promauto.With(metrics.Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgcache_store_errors_total",
			Help: "Total number of cache store operation errors",
		},
		[]string{"backend", "operation"}, // "open", "get", "put"
	)

	// StoreBytesWritten tracks body bytes persisted, by backend
	StoreBytesWritten = promauto.With(metrics.Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgcache_store_bytes_written_total",
			Help: "Total number of response body bytes written to cache stores",
		},
		[]string{"backend"},
	)
)
