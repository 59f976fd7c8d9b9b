package interceptor

import (
	"github.com/Sternrassler/image-cache/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "imgcache_requests_total",
		Help: "Total requests seen by the image cache interceptor by outcome",
	}, []string{"outcome"})

	requestDuration = promauto.With(metrics.Registry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "imgcache_request_duration_seconds",
		Help:    "Time to resolve a matched request in seconds by outcome",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"outcome"})

	storeOpenTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "imgcache_store_open_total",
		Help: "Cache store open attempts by result",
	}, []string{"result"}) // "success", "failure"
)
