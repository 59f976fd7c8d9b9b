// Package metrics exposes the Prometheus registry shared by the image cache.
// Metrics are defined next to the code that records them (interceptor,
// cache, proxy) and registered through promauto on Registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all image cache metrics are registered with
// (promauto.With(Registry)).
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer served by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler returns an HTTP handler serving Gatherer in the Prometheus
// exposition format.
func Handler() http.Handler {
	return HandlerFor(Gatherer)
}

// HandlerFor returns an HTTP handler serving gatherer.
func HandlerFor(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Interceptor Metrics (pkg/interceptor):
//   - imgcache_requests_total{outcome} (Counter): Requests by outcome
//     (bypass, hit, stored, store_failed, passthrough, error)
//   - imgcache_request_duration_seconds{outcome} (Histogram): Time to resolve a matched request
//   - imgcache_store_open_total{result} (Counter): Store open attempts (success, failure)
//
// Store Metrics (pkg/cache):
//   - imgcache_store_hits_total{backend} (Counter): Lookups that found an entry
//   - imgcache_store_misses_total{backend} (Counter): Lookups that found nothing
//   - imgcache_store_errors_total{backend, operation} (Counter): Failed open/get/put operations
//   - imgcache_store_bytes_written_total{backend} (Counter): Body bytes persisted
//
// Proxy Metrics (pkg/proxy):
//   - imgcache_proxy_responses_total{code} (Counter): Responses written by the forward proxy
//
// Example Prometheus Queries:
//
//   # Hit Rate among matched requests
//   sum(rate(imgcache_requests_total{outcome="hit"}[5m])) /
//   sum(rate(imgcache_requests_total{outcome!="bypass"}[5m]))
//
//   # Store Error Rate
//   sum by (backend, operation) (rate(imgcache_store_errors_total[5m]))
//
//   # P95 Resolve Latency on misses
//   histogram_quantile(0.95, rate(imgcache_request_duration_seconds_bucket{outcome="stored"}[5m]))
