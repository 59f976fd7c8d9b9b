package proxy

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Sternrassler/image-cache/pkg/cache"
	"github.com/Sternrassler/image-cache/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// readyTimeout bounds the storage ping done by /ready.
const readyTimeout = 2 * time.Second

// NewAdminRouter creates the admin router serving /health, /ready and
// /metrics. A nil pinger makes /ready always succeed.
func NewAdminRouter(pinger cache.Pinger, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(pinger))
	r.Method(http.MethodGet, "/metrics", metrics.HandlerFor(gatherer))

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func readyHandler(pinger cache.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()

			if err := pinger.Ping(ctx); err != nil {
				http.Error(w, fmt.Sprintf("Storage not ready: %v", err), http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Ready")
	}
}
