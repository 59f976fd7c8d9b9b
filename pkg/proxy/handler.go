// Package proxy serves the image cache over HTTP: a forward proxy that
// routes requests through the interceptor, and an admin router.
package proxy

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Sternrassler/image-cache/pkg/logging"
	"github.com/Sternrassler/image-cache/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var proxyResponsesTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
	Name: "imgcache_proxy_responses_total",
	Help: "Responses written by the forward proxy by status code",
}, []string{"code"})

// hopHeaders are removed when forwarding in either direction (RFC 9110 7.6.1).
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Handler is a forward proxy. Every request is sent through the wrapped
// client, whose transport is expected to be the image interceptor.
type Handler struct {
	client *http.Client
	logger zerolog.Logger
}

// NewHandler creates a forward proxy sending requests through client.
// A nil logger uses the global logger.
func NewHandler(client *http.Client, logger *zerolog.Logger) *Handler {
	l := logging.NewLogger("proxy")
	if logger != nil {
		l = logger.With().Str("component", "proxy").Logger()
	}
	return &Handler{client: client, logger: l}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodConnect {
		h.fail(w, "CONNECT is not supported", http.StatusMethodNotAllowed)
		return
	}
	if !r.URL.IsAbs() {
		h.fail(w, "absolute URI required", http.StatusBadRequest)
		return
	}

	out, err := http.NewRequestWithContext(r.Context(), r.Method, r.URL.String(), r.Body)
	if err != nil {
		h.fail(w, "invalid request", http.StatusBadRequest)
		return
	}
	out.Header = r.Header.Clone()
	out.ContentLength = r.ContentLength
	removeHopHeaders(out.Header)

	resp, err := h.client.Do(out)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("method", r.Method).
			Str("url", r.URL.String()).
			Msg("Upstream request failed")
		h.fail(w, "upstream request failed", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	removeHopHeaders(resp.Header)
	for key, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(resp.StatusCode)
	proxyResponsesTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Debug().Err(err).Str("url", r.URL.String()).Msg("Failed to copy response body")
	}
}

func (h *Handler) fail(w http.ResponseWriter, msg string, code int) {
	proxyResponsesTotal.WithLabelValues(strconv.Itoa(code)).Inc()
	http.Error(w, msg, code)
}

// removeHopHeaders deletes hop-by-hop headers, including the ones named
// by the Connection header.
func removeHopHeaders(header http.Header) {
	for _, value := range header.Values("Connection") {
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				header.Del(name)
			}
		}
	}
	for _, name := range hopHeaders {
		header.Del(name)
	}
}
