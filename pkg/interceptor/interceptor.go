package interceptor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/image-cache/pkg/cache"
	"github.com/Sternrassler/image-cache/pkg/logging"
	"github.com/Sternrassler/image-cache/pkg/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultStoreName is the name of the cache store used when none is configured.
const DefaultStoreName = "images-v1"

// Extensions lists the path suffixes that engage caching.
var Extensions = []string{".gif", ".png", ".jpg", ".jpeg", ".webp", ".svg"}

// ErrNoStorage is returned by New when no cache storage is configured.
var ErrNoStorage = errors.New("cache storage is required")

// Matches reports whether path ends with one of the image Extensions.
// The comparison is case-sensitive.
func Matches(path string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Config holds the interceptor configuration.
type Config struct {
	// Storage opens the named cache store (REQUIRED)
	Storage cache.Storage

	// StoreName is the cache store to use (default: DefaultStoreName)
	StoreName string

	// Next is the transport used for network fetches (default: http.DefaultTransport)
	Next http.RoundTripper

	// Logger overrides the component logger
	Logger *zerolog.Logger

	// TracerProvider overrides the global OpenTelemetry tracer provider
	TracerProvider trace.TracerProvider
}

// DefaultConfig returns a configuration using the default store name and
// http.DefaultTransport.
func DefaultConfig(storage cache.Storage) Config {
	return Config{
		Storage:   storage,
		StoreName: DefaultStoreName,
		Next:      http.DefaultTransport,
	}
}

// Transport is an http.RoundTripper applying cache-aside to image requests.
type Transport struct {
	storage cache.Storage
	name    string
	next    http.RoundTripper
	logger  zerolog.Logger
	tracer  trace.Tracer

	mu    sync.Mutex
	store cache.Store
}

// New creates a new interceptor transport.
func New(cfg Config) (*Transport, error) {
	if cfg.Storage == nil {
		return nil, ErrNoStorage
	}

	name := cfg.StoreName
	if name == "" {
		name = DefaultStoreName
	}

	next := cfg.Next
	if next == nil {
		next = http.DefaultTransport
	}

	logger := logging.NewLogger("interceptor")
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "interceptor").Logger()
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Transport{
		storage: cfg.Storage,
		name:    name,
		next:    next,
		logger:  logger.With().Str("store", name).Logger(),
		tracer:  tp.Tracer(tracing.InstrumentationName),
	}, nil
}

// StoreName returns the name of the cache store in use.
func (t *Transport) StoreName() string {
	return t.name
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !Matches(req.URL.Path) || !cacheableMethod(req.Method) {
		requestsTotal.WithLabelValues(OutcomeBypass.String()).Inc()
		return t.next.RoundTrip(req)
	}

	method := http.MethodGet

	startTime := time.Now()
	ctx, span := t.tracer.Start(req.Context(), "interceptor.RoundTrip",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("url.path", req.URL.Path),
		),
	)
	defer span.End()

	resp, outcome, err := t.resolve(ctx, req)
	duration := time.Since(startTime)

	span.SetAttributes(attribute.String("imgcache.outcome", outcome.String()))
	requestsTotal.WithLabelValues(outcome.String()).Inc()
	requestDuration.WithLabelValues(outcome.String()).Observe(duration.Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.logger.Warn().
			Err(err).
			Str("method", method).
			Str("url", req.URL.String()).
			Dur("duration", duration).
			Msg("Image request failed")
		return nil, err
	}

	t.logger.Debug().
		Str("method", method).
		Str("url", req.URL.String()).
		Str("outcome", outcome.String()).
		Int("status_code", resp.StatusCode).
		Dur("duration", duration).
		Msg("Image request resolved")

	return resp, nil
}

// resolve runs the cache-aside protocol for a matched request.
func (t *Transport) resolve(ctx context.Context, req *http.Request) (*http.Response, Outcome, error) {
	store, err := t.openStore(ctx)
	if err != nil {
		closeRequestBody(req)
		return nil, OutcomeError, fmt.Errorf("open cache store %q: %w", t.name, err)
	}

	key := cache.NewKey(store.Name(), req)

	entry, err := store.Get(ctx, key)
	if err == nil {
		closeRequestBody(req)
		return cache.EntryToResponse(entry, req), OutcomeHit, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		closeRequestBody(req)
		return nil, OutcomeError, fmt.Errorf("get cache entry: %w", err)
	}

	resp, err := t.next.RoundTrip(req.WithContext(ctx))
	if err != nil {
		return nil, OutcomeError, err
	}

	if !isOK(resp.StatusCode) {
		return resp, OutcomePassthrough, nil
	}

	entry, err = cache.ResponseToEntry(resp)
	if err != nil {
		return nil, OutcomeError, err
	}

	// A failed write leaves the fetched response intact for the caller.
	if err := store.Put(ctx, key, entry); err != nil {
		err = fmt.Errorf("put cache entry: %w", err)
		trace.SpanFromContext(ctx).RecordError(err)
		t.logger.Warn().
			Err(err).
			Str("url", req.URL.String()).
			Msg("Failed to store image response")
		return resp, OutcomeStoreFailed, nil
	}

	return resp, OutcomeStored, nil
}

// cacheableMethod reports whether requests with method take part in
// caching. Only GET does; an empty method means GET.
func cacheableMethod(method string) bool {
	return method == "" || method == http.MethodGet
}

// closeRequestBody closes the request body on paths that never reach the
// next transport.
func closeRequestBody(req *http.Request) {
	if req.Body != nil {
		req.Body.Close()
	}
}

// openStore returns the memoized store, opening it on first use.
// A failed open is not remembered, so the next request retries.
func (t *Transport) openStore(ctx context.Context) (cache.Store, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.store != nil {
		return t.store, nil
	}

	store, err := t.storage.Open(ctx, t.name)
	if err != nil {
		storeOpenTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	storeOpenTotal.WithLabelValues("success").Inc()
	t.logger.Debug().Msg("Cache store opened")
	t.store = store
	return store, nil
}

func isOK(status int) bool {
	return status >= 200 && status <= 299
}
