package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/image-cache/internal/config"
	"github.com/Sternrassler/image-cache/pkg/cache"
	"github.com/Sternrassler/image-cache/pkg/interceptor"
	"github.com/Sternrassler/image-cache/pkg/logging"
	"github.com/Sternrassler/image-cache/pkg/metrics"
	"github.com/Sternrassler/image-cache/pkg/proxy"
	"github.com/Sternrassler/image-cache/pkg/tracing"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	serviceName     = "image-proxy"
	shutdownTimeout = 30 * time.Second
)

// backend is a cache storage that can report its health.
type backend interface {
	cache.Storage
	cache.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Config{
		Level:   logging.LogLevel(cfg.LogLevel),
		Pretty:  cfg.LogPretty,
		Output:  os.Stderr,
		Service: serviceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	shutdownTracing, err := tracing.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer shutdownTracing(context.Background())
	if cfg.OTelEndpoint != "" {
		logger.Info().Str("endpoint", cfg.OTelEndpoint).Msg("Tracing enabled")
	}

	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()
	logger.Info().Str("backend", cfg.Backend).Str("store", cfg.StoreName).Msg("Cache storage ready")

	client, err := newUpstreamClient(cfg, storage, logger)
	if err != nil {
		return err
	}

	proxyServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           otelhttp.NewHandler(proxy.NewHandler(client, &logger), "image-proxy"),
		ReadHeaderTimeout: 10 * time.Second,
	}
	adminServer := &http.Server{
		Addr:              cfg.AdminAddr,
		Handler:           proxy.NewAdminRouter(storage, metrics.Gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	for _, srv := range []*http.Server{proxyServer, adminServer} {
		go func(srv *http.Server) {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen on %s: %w", srv.Addr, err)
			}
		}(srv)
	}
	logger.Info().
		Str("listen_addr", cfg.ListenAddr).
		Str("admin_addr", cfg.AdminAddr).
		Msg("Starting image proxy")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, srv := range []*http.Server{proxyServer, adminServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Str("addr", srv.Addr).Msg("Graceful shutdown failed")
		}
	}
	logger.Info().Msg("Image proxy stopped")

	return runErr
}

// openStorage opens the configured backend. The returned close function
// releases its resources.
func openStorage(ctx context.Context, cfg config.Config) (backend, func() error, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisURL, err)
		}
		return cache.NewRedisStorage(client), client.Close, nil

	case config.BackendSQLite:
		storage, err := cache.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite at %s: %w", cfg.SQLitePath, err)
		}
		return storage, storage.Close, nil

	case config.BackendMemory:
		storage, err := cache.NewMemoryStorage(cfg.MemoryEntries)
		if err != nil {
			return nil, nil, err
		}
		return storage, func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// newUpstreamClient builds the client used by the proxy, with the image
// interceptor wrapping a dedicated network transport. Redirects are
// returned to the caller instead of being followed.
func newUpstreamClient(cfg config.Config, storage cache.Storage, logger zerolog.Logger) (*http.Client, error) {
	transport, err := interceptor.New(interceptor.Config{
		Storage:   storage,
		StoreName: cfg.StoreName,
		Next:      http.DefaultTransport.(*http.Transport).Clone(),
		Logger:    &logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create interceptor: %w", err)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.UpstreamTimeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}
