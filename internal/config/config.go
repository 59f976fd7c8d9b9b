// Package config loads the image-proxy configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/Sternrassler/image-cache/pkg/logging"
	"github.com/caarlos0/env/v11"
)

// Backend names accepted by IMGCACHE_BACKEND.
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the image-proxy configuration.
type Config struct {
	ListenAddr string `env:"IMGCACHE_LISTEN_ADDR" envDefault:":8080"`
	AdminAddr  string `env:"IMGCACHE_ADMIN_ADDR"  envDefault:":9090"`

	Backend       string `env:"IMGCACHE_BACKEND"        envDefault:"sqlite"`
	RedisURL      string `env:"IMGCACHE_REDIS_URL"      envDefault:"localhost:6379"`
	SQLitePath    string `env:"IMGCACHE_SQLITE_PATH"    envDefault:"imgcache.db"`
	MemoryEntries int    `env:"IMGCACHE_MEMORY_ENTRIES" envDefault:"1024"`
	StoreName     string `env:"IMGCACHE_STORE_NAME"     envDefault:"images-v1"`

	UpstreamTimeout time.Duration `env:"IMGCACHE_UPSTREAM_TIMEOUT" envDefault:"30s"`

	LogLevel     string `env:"IMGCACHE_LOG_LEVEL"     envDefault:"info"`
	LogPretty    bool   `env:"IMGCACHE_LOG_PRETTY"    envDefault:"false"`
	OTelEndpoint string `env:"IMGCACHE_OTEL_ENDPOINT"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendRedis, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want redis, sqlite or memory)", c.Backend)
	}

	if c.StoreName == "" {
		return fmt.Errorf("store name cannot be empty")
	}
	if c.Backend == BackendMemory && c.MemoryEntries <= 0 {
		return fmt.Errorf("memory entries must be positive (got %d)", c.MemoryEntries)
	}
	if c.UpstreamTimeout < 0 {
		return fmt.Errorf("upstream timeout cannot be negative (got %s)", c.UpstreamTimeout)
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	return nil
}
