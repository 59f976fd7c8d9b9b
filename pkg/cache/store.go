package cache

import (
	"context"
	"errors"
)

var (
	// ErrCacheMiss indicates the requested key was not found in the store
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the stored entry could not be decoded
	ErrInvalidEntry = errors.New("invalid cache entry")

	// ErrEmptyStoreName is returned by Open when no store name is given
	ErrEmptyStoreName = errors.New("store name cannot be empty")
)

// Store is a single named cache. Implementations must be safe for
// concurrent use and make Put atomic per key (last write wins).
type Store interface {
	// Name returns the name the store was opened with.
	Name() string

	// Get returns the entry stored under key, or ErrCacheMiss.
	Get(ctx context.Context, key Key) (*Entry, error)

	// Put stores entry under key, replacing any previous entry.
	Put(ctx context.Context, key Key, entry *Entry) error
}

// Storage opens named stores, creating them if absent.
type Storage interface {
	Open(ctx context.Context, name string) (Store, error)
}

// Pinger reports whether a storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
