package cache

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryStorage keeps each store in an in-process LRU of fixed capacity.
// Dropping the least recently used entry when full is the only way an entry
// ever leaves the cache.
type MemoryStorage struct {
	size   int
	mu     sync.Mutex
	stores map[string]*memoryStore
}

// NewMemoryStorage creates a memory storage whose stores hold up to size
// entries each.
func NewMemoryStorage(size int) (*MemoryStorage, error) {
	if size <= 0 {
		return nil, fmt.Errorf("memory store size must be > 0 (got %d)", size)
	}
	return &MemoryStorage{
		size:   size,
		stores: make(map[string]*memoryStore),
	}, nil
}

// Open returns the store with the given name, creating it on first use.
func (m *MemoryStorage) Open(_ context.Context, name string) (Store, error) {
	if name == "" {
		return nil, ErrEmptyStoreName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[name]; ok {
		return store, nil
	}

	entries, err := lru.New[string, *Entry](m.size)
	if err != nil {
		StoreErrors.WithLabelValues(backendMemory, "open").Inc()
		return nil, fmt.Errorf("create lru: %w", err)
	}
	store := &memoryStore{name: name, entries: entries}
	m.stores[name] = store
	return store, nil
}

// Ping always succeeds.
func (m *MemoryStorage) Ping(context.Context) error {
	return nil
}

type memoryStore struct {
	name    string
	entries *lru.Cache[string, *Entry]
}

func (s *memoryStore) Name() string {
	return s.name
}

func (s *memoryStore) Get(_ context.Context, key Key) (*Entry, error) {
	entry, ok := s.entries.Get(key.String())
	if !ok {
		StoreMisses.WithLabelValues(backendMemory).Inc()
		return nil, ErrCacheMiss
	}
	StoreHits.WithLabelValues(backendMemory).Inc()
	return entry.Clone(), nil
}

func (s *memoryStore) Put(_ context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	s.entries.Add(key.String(), entry.Clone())
	StoreBytesWritten.WithLabelValues(backendMemory).Add(float64(entry.Size()))
	return nil
}
