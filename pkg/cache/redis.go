package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keys used by RedisStorage.
const (
	// RedisKeyStores is the set holding the names of all opened stores.
	RedisKeyStores = "imgcache:stores"

	redisEntryPrefix = "imgcache:entry:"
)

// RedisStorage keeps stores in Redis. Each store is a key namespace; entries
// are written without TTL.
type RedisStorage struct {
	redis *redis.Client
}

// NewRedisStorage creates a storage backed by the given Redis client.
func NewRedisStorage(redisClient *redis.Client) *RedisStorage {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStorage{
		redis: redisClient,
	}
}

// Open registers the store name and returns a handle to it.
func (s *RedisStorage) Open(ctx context.Context, name string) (Store, error) {
	if name == "" {
		return nil, ErrEmptyStoreName
	}

	if err := s.redis.SAdd(ctx, RedisKeyStores, name).Err(); err != nil {
		StoreErrors.WithLabelValues(backendRedis, "open").Inc()
		return nil, fmt.Errorf("redis sadd: %w", err)
	}

	return &redisStore{redis: s.redis, name: name}, nil
}

// Ping checks the Redis connection.
func (s *RedisStorage) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

type redisStore struct {
	redis *redis.Client
	name  string
}

func (s *redisStore) Name() string {
	return s.name
}

func (s *redisStore) Get(ctx context.Context, key Key) (*Entry, error) {
	data, err := s.redis.Get(ctx, redisEntryPrefix+key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			StoreMisses.WithLabelValues(backendRedis).Inc()
			return nil, ErrCacheMiss
		}
		StoreErrors.WithLabelValues(backendRedis, "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		StoreErrors.WithLabelValues(backendRedis, "get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	StoreHits.WithLabelValues(backendRedis).Inc()
	return &entry, nil
}

func (s *redisStore) Put(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		StoreErrors.WithLabelValues(backendRedis, "put").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.redis.Set(ctx, redisEntryPrefix+key.String(), data, 0).Err(); err != nil {
		StoreErrors.WithLabelValues(backendRedis, "put").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	StoreBytesWritten.WithLabelValues(backendRedis).Add(float64(entry.Size()))
	return nil
}
