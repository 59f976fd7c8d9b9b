package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteStorage keeps all stores in one SQLite database.
type SQLiteStorage struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteStorage opens (or creates) the database at filename.
// If filename is empty, a shared in-memory database is used.
func NewSQLiteStorage(filename string) (*SQLiteStorage, error) {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stores (
			name TEXT PRIMARY KEY,
			created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			store TEXT NOT NULL,
			key TEXT NOT NULL,
			status INTEGER NOT NULL,
			headers BLOB,
			body BLOB,
			cached_at INTEGER,
			PRIMARY KEY (store, key)
		)`,
		"PRAGMA journal_mode=WAL",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init sqlite schema: %w", err)
		}
	}

	return &SQLiteStorage{
		db:         db,
		writeMutex: &sync.Mutex{},
	}, nil
}

// Open creates the store row if needed and returns a handle to it.
func (s *SQLiteStorage) Open(ctx context.Context, name string) (Store, error) {
	if name == "" {
		return nil, ErrEmptyStoreName
	}

	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO stores (name, created_at) VALUES (?, ?)",
		name, time.Now().Unix())
	if err != nil {
		StoreErrors.WithLabelValues(backendSQLite, "open").Inc()
		return nil, fmt.Errorf("sqlite insert store: %w", err)
	}

	return &sqliteStore{storage: s, name: name}, nil
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type sqliteStore struct {
	storage *SQLiteStorage
	name    string
}

func (s *sqliteStore) Name() string {
	return s.name
}

func (s *sqliteStore) Get(ctx context.Context, key Key) (*Entry, error) {
	var (
		entry    Entry
		headers  []byte
		cachedAt int64
	)
	err := s.storage.db.QueryRowContext(ctx,
		"SELECT status, headers, body, cached_at FROM entries WHERE store = ? AND key = ?",
		s.name, key.String(),
	).Scan(&entry.StatusCode, &headers, &entry.Body, &cachedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			StoreMisses.WithLabelValues(backendSQLite).Inc()
			return nil, ErrCacheMiss
		}
		StoreErrors.WithLabelValues(backendSQLite, "get").Inc()
		return nil, fmt.Errorf("sqlite select: %w", err)
	}

	if len(headers) > 0 {
		entry.Headers = make(http.Header)
		if err := json.Unmarshal(headers, &entry.Headers); err != nil {
			StoreErrors.WithLabelValues(backendSQLite, "get").Inc()
			return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
		}
	}
	entry.CachedAt = time.Unix(cachedAt, 0)

	StoreHits.WithLabelValues(backendSQLite).Inc()
	return &entry, nil
}

func (s *sqliteStore) Put(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	headers, err := json.Marshal(entry.Headers)
	if err != nil {
		StoreErrors.WithLabelValues(backendSQLite, "put").Inc()
		return fmt.Errorf("marshal headers: %w", err)
	}

	s.storage.writeMutex.Lock()
	defer s.storage.writeMutex.Unlock()
	_, err = s.storage.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO entries
		(store, key, status, headers, body, cached_at) VALUES (?, ?, ?, ?, ?, ?)`,
		s.name, key.String(), entry.StatusCode, headers, entry.Body, entry.CachedAt.Unix())
	if err != nil {
		StoreErrors.WithLabelValues(backendSQLite, "put").Inc()
		return fmt.Errorf("sqlite insert entry: %w", err)
	}

	StoreBytesWritten.WithLabelValues(backendSQLite).Add(float64(entry.Size()))
	return nil
}
