package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"
)

// testStorage runs the behaviour every backend must provide.
func testStorage(t *testing.T, storage Storage) {
	t.Helper()
	ctx := context.Background()

	req, _ := http.NewRequest(http.MethodGet, "http://example.com/img/logo.png", nil)

	t.Run("empty_name_rejected", func(t *testing.T) {
		if _, err := storage.Open(ctx, ""); !errors.Is(err, ErrEmptyStoreName) {
			t.Errorf("Open(\"\") error = %v, want %v", err, ErrEmptyStoreName)
		}
	})

	t.Run("miss_then_hit", func(t *testing.T) {
		store, err := storage.Open(ctx, "images-v1")
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		if store.Name() != "images-v1" {
			t.Errorf("Name() = %q, want %q", store.Name(), "images-v1")
		}

		key := NewKey(store.Name(), req)
		if _, err := store.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
			t.Fatalf("Get() on empty store error = %v, want %v", err, ErrCacheMiss)
		}

		entry := &Entry{
			StatusCode: http.StatusOK,
			Headers:    http.Header{"Content-Type": []string{"image/png"}},
			Body:       []byte("\x89PNG\r\n\x1a\n"),
			CachedAt:   time.Now(),
		}
		if err := store.Put(ctx, key, entry); err != nil {
			t.Fatalf("Put() failed: %v", err)
		}

		got, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get() after Put failed: %v", err)
		}
		if got.StatusCode != entry.StatusCode {
			t.Errorf("StatusCode = %d, want %d", got.StatusCode, entry.StatusCode)
		}
		if !bytes.Equal(got.Body, entry.Body) {
			t.Errorf("Body = %q, want %q", got.Body, entry.Body)
		}
		if ct := got.Headers.Get("Content-Type"); ct != "image/png" {
			t.Errorf("Content-Type = %q, want %q", ct, "image/png")
		}
	})

	t.Run("reopen_sees_same_data", func(t *testing.T) {
		first, err := storage.Open(ctx, "reopen")
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		key := NewKey(first.Name(), req)
		if err := first.Put(ctx, key, &Entry{StatusCode: http.StatusOK, Body: []byte("a")}); err != nil {
			t.Fatalf("Put() failed: %v", err)
		}

		second, err := storage.Open(ctx, "reopen")
		if err != nil {
			t.Fatalf("second Open() failed: %v", err)
		}
		if _, err := second.Get(ctx, key); err != nil {
			t.Errorf("Get() via reopened store failed: %v", err)
		}
	})

	t.Run("stores_are_isolated", func(t *testing.T) {
		v1, err := storage.Open(ctx, "isolated-v1")
		if err != nil {
			t.Fatalf("Open(v1) failed: %v", err)
		}
		v2, err := storage.Open(ctx, "isolated-v2")
		if err != nil {
			t.Fatalf("Open(v2) failed: %v", err)
		}

		if err := v1.Put(ctx, NewKey(v1.Name(), req), &Entry{StatusCode: http.StatusOK, Body: []byte("v1")}); err != nil {
			t.Fatalf("Put() failed: %v", err)
		}
		if _, err := v2.Get(ctx, NewKey(v2.Name(), req)); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("Get() in other store error = %v, want %v", err, ErrCacheMiss)
		}
	})

	t.Run("last_write_wins", func(t *testing.T) {
		store, err := storage.Open(ctx, "overwrite")
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		key := NewKey(store.Name(), req)
		for _, body := range []string{"first", "second"} {
			if err := store.Put(ctx, key, &Entry{StatusCode: http.StatusOK, Body: []byte(body)}); err != nil {
				t.Fatalf("Put(%s) failed: %v", body, err)
			}
		}

		got, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if string(got.Body) != "second" {
			t.Errorf("Body = %q, want %q", got.Body, "second")
		}
	})

	t.Run("concurrent_puts", func(t *testing.T) {
		store, err := storage.Open(ctx, "concurrent")
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}

		var wg sync.WaitGroup
		errs := make(chan error, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				r, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("http://example.com/%d.gif", i), nil)
				errs <- store.Put(ctx, NewKey(store.Name(), r), &Entry{StatusCode: http.StatusOK, Body: []byte("GIF")})
			}(i)
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Errorf("concurrent Put() failed: %v", err)
			}
		}
	})

	t.Run("nil_entry_rejected", func(t *testing.T) {
		store, err := storage.Open(ctx, "nil-entry")
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		if err := store.Put(ctx, NewKey(store.Name(), req), nil); err == nil {
			t.Error("Put(nil) should fail")
		}
	})
}
