package cache

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestNewMemoryStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "positive size", size: 16, wantErr: false},
		{name: "zero size", size: 0, wantErr: true},
		{name: "negative size", size: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, err := NewMemoryStorage(tt.size)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewMemoryStorage(%d) error = %v, wantErr %v", tt.size, err, tt.wantErr)
			}
			if !tt.wantErr && storage == nil {
				t.Error("NewMemoryStorage returned nil storage")
			}
		})
	}
}

func TestMemoryStorage(t *testing.T) {
	storage, err := NewMemoryStorage(64)
	if err != nil {
		t.Fatalf("NewMemoryStorage() failed: %v", err)
	}
	testStorage(t, storage)
}

func TestMemoryStorage_CapacityBound(t *testing.T) {
	ctx := context.Background()
	storage, err := NewMemoryStorage(1)
	if err != nil {
		t.Fatalf("NewMemoryStorage() failed: %v", err)
	}
	store, err := storage.Open(ctx, "images-v1")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	first, _ := http.NewRequest(http.MethodGet, "http://example.com/a.png", nil)
	second, _ := http.NewRequest(http.MethodGet, "http://example.com/b.png", nil)

	store.Put(ctx, NewKey(store.Name(), first), &Entry{StatusCode: http.StatusOK})
	store.Put(ctx, NewKey(store.Name(), second), &Entry{StatusCode: http.StatusOK})

	if _, err := store.Get(ctx, NewKey(store.Name(), first)); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(first) error = %v, want %v", err, ErrCacheMiss)
	}
	if _, err := store.Get(ctx, NewKey(store.Name(), second)); err != nil {
		t.Errorf("Get(second) failed: %v", err)
	}
}

func TestMemoryStorage_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	storage, _ := NewMemoryStorage(4)
	store, _ := storage.Open(ctx, "images-v1")
	req, _ := http.NewRequest(http.MethodGet, "http://example.com/a.svg", nil)
	key := NewKey(store.Name(), req)

	store.Put(ctx, key, &Entry{StatusCode: http.StatusOK, Body: []byte("<svg/>")})

	got, _ := store.Get(ctx, key)
	got.Body[0] = 'X'

	again, _ := store.Get(ctx, key)
	if string(again.Body) != "<svg/>" {
		t.Errorf("stored body = %q, want %q", again.Body, "<svg/>")
	}
}

func TestMemoryStorage_Ping(t *testing.T) {
	storage, _ := NewMemoryStorage(1)
	if err := storage.Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v, want nil", err)
	}
}
