// Package cache provides named, persistent response stores for the image
// interceptor.
//
// A Storage hands out Stores by name. Opening a name that does not exist yet
// creates it; opening it again returns a handle to the same data. Changing
// the name is how a deployment starts over with an empty cache: the old
// store stays where it is and is simply no longer consulted.
//
// Three backends are provided:
//
//   - RedisStorage: shared across processes, keys namespaced per store
//   - SQLiteStorage: a single database file on local disk
//   - MemoryStorage: an LRU per store, for tests and single-process setups
//
// # Basic Usage
//
//	storage, err := cache.NewSQLiteStorage("imgcache.db")
//	if err != nil {
//		return err
//	}
//	defer storage.Close()
//
//	store, err := storage.Open(ctx, "images-v1")
//	if err != nil {
//		return err
//	}
//
//	key := cache.NewKey(store.Name(), req)
//	entry, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from network, then:
//		entry, err = cache.ResponseToEntry(resp)
//		...
//		err = store.Put(ctx, key, entry)
//	}
//
// Entries never expire. Stores only insert and overwrite; nothing in this
// package deletes an entry.
//
// # Metrics
//
//   - imgcache_store_hits_total{backend}
//   - imgcache_store_misses_total{backend}
//   - imgcache_store_errors_total{backend,operation}
//   - imgcache_store_bytes_written_total{backend}
package cache
