// Package interceptor provides an http.RoundTripper that caches image
// responses with a cache-aside policy.
//
// Requests whose URL path ends in a recognized image extension are looked
// up in a named cache store. A hit is served from the store without any
// network access. A miss is sent to the next transport, and an ok (2xx)
// response is persisted before it is returned. Every other request passes
// through to the next transport untouched.
//
// Usage:
//
//	storage, err := cache.NewSQLiteStorage("imgcache.db")
//	if err != nil {
//		return err
//	}
//	transport, err := interceptor.New(interceptor.DefaultConfig(storage))
//	if err != nil {
//		return err
//	}
//	client := &http.Client{Transport: transport}
//
// Cached entries never expire. Changing the store name starts from an
// empty store.
package interceptor
