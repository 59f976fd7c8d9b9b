package cache

import (
	"net/http"
	"strings"
)

// Key identifies a cached response inside a named store.
type Key struct {
	// Store is the name of the store the entry belongs to (e.g., "images-v1")
	Store string

	// Method is the request method (e.g., "GET")
	Method string

	// URL is the absolute request URL without fragment
	URL string
}

// NewKey derives the key for a request in the given store.
// An empty method is treated as GET, matching net/http.
func NewKey(store string, req *http.Request) Key {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	u := *req.URL
	u.Fragment = ""
	u.RawFragment = ""

	return Key{
		Store:  store,
		Method: method,
		URL:    u.String(),
	}
}

// String generates a deterministic cache key string.
// Format: store:METHOD:url
//
// Example:
//
//	images-v1:GET:https://example.com/img/logo.png
func (k Key) String() string {
	return strings.Join([]string{k.Store, k.Method, k.URL}, ":")
}
