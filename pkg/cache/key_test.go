package cache

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "get request",
			key: Key{
				Store:  "images-v1",
				Method: "GET",
				URL:    "https://example.com/img/logo.png",
			},
			want: "images-v1:GET:https://example.com/img/logo.png",
		},
		{
			name: "head request",
			key: Key{
				Store:  "images-v1",
				Method: "HEAD",
				URL:    "https://example.com/img/logo.png",
			},
			want: "images-v1:HEAD:https://example.com/img/logo.png",
		},
		{
			name: "other store",
			key: Key{
				Store:  "images-v2",
				Method: "GET",
				URL:    "https://example.com/img/logo.png",
			},
			want: "images-v2:GET:https://example.com/img/logo.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewKey(t *testing.T) {
	tests := []struct {
		name   string
		method string
		url    string
		want   Key
	}{
		{
			name:   "plain get",
			method: http.MethodGet,
			url:    "http://example.com/img/logo.png",
			want:   Key{Store: "images-v1", Method: "GET", URL: "http://example.com/img/logo.png"},
		},
		{
			name:   "query is part of identity",
			method: http.MethodGet,
			url:    "http://example.com/img/logo.png?v=2",
			want:   Key{Store: "images-v1", Method: "GET", URL: "http://example.com/img/logo.png?v=2"},
		},
		{
			name:   "fragment is dropped",
			method: http.MethodGet,
			url:    "http://example.com/img/logo.png#top",
			want:   Key{Store: "images-v1", Method: "GET", URL: "http://example.com/img/logo.png"},
		},
		{
			name:   "method is part of identity",
			method: http.MethodHead,
			url:    "http://example.com/img/logo.png",
			want:   Key{Store: "images-v1", Method: "HEAD", URL: "http://example.com/img/logo.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, nil)
			if got := NewKey("images-v1", req); got != tt.want {
				t.Errorf("NewKey() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewKey_EmptyMethodIsGet(t *testing.T) {
	req, err := http.NewRequest("", "http://example.com/a.gif", nil)
	if err != nil {
		t.Fatalf("NewRequest() failed: %v", err)
	}

	key := NewKey("images-v1", req)
	if key.Method != http.MethodGet {
		t.Errorf("Method = %q, want %q", key.Method, http.MethodGet)
	}
}

func TestNewKey_DoesNotModifyRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/a.gif#frag", nil)
	_ = NewKey("images-v1", req)

	if req.URL.Fragment != "frag" {
		t.Errorf("request fragment = %q, want %q", req.URL.Fragment, "frag")
	}
}
