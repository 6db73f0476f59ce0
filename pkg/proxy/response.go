package proxy

import (
	"encoding/json"
	"net/http"

	"github.com/Sternrassler/quran-api-proxy/pkg/cache"
)

// CacheStatus is the value of the X-Cache diagnostic header.
type CacheStatus string

const (
	// CacheHit means the response was served from a fresh entry.
	CacheHit CacheStatus = "HIT"

	// CacheMiss means the response came from the upstream.
	CacheMiss CacheStatus = "MISS"

	// CacheStale means an expired entry was replaced or replayed.
	CacheStale CacheStatus = "STALE"

	// CacheBypass means the cache played no part in the response.
	CacheBypass CacheStatus = "BYPASS"
)

const (
	// HeaderCacheStatus carries the CacheStatus of every response.
	HeaderCacheStatus = "X-Cache"

	// DefaultCacheControl is the fallback when neither the upstream nor the
	// handler supplied a Cache-Control value.
	DefaultCacheControl = "public, max-age=60"
)

// Response is a fully composed outgoing response.
type Response struct {
	StatusCode  int
	Header      http.Header
	Body        []byte
	CacheStatus CacheStatus
}

// compose builds a Response from body, status and headers.
// It always stamps X-Cache and guarantees a Cache-Control header, using
// cacheControl (or DefaultCacheControl when empty) if none was propagated.
func compose(body []byte, statusCode int, headers http.Header, status CacheStatus, cacheControl string) *Response {
	h := headers.Clone()
	if h == nil {
		h = make(http.Header)
	}
	if h.Get("Cache-Control") == "" {
		if cacheControl == "" {
			cacheControl = DefaultCacheControl
		}
		h.Set("Cache-Control", cacheControl)
	}
	h.Set(HeaderCacheStatus, string(status))

	return &Response{
		StatusCode:  statusCode,
		Header:      h,
		Body:        body,
		CacheStatus: status,
	}
}

// notModified builds a bodyless 304 carrying only the validator.
func notModified(etag string, status CacheStatus, cacheControl string) *Response {
	h := make(http.Header)
	h.Set("ETag", etag)
	return compose(nil, http.StatusNotModified, h, status, cacheControl)
}

// fromEntry replays a cached entry.
func fromEntry(entry *cache.CacheEntry, status CacheStatus, cacheControl string) *Response {
	return compose(entry.Body, entry.StatusCode, entry.Headers, status, cacheControl)
}

// errorResponse builds a JSON {"error": message} response that must not be cached.
func errorResponse(statusCode int, message string) *Response {
	body, _ := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: message})

	h := make(http.Header)
	h.Set("Content-Type", cache.DefaultContentType)
	h.Set("Cache-Control", "no-store")
	return compose(body, statusCode, h, CacheBypass, "")
}

// write sends resp to w. The body is omitted when includeBody is false.
func (resp *Response) write(w http.ResponseWriter, includeBody bool) error {
	dst := w.Header()
	for key, values := range resp.Header {
		dst[key] = append([]string(nil), values...)
	}

	w.WriteHeader(resp.StatusCode)
	if !includeBody || len(resp.Body) == 0 {
		return nil
	}
	_, err := w.Write(resp.Body)
	return err
}
