package cache

import (
	"net/http"
	"time"
)

// CacheEntry represents a cached upstream response.
type CacheEntry struct {
	// Body is the raw response payload, replayed verbatim
	Body []byte

	// ETag is the strong validator (upstream-provided or computed from Body)
	ETag string

	// StatusCode is the HTTP status code of the cached response
	StatusCode int

	// Headers are the response headers replayed to clients
	// (Content-Type, Cache-Control, ETag)
	Headers http.Header

	// ExpiresAt is when the entry becomes stale
	ExpiresAt time.Time

	// CachedAt is when we cached this response
	CachedAt time.Time
}

// IsExpired reports whether the entry is stale at now.
// An entry expires exactly at ExpiresAt.
func (e *CacheEntry) IsExpired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *CacheEntry) TTL(now time.Time) time.Duration {
	ttl := e.ExpiresAt.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}
