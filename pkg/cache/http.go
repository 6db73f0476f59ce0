package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTTL is the entry lifetime when none is configured
	DefaultTTL = 60 * time.Second

	// DefaultMaxEntries is the soft bound on store size when none is configured
	DefaultMaxEntries = 200

	// DefaultContentType is used when the upstream omits Content-Type
	DefaultContentType = "application/json; charset=utf-8"
)

// CacheControl builds the Cache-Control value advertised for cached responses.
// max-age and stale-while-revalidate are both the TTL in whole seconds.
func CacheControl(ttl time.Duration) string {
	seconds := ttl.Milliseconds() / 1000
	return fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", seconds, seconds)
}

// ComputeETag derives a strong validator from the body content.
func ComputeETag(body []byte) string {
	sum := sha1.Sum(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// MatchesETag reports whether the request's If-None-Match equals etag.
func MatchesETag(req *http.Request, etag string) bool {
	if req == nil || etag == "" {
		return false
	}
	return strings.TrimSpace(req.Header.Get("If-None-Match")) == etag
}

// NewEntry creates a cache entry that expires ttl after now.
// Headers are cloned so later mutation by the caller does not leak into the cache.
func NewEntry(body []byte, statusCode int, etag string, headers http.Header, now time.Time, ttl time.Duration) *CacheEntry {
	return &CacheEntry{
		Body:       body,
		ETag:       etag,
		StatusCode: statusCode,
		Headers:    headers.Clone(),
		ExpiresAt:  now.Add(ttl),
		CachedAt:   now,
	}
}

// IsCacheable reports whether a response with statusCode may be stored.
func IsCacheable(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
