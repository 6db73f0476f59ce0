// Package proxy implements the caching reverse proxy in front of the Quran
// content API. Each request moves through lookup, an optional upstream fetch
// and exactly one response; stale entries are replayed when the upstream
// cannot be reached.
package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Sternrassler/quran-api-proxy/pkg/cache"
	"github.com/Sternrassler/quran-api-proxy/pkg/upstream"
	"github.com/rs/zerolog"
)

const (
	// DefaultRoutePrefix is the downstream path prefix stripped before proxying.
	DefaultRoutePrefix = "/api/quran/"

	// upstreamFailureMessage is both the log message and the 502 error body.
	upstreamFailureMessage = "Failed to reach Quran service"

	allowedMethods = "GET, HEAD"
)

// Fetcher retrieves a complete upstream response.
type Fetcher interface {
	Fetch(ctx context.Context, upstreamURL string) (*upstream.Result, error)
}

// Config holds the handler configuration.
type Config struct {
	// BaseURL is the upstream API root, e.g. https://api.quran.com/api/v4
	BaseURL string

	// RoutePrefix is stripped from the request path (default: /api/quran/)
	RoutePrefix string

	// CacheTTL is the lifetime of stored entries
	CacheTTL time.Duration

	// MaxEntries is the soft bound enforced before each insertion
	MaxEntries int
}

// Handler is the caching proxy http.Handler.
type Handler struct {
	store   *cache.Store
	fetcher Fetcher
	config  Config
	baseURL string

	// cacheControl is the fallback Cache-Control derived from CacheTTL
	cacheControl string

	logger zerolog.Logger
	now    func() time.Time
}

// NewHandler creates a proxy handler over store and fetcher.
func NewHandler(store *cache.Store, fetcher Fetcher, cfg Config, logger zerolog.Logger) (*Handler, error) {
	if store == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("upstream fetcher is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("cache ttl must be > 0 (got %v)", cfg.CacheTTL)
	}
	if cfg.MaxEntries <= 0 {
		return nil, fmt.Errorf("max entries must be > 0 (got %d)", cfg.MaxEntries)
	}
	if cfg.RoutePrefix == "" {
		cfg.RoutePrefix = DefaultRoutePrefix
	}

	return &Handler{
		store:        store,
		fetcher:      fetcher,
		config:       cfg,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		cacheControl: cache.CacheControl(cfg.CacheTTL),
		logger:       logger,
		now:          time.Now,
	}, nil
}

// SetClock replaces the time source (for testing).
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var resp *Response
	includeBody := true

	switch r.Method {
	case http.MethodGet:
		resp = h.get(r)
	case http.MethodHead:
		resp = h.get(r)
		includeBody = false
	default:
		resp = errorResponse(http.StatusMethodNotAllowed, "Method Not Allowed")
		resp.Header.Set("Allow", allowedMethods)
	}

	cache.CacheResponses.WithLabelValues(string(resp.CacheStatus)).Inc()
	if resp.StatusCode == http.StatusNotModified {
		cache.NotModifiedResponses.Inc()
	}

	if err := resp.write(w, includeBody); err != nil {
		h.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Failed to write response")
	}
}

// get runs the lookup / fetch / store state machine for GET and HEAD.
func (h *Handler) get(r *http.Request) *Response {
	upstreamURL, key, err := h.resolve(r)
	if err != nil {
		h.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Invalid request path")
		return errorResponse(http.StatusBadRequest, "Invalid request path")
	}

	entry, found := h.store.Get(key)
	if found && !entry.IsExpired(h.now()) {
		h.logger.Debug().Str("cache_key", key).Msg("Cache hit")
		if cache.MatchesETag(r, entry.ETag) {
			return notModified(entry.ETag, CacheHit, h.cacheControl)
		}
		return fromEntry(entry, CacheHit, h.cacheControl)
	}

	// Lazy expiry: the previous entry is kept only for the failure path below.
	stale := found
	if stale {
		h.store.Delete(key)
		cache.CacheEvictions.WithLabelValues(cache.EvictionLazy).Inc()
	}

	result, err := h.fetcher.Fetch(r.Context(), upstreamURL)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("cache_key", key).
			Str("upstream_url", upstreamURL).
			Bool("stale_available", stale).
			Msg(upstreamFailureMessage)

		if stale {
			return fromEntry(entry, CacheStale, h.cacheControl)
		}
		return errorResponse(http.StatusBadGateway, upstreamFailureMessage)
	}

	if cache.MatchesETag(r, result.ETag) {
		return notModified(result.ETag, CacheMiss, h.cacheControl)
	}

	status := CacheMiss
	if stale {
		status = CacheStale
	}

	if cache.IsCacheable(result.StatusCode) {
		now := h.now()
		h.store.Prune(h.config.MaxEntries, now)
		h.store.Set(key, cache.NewEntry(result.Body, result.StatusCode, result.ETag, result.Headers, now, h.config.CacheTTL))
		h.logger.Debug().
			Str("cache_key", key).
			Dur("ttl", h.config.CacheTTL).
			Msg("Cached response")
	} else {
		h.logger.Debug().
			Str("cache_key", key).
			Int("status_code", result.StatusCode).
			Msg("Upstream returned non-success status, not caching")
	}

	return compose(result.Body, result.StatusCode, result.Headers, status, h.cacheControl)
}

// resolve derives the upstream URL and the canonical cache key for r.
// The upstream call forwards the original query string unchanged; the key
// is built from the parsed upstream URL.
func (h *Handler) resolve(r *http.Request) (string, string, error) {
	prefix := strings.TrimSuffix(h.config.RoutePrefix, "/")
	rest := strings.TrimPrefix(r.URL.EscapedPath(), prefix)

	segments := make([]string, 0, strings.Count(rest, "/")+1)
	for _, segment := range strings.Split(rest, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	upstreamURL := h.baseURL + "/" + strings.Join(segments, "/")
	if r.URL.RawQuery != "" {
		upstreamURL += "?" + r.URL.RawQuery
	}

	parsed, err := url.Parse(upstreamURL)
	if err != nil {
		return "", "", fmt.Errorf("parse upstream url: %w", err)
	}

	return upstreamURL, cache.BuildKey(parsed.Path, parsed.Query()), nil
}
