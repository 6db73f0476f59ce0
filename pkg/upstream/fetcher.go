// Package upstream provides the HTTP fetcher for the third-party Quran content API.
// It reads complete response bodies, resolves a validator for every response
// and never consults a cache; caching policy lives with the caller.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/quran-api-proxy/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Sternrassler/quran-api-proxy/pkg/upstream"

// Prometheus metrics for upstream operations.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quran_upstream_requests_total",
		Help: "Total upstream requests by status",
	}, []string{"status"})

	upstreamRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quran_upstream_request_duration_seconds",
		Help:    "Upstream request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	upstreamErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quran_upstream_errors_total",
		Help: "Total upstream transport failures",
	})

	upstreamRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quran_upstream_retries_total",
		Help: "Total number of upstream retry attempts",
	})
)

// Result is a fully read upstream response.
type Result struct {
	// Body is the complete response payload
	Body []byte

	// StatusCode is the upstream HTTP status
	StatusCode int

	// ETag is the upstream validator, or one computed from Body
	ETag string

	// Headers are the headers propagated to clients
	// (Content-Type, ETag, Cache-Control)
	Headers http.Header
}

// Config holds the fetcher configuration.
type Config struct {
	// HTTPClient performs requests (default: a client without its own timeout)
	HTTPClient *http.Client

	// Timeout bounds each Fetch call including retries
	Timeout time.Duration

	// CacheTTL is advertised in the propagated Cache-Control header
	CacheTTL time.Duration

	// UserAgent is sent upstream when set
	UserAgent string

	// Retry controls retries of transport failures
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:  10 * time.Second,
		CacheTTL: cache.DefaultTTL,
		Retry:    DefaultRetryConfig(),
	}
}

// Fetcher performs upstream GET requests.
type Fetcher struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// NewFetcher creates a new upstream fetcher.
func NewFetcher(cfg Config) (*Fetcher, error) {
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %v)", cfg.Timeout)
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("cache ttl must be > 0 (got %v)", cfg.CacheTTL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Fetcher{
		httpClient: httpClient,
		config:     cfg,
		logger:     log.With().Str("component", "upstream").Logger(),
	}, nil
}

// Fetch issues a GET to upstreamURL and reads the full response.
// Transport and body-read failures are returned as *FetchError; any HTTP
// status, successful or not, is returned as a Result.
func (f *Fetcher) Fetch(ctx context.Context, upstreamURL string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "upstream.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.full", upstreamURL)),
	)
	defer span.End()

	startTime := time.Now()
	defer func() {
		upstreamRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	var result *Result
	err := retryWithBackoff(ctx, f.config.Retry, f.logger, func() error {
		var fetchErr error
		result, fetchErr = f.fetchOnce(ctx, upstreamURL)
		if fetchErr != nil {
			upstreamErrorsTotal.Inc()
			upstreamRequestsTotal.WithLabelValues("network_error").Inc()
		}
		return fetchErr
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream unreachable")
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", result.StatusCode))
	upstreamRequestsTotal.WithLabelValues(strconv.Itoa(result.StatusCode)).Inc()
	f.logger.Debug().
		Str("upstream_url", upstreamURL).
		Int("status_code", result.StatusCode).
		Str("etag", result.ETag).
		Msg("Upstream response received")

	return result, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, upstreamURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, upstreamURL, nil)
	if err != nil {
		return nil, &FetchError{URL: upstreamURL, Op: "request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if f.config.UserAgent != "" {
		req.Header.Set("User-Agent", f.config.UserAgent)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: upstreamURL, Op: "request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: upstreamURL, Op: "read", Err: err}
	}

	etag := resp.Header.Get("ETag")
	if etag == "" {
		etag = cache.ComputeETag(body)
	}

	return &Result{
		Body:       body,
		StatusCode: resp.StatusCode,
		ETag:       etag,
		Headers:    f.propagatedHeaders(resp.Header, etag),
	}, nil
}

// propagatedHeaders builds the header subset replayed to clients.
func (f *Fetcher) propagatedHeaders(upstream http.Header, etag string) http.Header {
	contentType := upstream.Get("Content-Type")
	if contentType == "" {
		contentType = cache.DefaultContentType
	}

	headers := make(http.Header, 3)
	headers.Set("Content-Type", contentType)
	headers.Set("ETag", etag)
	headers.Set("Cache-Control", cache.CacheControl(f.config.CacheTTL))
	return headers
}
