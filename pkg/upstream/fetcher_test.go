package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sternrassler/quran-api-proxy/internal/testutil"
	"github.com/Sternrassler/quran-api-proxy/pkg/cache"
)

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Timeout = 2 * time.Second
	fetcher, err := NewFetcher(cfg)
	if err != nil {
		t.Fatalf("Failed to create fetcher: %v", err)
	}
	return fetcher
}

func TestNewFetcher_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			config:      DefaultConfig(),
			expectError: false,
		},
		{
			name:        "zero timeout",
			config:      Config{CacheTTL: time.Minute},
			expectError: true,
			errorMsg:    "timeout must be > 0 (got 0s)",
		},
		{
			name:        "zero ttl",
			config:      Config{Timeout: time.Second},
			expectError: true,
			errorMsg:    "cache ttl must be > 0 (got 0s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher, err := NewFetcher(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if fetcher == nil {
				t.Error("Fetcher is nil")
			}
		})
	}
}

func TestFetch_UpstreamETag(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetResponse("/chapters", testutil.NewETagResponse(`{"chapters": []}`, `"upstream-etag"`))

	result, err := newTestFetcher(t).Fetch(context.Background(), mock.URL()+"/chapters")
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}

	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want %d", result.StatusCode, http.StatusOK)
	}
	if string(result.Body) != `{"chapters": []}` {
		t.Errorf("Body = %s, want chapters payload", result.Body)
	}
	if result.ETag != `"upstream-etag"` {
		t.Errorf("ETag = %v, want upstream value", result.ETag)
	}
	if got := result.Headers.Get("ETag"); got != `"upstream-etag"` {
		t.Errorf("propagated ETag = %v, want upstream value", got)
	}
}

func TestFetch_ComputedETag(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	body := `{"verses": [1, 2, 3]}`
	mock.SetResponse("/verses", testutil.NewJSONResponse(body))

	result, err := newTestFetcher(t).Fetch(context.Background(), mock.URL()+"/verses")
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}

	if want := cache.ComputeETag([]byte(body)); result.ETag != want {
		t.Errorf("ETag = %v, want %v", result.ETag, want)
	}
}

func TestFetch_PropagatedHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		w.Header().Set("X-Upstream-Only", "1")
		w.Header()["Content-Type"] = nil
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.CacheTTL = 90 * time.Second
	fetcher, err := NewFetcher(cfg)
	if err != nil {
		t.Fatalf("Failed to create fetcher: %v", err)
	}

	result, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}

	if got := result.Headers.Get("Content-Type"); got != cache.DefaultContentType {
		t.Errorf("Content-Type = %q, want %q", got, cache.DefaultContentType)
	}
	if got, want := result.Headers.Get("Cache-Control"), "public, max-age=90, stale-while-revalidate=90"; got != want {
		t.Errorf("Cache-Control = %q, want %q", got, want)
	}
	if result.Headers.Get("X-Upstream-Only") != "" {
		t.Error("unrelated upstream headers should not be propagated")
	}
	if len(result.Headers) != 3 {
		t.Errorf("propagated %d headers, want 3", len(result.Headers))
	}
}

func TestFetch_NonSuccessIsNotError(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetResponse("/missing", testutil.NewNotFoundResponse())

	result, err := newTestFetcher(t).Fetch(context.Background(), mock.URL()+"/missing")
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", result.StatusCode, http.StatusNotFound)
	}
}

func TestFetch_TransportFailure(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetDown(true)

	_, err := newTestFetcher(t).Fetch(context.Background(), mock.URL()+"/chapters")
	if err == nil {
		t.Fatal("Expected error from unreachable upstream")
	}
	if !IsUnreachable(err) {
		t.Errorf("IsUnreachable(%v) = false, want true", err)
	}
}

func TestFetch_Timeout(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	resp := testutil.NewJSONResponse("{}")
	resp.Delay = time.Second
	mock.SetResponse("/slow", resp)

	cfg := DefaultConfig()
	cfg.Timeout = 50 * time.Millisecond
	fetcher, err := NewFetcher(cfg)
	if err != nil {
		t.Fatalf("Failed to create fetcher: %v", err)
	}

	start := time.Now()
	_, err = fetcher.Fetch(context.Background(), mock.URL()+"/slow")
	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 900*time.Millisecond {
		t.Errorf("Fetch() took %v, deadline not enforced", elapsed)
	}
}

func TestFetch_RetriesTransportFailure(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			conn, _, _ := w.(http.Hijacker).Hijack()
			conn.Close()
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Retry.MaxAttempts = 2
	cfg.Retry.InitialBackoff = 10 * time.Millisecond
	fetcher, err := NewFetcher(cfg)
	if err != nil {
		t.Fatalf("Failed to create fetcher: %v", err)
	}

	result, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if string(result.Body) != `{"ok": true}` {
		t.Errorf("Body = %s", result.Body)
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	_, err := newTestFetcher(t).Fetch(context.Background(), "://bad-url")
	if err == nil {
		t.Fatal("Expected error for invalid URL")
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Op != "request" {
		t.Errorf("Expected request FetchError, got %v", err)
	}
}
