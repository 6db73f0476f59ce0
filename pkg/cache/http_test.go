package cache

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestCacheControl(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want string
	}{
		{
			name: "default ttl",
			ttl:  DefaultTTL,
			want: "public, max-age=60, stale-while-revalidate=60",
		},
		{
			name: "fractional seconds floored",
			ttl:  1999 * time.Millisecond,
			want: "public, max-age=1, stale-while-revalidate=1",
		},
		{
			name: "sub-second ttl",
			ttl:  500 * time.Millisecond,
			want: "public, max-age=0, stale-while-revalidate=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CacheControl(tt.ttl); got != tt.want {
				t.Errorf("CacheControl() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeETag(t *testing.T) {
	// sha1("") = da39a3ee5e6b4b0d3255bfef95601890afd80709
	if got, want := ComputeETag(nil), `"da39a3ee5e6b4b0d3255bfef95601890afd80709"`; got != want {
		t.Errorf("ComputeETag(nil) = %v, want %v", got, want)
	}

	a := ComputeETag([]byte(`{"a":1}`))
	if a != ComputeETag([]byte(`{"a":1}`)) {
		t.Error("ComputeETag is not deterministic")
	}
	if a == ComputeETag([]byte(`{"a":2}`)) {
		t.Error("different bodies produced the same ETag")
	}
	if !strings.HasPrefix(a, `"`) || !strings.HasSuffix(a, `"`) {
		t.Errorf("ComputeETag() = %v, want quoted strong validator", a)
	}
}

func TestMatchesETag(t *testing.T) {
	tests := []struct {
		name        string
		ifNoneMatch string
		etag        string
		want        bool
	}{
		{"equal", `"abc"`, `"abc"`, true},
		{"surrounding spaces", ` "abc" `, `"abc"`, true},
		{"different", `"abc"`, `"def"`, false},
		{"header absent", "", `"abc"`, false},
		{"empty etag never matches", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
			if tt.ifNoneMatch != "" {
				req.Header.Set("If-None-Match", tt.ifNoneMatch)
			}
			if got := MatchesETag(req, tt.etag); got != tt.want {
				t.Errorf("MatchesETag() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesETag_NilRequest(t *testing.T) {
	if MatchesETag(nil, `"abc"`) {
		t.Error("MatchesETag(nil) should be false")
	}
}

func TestNewEntry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	headers := http.Header{"Content-Type": []string{"application/json"}}

	entry := NewEntry([]byte("body"), http.StatusOK, `"e"`, headers, now, time.Minute)
	headers.Set("Content-Type", "text/plain")

	if !entry.ExpiresAt.Equal(now.Add(time.Minute)) {
		t.Errorf("ExpiresAt = %v, want %v", entry.ExpiresAt, now.Add(time.Minute))
	}
	if got := entry.Headers.Get("Content-Type"); got != "application/json" {
		t.Errorf("Headers not cloned: Content-Type = %v", got)
	}
}

func TestIsCacheable(t *testing.T) {
	for status, want := range map[int]bool{
		http.StatusOK:                  true,
		http.StatusNoContent:           true,
		http.StatusNotModified:         false,
		http.StatusNotFound:            false,
		http.StatusInternalServerError: false,
	} {
		if got := IsCacheable(status); got != want {
			t.Errorf("IsCacheable(%d) = %v, want %v", status, got, want)
		}
	}
}
