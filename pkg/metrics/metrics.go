// Package metrics exposes the Prometheus registry used by the proxy.
// Collectors are defined in their own packages (cache, upstream) via promauto
// and land in the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the proxy.
var Registry = prometheus.DefaultRegisterer

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - quran_cache_responses_total{cache_status} (Counter): Responses by X-Cache label
//   - quran_cache_entries (Gauge): Entries currently held, stale included
//   - quran_cache_evictions_total{reason} (Counter): Removals by reason (expired, capacity, lazy)
//   - quran_cache_not_modified_total (Counter): 304 responses sent to clients
//
// Upstream Metrics (pkg/upstream):
//   - quran_upstream_requests_total{status} (Counter): Upstream calls by HTTP status or network_error
//   - quran_upstream_request_duration_seconds (Histogram): Fetch duration including retries
//   - quran_upstream_errors_total (Counter): Transport failures
//   - quran_upstream_retries_total (Counter): Retry attempts
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(quran_cache_responses_total{cache_status="HIT"}[5m])) /
//   sum(rate(quran_cache_responses_total[5m]))
//
//   # Stale replays during upstream outages
//   rate(quran_cache_responses_total{cache_status="STALE"}[5m])
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(quran_upstream_request_duration_seconds_bucket[5m]))
