package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Eviction reasons used as label values on CacheEvictions.
const (
	EvictionExpired  = "expired"
	EvictionCapacity = "capacity"
	EvictionLazy     = "lazy"
)

var (
	// CacheResponses tracks responses by X-Cache status
	CacheResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quran_cache_responses_total",
			Help: "Total number of proxy responses by cache status",
		},
		[]string{"cache_status"}, // "HIT", "MISS", "STALE", "BYPASS"
	)

	// CacheEntries tracks the current number of stored entries
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quran_cache_entries",
			Help: "Current number of entries in the response cache",
		},
	)

	// CacheEvictions tracks removed entries by reason
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quran_cache_evictions_total",
			Help: "Total number of cache entries removed by reason",
		},
		[]string{"reason"}, // "expired", "capacity", "lazy"
	)

	// NotModifiedResponses tracks 304 Not Modified responses sent to clients
	NotModifiedResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quran_cache_not_modified_total",
			Help: "Total number of 304 Not Modified responses",
		},
	)
)
