// Package cache provides the in-memory response cache for the Quran API proxy.
//
// The package has three parts:
//
// - BuildKey derives a canonical cache key from a path and query parameters
// - CacheEntry holds one cached upstream response with its validator and expiry
// - Store keeps entries in insertion order and prunes them to a bounded size
//
// # Cache Keys
//
// Translation and word-language parameters have several accepted spellings.
// BuildKey merges them and sorts all remaining parameters, so
//
//	BuildKey("/chapters", url.Values{"translations": {"21,20"}})
//	BuildKey("/chapters", url.Values{"translation_ids": {"20,21"}})
//
// both yield "/chapters|translations=20,21|wordLang=|".
//
// # Basic Usage
//
//	store := cache.NewStore()
//
//	key := cache.BuildKey(u.Path, u.Query())
//	if entry, ok := store.Get(key); ok && !entry.IsExpired(time.Now()) {
//		// serve entry
//	}
//
//	store.Prune(200, time.Now())
//	store.Set(key, entry)
//
// # Eviction
//
// Prune does nothing while the store holds at most maxEntries. Beyond that it
// first drops every expired entry and then, if still needed, the oldest
// insertions. Set moves a key to the newest position; Get does not.
//
// # Metrics
//
//   - quran_cache_responses_total{cache_status} - Responses by X-Cache label
//   - quran_cache_entries - Current store size
//   - quran_cache_evictions_total{reason} - Removed entries
//   - quran_cache_not_modified_total - 304 responses sent to clients
package cache
