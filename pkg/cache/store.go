package cache

import (
	"container/list"
	"sync"
	"time"
)

// Store holds cache entries in memory, keyed by canonical cache key.
// Insertion order is tracked and used as the recency signal for eviction;
// reads never change an entry's position.
type Store struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = oldest insertion
}

type storeItem struct {
	key   string
	entry *CacheEntry
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get retrieves an entry by key, expired or not.
// Returns false if the key is absent.
func (s *Store) Get(key string) (*CacheEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return el.Value.(*storeItem).entry, true
}

// Set stores entry under key, overwriting any previous entry and moving
// the key to the most recently inserted position.
func (s *Store) Set(key string, entry *CacheEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		s.order.Remove(el)
	}
	s.entries[key] = s.order.PushBack(&storeItem{key: key, entry: entry})
	CacheEntries.Set(float64(len(s.entries)))
}

// Delete removes an entry. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(key)
	CacheEntries.Set(float64(len(s.entries)))
}

// Size returns the number of entries, including stale ones.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Prune enforces maxEntries. It is a no-op while the store is within bounds.
// Otherwise every entry expired at now is removed first, and only if the
// store is still too large are entries dropped oldest-insertion first.
// Prune runs before a new Set, so the entry about to be written is never evicted.
// It returns the number of removed entries.
func (s *Store) Prune(maxEntries int, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) <= maxEntries {
		return 0
	}

	removed := 0
	for el := s.order.Front(); el != nil; {
		next := el.Next()
		item := el.Value.(*storeItem)
		if item.entry.IsExpired(now) {
			s.removeLocked(item.key)
			CacheEvictions.WithLabelValues(EvictionExpired).Inc()
			removed++
		}
		el = next
	}

	for len(s.entries) > maxEntries {
		oldest := s.order.Front()
		if oldest == nil {
			break
		}
		s.removeLocked(oldest.Value.(*storeItem).key)
		CacheEvictions.WithLabelValues(EvictionCapacity).Inc()
		removed++
	}

	CacheEntries.Set(float64(len(s.entries)))
	return removed
}

// Keys returns all keys in insertion order, oldest first.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for el := s.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*storeItem).key)
	}
	return keys
}

func (s *Store) removeLocked(key string) {
	if el, ok := s.entries[key]; ok {
		s.order.Remove(el)
		delete(s.entries, key)
	}
}
