// Package cache provides a keyed read-through store for slowly changing
// reference data.
//
// A Store never expires entries by time. Staleness is bounded only by
// explicit invalidation through Remove or Clear, and the store is written
// only after a fetch has fully succeeded.
//
// GetAll checks, fetches and inserts without holding a lock across the
// fetch. Concurrent callers that miss together may each fetch; inserts are
// keyed merges, so the last writer wins and duplicate fetches are harmless.
package cache

import (
	"context"
	"slices"
	"sync"
)

// Fetcher loads the full result set for a miss
type Fetcher[V any] func(ctx context.Context) ([]V, error)

// Stats reports the store's size and lookup counters
type Stats struct {
	Size   int
	Hits   int64
	Misses int64
}

// entry is stored in the cache
type entry[V any] struct {
	value V
	seq   uint64
}

// Store is a thread-safe keyed collection with read-through population
type Store[K comparable, V any] struct {
	mu     sync.RWMutex
	key    func(V) K
	items  map[K]entry[V]
	seq    uint64
	hits   int64
	misses int64
}

// New creates an empty store. key derives the cache key of a value.
func New[K comparable, V any](key func(V) K) *Store[K, V] {
	return &Store[K, V]{
		key:   key,
		items: make(map[K]entry[V]),
	}
}

// Add merges values into the store. An existing key keeps its position and
// takes the new value.
func (s *Store[K, V]) Add(values ...V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range values {
		k := s.key(v)
		if existing, ok := s.items[k]; ok {
			existing.value = v
			s.items[k] = existing
			continue
		}
		s.seq++
		s.items[k] = entry[V]{value: v, seq: s.seq}
	}
}

// Remove evicts a single key, reporting whether it was present
func (s *Store[K, V]) Remove(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[k]; !ok {
		return false
	}
	delete(s.items, k)
	return true
}

// Clear removes all items from the cache
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[K]entry[V])
}

// Get retrieves a value from the cache
func (s *Store[K, V]) Get(k K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[k]
	return e.value, ok
}

// Len returns the number of items in the cache
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// Values returns every cached value in insertion order
func (s *Store[K, V]) Values() []V {
	return s.Where(nil)
}

// Where returns the cached values matching pred in insertion order. A nil
// pred matches everything.
func (s *Store[K, V]) Where(pred func(V) bool) []V {
	s.mu.RLock()
	matched := make([]entry[V], 0, len(s.items))
	for _, e := range s.items {
		if pred == nil || pred(e.value) {
			matched = append(matched, e)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b entry[V]) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})

	values := make([]V, len(matched))
	for i, e := range matched {
		values[i] = e.value
	}
	return values
}

// GetAll returns the cached values matching pred. When nothing matches it
// calls fetch, inserts the results and returns them. A failed or cancelled
// fetch leaves the store untouched.
func (s *Store[K, V]) GetAll(ctx context.Context, pred func(V) bool, fetch Fetcher[V]) ([]V, error) {
	if cached := s.Where(pred); len(cached) > 0 {
		s.mu.Lock()
		s.hits++
		s.mu.Unlock()
		return cached, nil
	}

	s.mu.Lock()
	s.misses++
	s.mu.Unlock()

	fetched, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.Add(fetched...)
	return fetched, nil
}

// Stats returns a snapshot of the store's counters
func (s *Store[K, V]) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Size:   len(s.items),
		Hits:   s.hits,
		Misses: s.misses,
	}
}
