// Package cache implements the per-record-type, thread-local, bounded
// free-list described in spec.md §4.3. It generalises the teacher's
// sync.Pool-based entry/buffer pools (pkg/wal/pool.go) into a bounded,
// oldest-evicted-first recycling cache: sync.Pool has no size bound and
// no eviction order, so the bound itself is a small hand-rolled slice
// documented here rather than borrowed from a library — no dependency in
// the example pack implements a bounded thread-local free list.
package cache

import "sync"

const defaultBound = 30

// RecordCache recycles allocations of a single record type T. It is
// safe for concurrent use, but is meant to be held one-per-goroutine
// (mirroring the original's thread_local cache) via Store.
type RecordCache[T any] struct {
	mu    sync.Mutex
	free  []*T
	bound int
}

// NewRecordCache creates a cache bounded at n entries (spec.md's default
// is 30; pass 0 to take that default).
func NewRecordCache[T any](n int) *RecordCache[T] {
	if n <= 0 {
		n = defaultBound
	}
	return &RecordCache[T]{bound: n}
}

// Allocate returns the most recently freed record if one is free, else
// a fresh one.
func (c *RecordCache[T]) Allocate() *T {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.free) == 0 {
		return new(T)
	}
	last := len(c.free) - 1
	rec := c.free[last]
	c.free[last] = nil
	c.free = c.free[:last]
	return rec
}

// Deallocate returns rec to the cache, evicting the oldest entry first
// if the bound is exceeded.
func (c *RecordCache[T]) Deallocate(rec *T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.free = append(c.free, rec)
	if len(c.free) > c.bound {
		c.free = c.free[1:]
	}
}

// Store is a per-goroutine registry of RecordCache instances keyed by
// record kind, the Go stand-in for the original's thread_local Cache
// singleton: one Store per worker goroutine, never shared.
type Store struct {
	perKind   map[string]any
	muPerKind sync.Mutex
	bound     int
}

// NewStore creates an empty per-goroutine cache registry whose
// per-kind caches use the package default bound (spec.md's 30). Use
// NewStoreWithBound to honor a configured bound (config.Config.RecordCacheBound).
func NewStore() *Store {
	return NewStoreWithBound(defaultBound)
}

// NewStoreWithBound creates an empty per-goroutine cache registry
// whose per-kind caches are each bounded at n entries (n <= 0 takes
// the package default).
func NewStoreWithBound(n int) *Store {
	if n <= 0 {
		n = defaultBound
	}
	return &Store{perKind: make(map[string]any), bound: n}
}

// CacheFor returns (creating if necessary) the bounded cache for kind
// within this Store, sized to the Store's configured bound.
func CacheFor[T any](s *Store, kind string) *RecordCache[T] {
	s.muPerKind.Lock()
	defer s.muPerKind.Unlock()

	if existing, ok := s.perKind[kind]; ok {
		return existing.(*RecordCache[T])
	}
	c := NewRecordCache[T](s.bound)
	s.perKind[kind] = c
	return c
}
