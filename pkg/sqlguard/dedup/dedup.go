// Package dedup implements the per-thread deduplication filter from spec
// §4.2: a bounded, TTL'd cache that tells the caller whether a given SQL
// text was already validated by the same logical "thread" within the
// freshness window. Go has no OS-thread affinity to key on, so — per the
// spec's own design note in §9 — callers supply a stable task identifier
// (ThreadKey) instead; see DESIGN.md for the rationale.
package dedup

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Result is the cached outcome of a prior validation, stored by Record
// and handed back (conceptually) to a second caller within the window.
// The zero value represents "pending" — shouldCheck inserted the key but
// Record has not yet been called for it.
type Result[T any] struct {
	Value T
	Ready bool
}

// Filter is safe for concurrent use by many goroutines: each ThreadKey
// gets its own private expirable LRU, and the only shared structure (the
// outer map from key to that private cache) is guarded by a mutex that
// every ShouldCheck, Record, Lookup and ClearThreadState call takes
// briefly to find or drop the key's cache.
type Filter[T any] struct {
	mu       sync.Mutex
	buckets  map[string]*expirable.LRU[string, Result[T]]
	capacity int
	ttl      time.Duration
}

// New builds a Filter with the capacity and TTL defaults named in spec
// §4.2 overridable by the caller (capacity 1000, TTL 100ms).
func New[T any](capacity int, ttl time.Duration) *Filter[T] {
	if capacity <= 0 {
		capacity = 1000
	}
	if ttl <= 0 {
		ttl = 100 * time.Millisecond
	}
	return &Filter[T]{
		buckets:  make(map[string]*expirable.LRU[string, Result[T]]),
		capacity: capacity,
		ttl:      ttl,
	}
}

func (f *Filter[T]) bucket(threadKey string) *expirable.LRU[string, Result[T]] {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.buckets[threadKey]
	if !ok {
		b = expirable.NewLRU[string, Result[T]](f.capacity, nil, f.ttl)
		f.buckets[threadKey] = b
	}
	return b
}

// ShouldCheck reports whether normalisedSQL needs validating for
// threadKey: true on first sight (and inserts a pending placeholder),
// false if it was already seen (or is still pending) within the TTL
// window.
func (f *Filter[T]) ShouldCheck(threadKey, normalisedSQL string) bool {
	b := f.bucket(threadKey)
	if _, ok := b.Get(normalisedSQL); ok {
		return false
	}
	b.Add(normalisedSQL, Result[T]{})
	return true
}

// Record stores the finished result against the key inserted by the
// preceding ShouldCheck call.
func (f *Filter[T]) Record(threadKey, normalisedSQL string, value T) {
	b := f.bucket(threadKey)
	b.Add(normalisedSQL, Result[T]{Value: value, Ready: true})
}

// Lookup returns the cached result for normalisedSQL under threadKey, if
// one is present and ready.
func (f *Filter[T]) Lookup(threadKey, normalisedSQL string) (T, bool) {
	var zero T
	b := f.bucket(threadKey)
	v, ok := b.Get(normalisedSQL)
	if !ok || !v.Ready {
		return zero, false
	}
	return v.Value, true
}

// ClearThreadState drops a thread's entire bucket. Hosts call this at the
// end of a task/request.
func (f *Filter[T]) ClearThreadState(threadKey string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.buckets, threadKey)
}
