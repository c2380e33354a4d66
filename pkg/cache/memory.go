package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity bounds a MemoryStore created with a non-positive size.
const DefaultCapacity = 1000

// MemoryStore is a bounded in-process store. Least recently used entries are
// evicted at capacity; expired entries are dropped on read.
type MemoryStore[V any] struct {
	items *lru.Cache[string, Entry[V]]
	now   func() time.Time
}

// NewMemoryStore creates a store holding at most size entries.
func NewMemoryStore[V any](size int, opts ...MemoryOption) *MemoryStore[V] {
	if size <= 0 {
		size = DefaultCapacity
	}
	o := memoryOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	items, err := lru.New[string, Entry[V]](size)
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	return &MemoryStore[V]{items: items, now: o.now}
}

type memoryOptions struct {
	now func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*memoryOptions)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func (s *MemoryStore[V]) Get(_ context.Context, key string) (V, bool, error) {
	e, ok := s.items.Get(key)
	if !ok {
		var zero V
		return zero, false, nil
	}
	if e.Expired(s.now()) {
		s.items.Remove(key)
		var zero V
		return zero, false, nil
	}
	return e.Value, true, nil
}

// Set stores v until now+ttl. Entries with a non-positive ttl are not stored.
func (s *MemoryStore[V]) Set(_ context.Context, key string, v V, ttl time.Duration) error {
	if ttl <= 0 {
		s.items.Remove(key)
		return nil
	}
	s.items.Add(key, Entry[V]{Value: v, ExpiresAt: s.now().Add(ttl)})
	return nil
}

func (s *MemoryStore[V]) Delete(_ context.Context, key string) error {
	s.items.Remove(key)
	return nil
}

// Len returns the number of entries including expired ones not yet evicted.
func (s *MemoryStore[V]) Len() int {
	return s.items.Len()
}

// Purge removes every entry.
func (s *MemoryStore[V]) Purge() {
	s.items.Purge()
}
