package cache

import (
	"context"
	"time"
)

// Store is a key/value backend with per-entry expiry.
// Get reports a miss with ok=false and a nil error; expired entries are misses.
type Store[V any] interface {
	Get(ctx context.Context, key string) (v V, ok bool, err error)
	Set(ctx context.Context, key string, v V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Entry is a stored value with its absolute expiry.
type Entry[V any] struct {
	Value     V         `json:"v"`
	ExpiresAt time.Time `json:"exp"`
}

// Expired reports whether the entry is stale at now.
func (e Entry[V]) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
