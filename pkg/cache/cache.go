package cache

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// Loader computes the value for a missing key.
type Loader[V any] func(ctx context.Context) (V, error)

// Cache adds get-or-compute on top of a Store. Safe for concurrent use.
type Cache[V any] struct {
	store   Store[V]
	group   singleflight.Group
	name    string
	ttl     time.Duration
	metrics *Metrics
	logger  *slog.Logger
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	name    string
	ttl     time.Duration
	metrics *Metrics
	logger  *slog.Logger
}

// WithName labels metrics and log records.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithDefaultTTL sets the TTL used when GetOrCompute is called with ttl <= 0.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithMetrics records hits, misses and load errors on m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger sets the logger for backing store failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// DefaultTTL applies when neither the call nor WithDefaultTTL gives one.
const DefaultTTL = 30 * time.Second

// New wraps store.
func New[V any](store Store[V], opts ...Option) *Cache[V] {
	o := options{name: "default", ttl: DefaultTTL, logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{
		store:   store,
		name:    o.name,
		ttl:     o.ttl,
		metrics: o.metrics,
		logger:  o.logger.With(logger.Component("cache"), slog.String("cache", o.name)),
	}
}

// Get returns a cached value. Backend failures are logged and reported as a miss.
func (c *Cache[V]) Get(ctx context.Context, key string) (V, bool) {
	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.storeFailed(ctx, "get", key, err)
		var zero V
		return zero, false
	}
	return v, ok
}

// Set stores v for ttl, or the default TTL when ttl <= 0.
func (c *Cache[V]) Set(ctx context.Context, key string, v V, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	return c.store.Set(ctx, key, v, ttl)
}

// Invalidate removes key. Used after writes that change the underlying row.
func (c *Cache[V]) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

type result[V any] struct {
	value V
	err   error
}

// GetOrCompute returns the unexpired value for key or calls loader once per
// key across concurrent callers and stores its result for ttl.
//
// A loader error is returned to every caller waiting on that load and is not
// stored. A backend read failure is treated as a miss; a backend write failure
// is logged and the loaded value is still returned.
//
// The loader runs detached from ctx cancellation so that one caller giving up
// does not fail the others; ctx still bounds how long this caller waits.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key string, ttl time.Duration, loader Loader[V]) (V, error) {
	if v, ok := c.Get(ctx, key); ok {
		c.hit()
		return v, nil
	}
	c.miss()

	if ttl <= 0 {
		ttl = c.ttl
	}
	loadCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(key, func() (any, error) {
		// Another flight may have filled the key between our miss and now.
		if v, ok, err := c.store.Get(loadCtx, key); err == nil && ok {
			return result[V]{value: v}, nil
		}

		v, err := loader(loadCtx)
		if err != nil {
			c.loadFailed()
			return result[V]{err: err}, nil
		}
		if err := c.store.Set(loadCtx, key, v, ttl); err != nil {
			c.storeFailed(loadCtx, "set", key, err)
		}
		return result[V]{value: v}, nil
	})

	select {
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	case r := <-ch:
		res := r.Val.(result[V])
		return res.value, res.err
	}
}

func (c *Cache[V]) hit() {
	if c.metrics != nil {
		c.metrics.Hits.WithLabelValues(c.name).Inc()
	}
}

func (c *Cache[V]) miss() {
	if c.metrics != nil {
		c.metrics.Misses.WithLabelValues(c.name).Inc()
	}
}

func (c *Cache[V]) loadFailed() {
	if c.metrics != nil {
		c.metrics.LoadErrors.WithLabelValues(c.name).Inc()
	}
}

func (c *Cache[V]) storeFailed(ctx context.Context, op, key string, err error) {
	if c.metrics != nil {
		c.metrics.StoreErrors.WithLabelValues(c.name).Inc()
	}
	c.logger.WarnContext(ctx, "cache backend failure",
		slog.String("op", op),
		slog.String("key", key),
		logger.Error(err),
	)
}
