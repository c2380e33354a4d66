package pgstore

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/lookup"
)

const breakerName = "pgstore"

func newBreaker(cfg Config, log *slog.Logger) *gobreaker.CircuitBreaker[any] {
	failures := cmp.Or(cfg.BreakerFailures, 5)
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cmp.Or(cfg.BreakerMaxRequests, 3),
		Interval:    cmp.Or(cfg.BreakerInterval, time.Minute),
		Timeout:     cmp.Or(cfg.BreakerTimeout, 30*time.Second),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A missing row is an answer, not a failure of the database.
		IsSuccessful: func(err error) bool {
			return err == nil || lookup.IsNotFound(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

// run executes fn through the breaker. Misses pass through untouched; any
// other failure, including a rejected call while the breaker is open, is
// reported as lookup.ErrStoreUnavailable.
func run[T any](ctx context.Context, s *Store, op string, fn func() (T, error)) (T, error) {
	v, err := s.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if lookup.IsNotFound(err) {
			return zero, err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			s.logger.WarnContext(ctx, "store call rejected", slog.String("op", op), logger.Error(err))
		} else {
			s.logger.ErrorContext(ctx, "store call failed", slog.String("op", op), logger.Error(err))
		}
		return zero, lookup.Unavailable(err)
	}
	return v.(T), nil
}
