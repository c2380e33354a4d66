package pgstore

import (
	"context"
	"errors"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// Healthcheck returns a readiness probe for db.
func Healthcheck(db pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
