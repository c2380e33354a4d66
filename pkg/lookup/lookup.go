package lookup

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by every store error meaning "no such row".
	ErrNotFound = errors.New("lookup.not_found")

	// ErrStoreUnavailable marks failures of the backing store itself.
	ErrStoreUnavailable = errors.New("lookup.store_unavailable")
)

// Status is the outcome of a lookup.
type Status uint8

const (
	StatusNotFound Status = iota
	StatusFound
	StatusStoreError
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusStoreError:
		return "store_error"
	default:
		return "not_found"
	}
}

// Result is a tagged lookup outcome: Found(value), NotFound or StoreError(cause).
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
}

// Found wraps a successful lookup.
func Found[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusFound}
}

// NotFound reports a miss.
func NotFound[T any]() Result[T] {
	return Result[T]{Status: StatusNotFound}
}

// StoreError reports a failed lookup. The cause is wrapped with ErrStoreUnavailable
// unless it already carries it.
func StoreError[T any](cause error) Result[T] {
	return Result[T]{Status: StatusStoreError, Err: Unavailable(cause)}
}

// Of classifies a store (value, error) pair.
func Of[T any](v T, err error) Result[T] {
	switch {
	case err == nil:
		return Found(v)
	case errors.Is(err, ErrNotFound):
		return NotFound[T]()
	default:
		return StoreError[T](err)
	}
}

// Ok reports whether the lookup found a value.
func (r Result[T]) Ok() bool { return r.Status == StatusFound }

// Unavailable wraps err with ErrStoreUnavailable. Nil stays nil.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// IsNotFound reports whether err means "no such row".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailable reports whether err is an upstream store failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
