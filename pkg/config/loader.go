package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type entry struct {
	once  sync.Once
	value any
	err   error
}

var (
	mu      sync.Mutex
	entries = map[reflect.Type]*entry{}

	dotenvOnce sync.Once
	validate   = validator.New(validator.WithRequiredStructEnabled())
)

// Load parses the environment into v. The result is cached per type, so
// later calls return the first successfully parsed value. A failed parse is
// not cached.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() {
		// A missing .env is normal outside development.
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()

	mu.Lock()
	e, ok := entries[key]
	if !ok {
		e = &entry{}
		entries[key] = e
	}
	mu.Unlock()

	e.once.Do(func() {
		var parsed T
		if err := Parse(&parsed); err != nil {
			e.err = err
			return
		}
		e.value = parsed
	})

	if e.err != nil {
		mu.Lock()
		if entries[key] == e {
			delete(entries, key)
		}
		mu.Unlock()
		return e.err
	}

	cached, ok := e.value.(T)
	if !ok {
		return ErrConfigNotLoaded
	}
	*v = cached
	return nil
}

// MustLoad is like Load but panics on failure.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// Parse reads the environment into v and validates it without touching the
// cache.
func Parse[T any](v *T, opts ...env.Options) error {
	if v == nil {
		return ErrNilPointer
	}
	var err error
	if len(opts) > 0 {
		err = env.ParseWithOptions(v, opts[0])
	} else {
		err = env.Parse(v)
	}
	if err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	if reflect.Indirect(reflect.ValueOf(v)).Kind() == reflect.Struct {
		if err := validate.Struct(v); err != nil {
			return errors.Join(ErrInvalidConfig, err)
		}
	}
	return nil
}

// LoadEnv applies one or more .env files. Without arguments it loads ./.env.
// Later files override earlier ones.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		return godotenv.Overload()
	}
	return godotenv.Overload(paths...)
}

// ResetCache drops every cached configuration.
func ResetCache() {
	mu.Lock()
	entries = map[reflect.Type]*entry{}
	mu.Unlock()
}
