package supportaccess

import (
	"context"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/cache"
	"github.com/dmitrymomot/tenantkit/pkg/lookup"
)

// SecretSource returns the current signing secret.
type SecretSource interface {
	SigningSecret(ctx context.Context) ([]byte, error)
}

// StaticSecret is a fixed secret, typically from configuration.
type StaticSecret []byte

func (s StaticSecret) SigningSecret(context.Context) ([]byte, error) {
	if len(s) == 0 {
		return nil, ErrEmptySecret
	}
	return s, nil
}

// ConfigReader reads named configuration values from the backing store.
type ConfigReader interface {
	ConfigValue(ctx context.Context, name string) (string, error)
}

// StoredSecret reads the secret from a named config row through a TTL cache,
// so rotation takes effect within one cache period. Read failures are not
// cached.
type StoredSecret struct {
	reader ConfigReader
	name   string
	cache  *cache.Cache[string]
	ttl    time.Duration
}

// NewStoredSecret creates a SecretSource for the config row name.
func NewStoredSecret(reader ConfigReader, name string, c *cache.Cache[string], ttl time.Duration) *StoredSecret {
	if c == nil {
		c = cache.New[string](cache.NewMemoryStore[string](1), cache.WithName("support_secret"))
	}
	return &StoredSecret{reader: reader, name: name, cache: c, ttl: ttl}
}

func (s *StoredSecret) SigningSecret(ctx context.Context) ([]byte, error) {
	v, err := s.cache.GetOrCompute(ctx, "config:"+s.name, s.ttl, func(ctx context.Context) (string, error) {
		v, err := s.reader.ConfigValue(ctx, s.name)
		if err != nil {
			if lookup.IsNotFound(err) {
				return "", err
			}
			return "", lookup.Unavailable(err)
		}
		if v == "" {
			return "", ErrEmptySecret
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}
