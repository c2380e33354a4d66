package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/config"
)

type cachedConfig struct {
	Value string `env:"TK_TEST_CACHED" envDefault:"default"`
}

type requiredConfig struct {
	Secret string `env:"TK_TEST_REQUIRED,required"`
}

type validatedConfig struct {
	Secret string `env:"TK_TEST_SECRET" validate:"min=32"`
	Mode   string `env:"TK_TEST_MODE" envDefault:"multi_tenant" validate:"oneof=multi_tenant organization_only"`
}

func TestLoad(t *testing.T) {
	t.Run("caches per type", func(t *testing.T) {
		config.ResetCache()
		t.Setenv("TK_TEST_CACHED", "first")

		var a cachedConfig
		require.NoError(t, config.Load(&a))

		t.Setenv("TK_TEST_CACHED", "second")
		var b cachedConfig
		require.NoError(t, config.Load(&b))

		assert.Equal(t, "first", b.Value)

		config.ResetCache()
		var c cachedConfig
		require.NoError(t, config.Load(&c))
		assert.Equal(t, "second", c.Value)
	})

	t.Run("failed parse is retried", func(t *testing.T) {
		config.ResetCache()
		t.Setenv("TK_TEST_REQUIRED", "")
		require.NoError(t, os.Unsetenv("TK_TEST_REQUIRED"))

		var cfg requiredConfig
		err := config.Load(&cfg)
		require.ErrorIs(t, err, config.ErrParsingConfig)

		t.Setenv("TK_TEST_REQUIRED", "now-set")
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "now-set", cfg.Secret)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var cfg *cachedConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})
}

func TestParseValidates(t *testing.T) {
	t.Setenv("TK_TEST_SECRET", "short")
	t.Setenv("TK_TEST_MODE", "multi_tenant")

	var cfg validatedConfig
	err := config.Parse(&cfg)
	require.ErrorIs(t, err, config.ErrInvalidConfig)

	t.Setenv("TK_TEST_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("TK_TEST_MODE", "galaxy")
	require.ErrorIs(t, config.Parse(&cfg), config.ErrInvalidConfig)

	t.Setenv("TK_TEST_MODE", "organization_only")
	require.NoError(t, config.Parse(&cfg))
	assert.Equal(t, "organization_only", cfg.Mode)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("TK_TEST_SECRET", "")
	t.Setenv("TK_TEST_MODE", "")

	require.NoError(t, config.LoadEnv("testdata/.env.test", "testdata/.env.override"))

	var cfg validatedConfig
	require.NoError(t, config.Parse(&cfg))
	assert.Equal(t, "from_file_secret_value_0123456789", cfg.Secret)
	assert.Equal(t, "multi_tenant", cfg.Mode)

	assert.Error(t, config.LoadEnv("testdata/missing.env"))
}
