package supportaccess

import "time"

// Config holds support-token settings. When Secret is empty the signing
// secret is read from the app_config row named SecretName.
type Config struct {
	Secret         string        `env:"SUPPORT_TOKEN_SECRET" validate:"omitempty,min=32"`
	SecretName     string        `env:"SUPPORT_TOKEN_SECRET_NAME" envDefault:"support_token_secret"`
	TTL            time.Duration `env:"SUPPORT_TOKEN_TTL" envDefault:"15m"`
	MaxTTL         time.Duration `env:"SUPPORT_TOKEN_MAX_TTL" envDefault:"1h"`
	SecretCacheTTL time.Duration `env:"SUPPORT_SECRET_CACHE_TTL" envDefault:"60s"`
}
