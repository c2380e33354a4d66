// Package config loads typed configuration from environment variables.
//
// Values are read with github.com/caarlos0/env/v11 after an optional .env file
// has been applied with github.com/joho/godotenv. Structs may also carry
// `validate` tags; they are checked with go-playground/validator so that a
// service refuses to start with, say, a support-token secret that is too
// short.
//
// Each configuration type is parsed once per process and cached. Tests can
// call ResetCache or use Parse, which bypasses the cache.
//
//	type Config struct {
//	    DatabaseURL string `env:"DATABASE_URL,required"`
//	    Mode        string `env:"TENANT_MODE" envDefault:"multi_tenant" validate:"oneof=multi_tenant organization_only"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
package config
