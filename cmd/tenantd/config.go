package main

import "time"

type appConfig struct {
	Env          string        `env:"APP_ENV" envDefault:"development"`
	Name         string        `env:"APP_NAME" envDefault:"tenantd"`
	LogLevel     string        `env:"LOG_LEVEL"`
	AutoMigrate  bool          `env:"PG_AUTO_MIGRATE" envDefault:"true"`
	RedisEnabled bool          `env:"REDIS_ENABLED" envDefault:"false"`
	CatalogPath  string        `env:"RBAC_CATALOG_PATH"`
	RoleCacheTTL time.Duration `env:"RBAC_ROLE_CACHE_TTL" envDefault:"60s"`
	CacheSize    int           `env:"CACHE_SIZE" envDefault:"10000" validate:"gt=0"`
}
