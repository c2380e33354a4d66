package pgstore

import "time"

// Config holds the connection pool, migration and circuit breaker settings.
type Config struct {
	ConnectionString  string        `env:"PG_CONN_URL,required"`                   // ConnectionString is the connection string to the database.
	MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`      // MaxOpenConns is the maximum number of open connections to the database.
	MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`       // MaxIdleConns is the minimum number of connections kept open.
	HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`  // HealthCheckPeriod is the period between health checks.
	MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"` // MaxConnIdleTime is the maximum amount of time a connection may be idle to be reused.
	MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`  // MaxConnLifetime is the maximum amount of time a connection may be reused.

	RetryAttempts int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`  // RetryAttempts is the number of retry attempts to connect to the database.
	RetryInterval time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"` // RetryInterval is the base interval between retry attempts.

	MigrationsTable string `env:"PG_MIGRATIONS_TABLE" envDefault:"schema_migrations"` // MigrationsTable is the name of the table used to store the migration version.

	BreakerMaxRequests uint32        `env:"PG_BREAKER_MAX_REQUESTS" envDefault:"3"` // BreakerMaxRequests is the number of probes allowed while half-open.
	BreakerInterval    time.Duration `env:"PG_BREAKER_INTERVAL" envDefault:"1m"`    // BreakerInterval is the window after which closed-state counts reset.
	BreakerTimeout     time.Duration `env:"PG_BREAKER_TIMEOUT" envDefault:"30s"`    // BreakerTimeout is how long the breaker stays open before probing.
	BreakerFailures    uint32        `env:"PG_BREAKER_FAILURES" envDefault:"5"`     // BreakerFailures is the number of consecutive failures that opens the breaker.
}
