package pgstore

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	ErrFailedToOpenDBConnection = errors.New("pgstore.failed_to_open_connection")
	ErrHealthcheckFailed        = errors.New("pgstore.healthcheck_failed")
	ErrFailedToParseDBConfig    = errors.New("pgstore.failed_to_parse_config")
	ErrFailedToApplyMigrations  = errors.New("pgstore.failed_to_apply_migrations")
	ErrEmptyConnectionString    = errors.New("pgstore.empty_connection_string")
)

// IsNotFoundError detects no-rows errors from both pgx and database/sql.
func IsNotFoundError(err error) bool {
	return err != nil && (errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows))
}

