package pgstore

import "context"

// migrateLogger is the subset of *slog.Logger used for migration output.
type migrateLogger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
