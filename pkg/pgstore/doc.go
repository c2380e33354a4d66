// Package pgstore is the PostgreSQL backing store for tenants, principals,
// roles, tenant role overrides and the app_config table.
//
// Connect opens a pgx pool with retries, OpenDB bridges it to database/sql and
// Migrate applies the embedded goose migrations. Store implements the lookup
// interfaces of the tenant, identity and rbac packages plus the config reader
// used for the support-token secret.
//
// Misses are returned as the owning package's not-found sentinel. Every other
// failure is wrapped with lookup.ErrStoreUnavailable so callers can fail
// closed. A circuit breaker guards all calls; while it is open calls are
// rejected immediately with the same error.
//
// # Usage
//
//	var cfg pgstore.Config
//	config.MustLoad(&cfg)
//	pool, err := pgstore.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	db := pgstore.OpenDB(pool)
//	if err := pgstore.Migrate(ctx, db, cfg, log); err != nil {
//	    return err
//	}
//	store := pgstore.New(db, cfg, pgstore.WithLogger(log))
package pgstore
