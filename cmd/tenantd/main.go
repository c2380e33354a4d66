package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/tenantkit/internal/httpserver"
	"github.com/dmitrymomot/tenantkit/pkg/cache"
	"github.com/dmitrymomot/tenantkit/pkg/config"
	"github.com/dmitrymomot/tenantkit/pkg/identity"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/pgstore"
	"github.com/dmitrymomot/tenantkit/pkg/rbac"
	"github.com/dmitrymomot/tenantkit/pkg/supportaccess"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("tenantd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		app        appConfig
		httpCfg    httpserver.Config
		pgCfg      pgstore.Config
		tenantCfg  tenant.Config
		supportCfg supportaccess.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&app) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&pgCfg) },
		func() error { return config.Load(&tenantCfg) },
		func() error { return config.Load(&supportCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	opts := []logger.Option{
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextExtractors(
			httpserver.RequestIDExtractor(),
			identity.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	}
	if app.LogLevel != "" {
		opts = append(opts, logger.WithLevel(logger.ParseLevel(app.LogLevel)))
	}
	log := logger.New(opts...)
	logger.SetAsDefault(log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cacheMetrics := cache.NewMetrics(reg)

	pool, err := pgstore.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := pgstore.OpenDB(pool)
	defer db.Close()

	if app.AutoMigrate {
		if err := pgstore.Migrate(ctx, db, pgCfg, log); err != nil {
			return err
		}
	}
	store := pgstore.New(db, pgCfg, pgstore.WithLogger(log))
	checks := []func(context.Context) error{pgstore.Healthcheck(db)}

	catalog := rbac.DefaultCatalog()
	if app.CatalogPath != "" {
		f, err := os.Open(app.CatalogPath)
		if err != nil {
			return fmt.Errorf("open role catalog: %w", err)
		}
		catalog, err = rbac.LoadCatalog(f)
		_ = f.Close()
		if err != nil {
			return err
		}
	}
	for _, w := range catalog.Warnings() {
		log.WarnContext(ctx, "role catalog", slog.String("warning", w))
	}
	if err := store.SeedRoles(ctx, catalog.Roles()...); err != nil {
		return err
	}

	var (
		rdb         *redis.Client
		redisPrefix string
	)
	if app.RedisEnabled {
		var redisCfg cache.RedisConfig
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		if rdb, err = cache.ConnectRedis(ctx, redisCfg); err != nil {
			return err
		}
		redisPrefix = redisCfg.KeyPrefix
		defer rdb.Close()
		checks = append(checks, cache.RedisHealthcheck(rdb))
	}

	cacheOpts := func(name string) []cache.Option {
		return []cache.Option{cache.WithName(name), cache.WithMetrics(cacheMetrics), cache.WithLogger(log)}
	}
	tenantCache := cache.New(newStore[*tenant.Tenant](rdb, redisPrefix+"tenant:", app.CacheSize), cacheOpts("tenant")...)
	roleCache := cache.New(newStore[*rbac.Role](rdb, redisPrefix+"role:", app.CacheSize), cacheOpts("role")...)
	secretCache := cache.New[string](cache.NewMemoryStore[string](16), cacheOpts("support_secret")...)

	resolverOpts := []tenant.Option{
		tenant.WithCache(tenantCache, tenantCfg.CacheTTL),
		tenant.WithPrincipals(store),
		tenant.WithFailOpen(tenantCfg.FailOpen),
		tenant.WithLogger(log),
	}
	if tenantCfg.ActiveOnly {
		resolverOpts = append(resolverOpts, tenant.WithActiveOnly())
	}
	if tenantCfg.BindPrincipal {
		resolverOpts = append(resolverOpts, tenant.WithPrincipalBinding())
	}
	contextResolver, err := tenant.NewContextResolver(
		tenant.NewResolver(store, resolverOpts...),
		tenantCfg.Mode,
		tenantCfg.DefaultOrganizationID,
	)
	if err != nil {
		return err
	}

	authorizer := rbac.NewAuthorizer(store, store,
		rbac.WithCatalog(catalog),
		rbac.WithRoleCache(roleCache, app.RoleCacheTTL),
		rbac.WithPrincipals(store),
		rbac.WithMetrics(rbac.NewMetrics(reg)),
		rbac.WithLogger(log),
	)

	var secrets supportaccess.SecretSource = supportaccess.StaticSecret(supportCfg.Secret)
	if supportCfg.Secret == "" {
		secrets = supportaccess.NewStoredSecret(store, supportCfg.SecretName, secretCache, supportCfg.SecretCacheTTL)
	}
	support := supportaccess.NewService(secrets,
		supportaccess.WithTTL(supportCfg.TTL),
		supportaccess.WithMaxTTL(supportCfg.MaxTTL),
		supportaccess.WithLogger(log),
	)

	router := newRouter(routerDeps{
		logger:     log,
		tenantCfg:  tenantCfg,
		principals: store,
		resolver:   contextResolver,
		authorizer: authorizer,
		support:    support,
		gatherer:   reg,
		readiness:  checks,
	})

	log.InfoContext(ctx, "tenantd starting",
		slog.String("mode", string(contextResolver.Mode())),
		slog.Bool("redis", rdb != nil),
	)
	return httpserver.New(httpCfg, log).Run(ctx, router)
}

// newStore picks the shared Redis backend when one is connected and a
// process-local LRU otherwise.
func newStore[V any](rdb *redis.Client, prefix string, size int) cache.Store[V] {
	if rdb != nil {
		return cache.NewRedisStore[V](rdb, prefix)
	}
	return cache.NewMemoryStore[V](size)
}
