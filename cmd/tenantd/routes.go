package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/tenantkit/internal/httpserver"
	"github.com/dmitrymomot/tenantkit/pkg/identity"
	"github.com/dmitrymomot/tenantkit/pkg/rbac"
	"github.com/dmitrymomot/tenantkit/pkg/supportaccess"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

type routerDeps struct {
	logger     *slog.Logger
	tenantCfg  tenant.Config
	principals identity.Store
	resolver   *tenant.ContextResolver
	authorizer *rbac.Authorizer
	support    *supportaccess.Service
	gatherer   prometheus.Gatherer
	readiness  []func(context.Context) error
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.RequestID, middleware.Recoverer)

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(d.logger, d.readiness...))
	if d.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		// Support tokens first so their target tenant feeds resolution.
		r.Use(supportaccess.Middleware(d.support))
		r.Use(authenticate(d.principals, d.authorizer, d.logger))
		r.Use(tenant.Middleware(d.resolver, d.tenantCfg, tenant.WithMiddlewareLogger(d.logger)))

		r.Get("/me/context", meContext(d.authorizer))

		r.With(rbac.Require(d.authorizer, rbac.PermSupportImpersonate)).
			Post("/support/tokens", mintSupportToken(d.support, d.principals, d.authorizer))

		r.With(rbac.Require(d.authorizer, rbac.PermTenantsRolesManage)).
			Put("/tenants/{tenantID}/overrides/{userID}", setTenantRole(d.authorizer))
		r.With(rbac.Require(d.authorizer, rbac.PermTenantsRolesManage)).
			Delete("/tenants/{tenantID}/overrides/{userID}", removeTenantRole(d.authorizer))
	})

	return r
}
