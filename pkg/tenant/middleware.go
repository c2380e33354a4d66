package tenant

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/lookup"
)

// Headers carrying the resolved context to downstream handlers and clients.
const (
	HeaderTenantID       = "X-Tenant-ID"
	HeaderOrganizationID = "X-Organization-ID"
	HeaderMode           = "X-Tenant-Mode"
)

// ErrorHandler writes the response when resolution fails.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNoTenantInContext):
		http.Error(w, "Tenant required", http.StatusBadRequest)
	case lookup.IsUnavailable(err):
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

type middlewareConfig struct {
	errorHandler ErrorHandler
	logger       *slog.Logger
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithErrorHandler replaces the handler used when resolution fails.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithMiddlewareLogger sets the logger for resolution failures.
func WithMiddlewareLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Middleware resolves the request's tenancy context, stores it on the request
// context and stamps it onto request and response headers. Requests without a
// tenant continue; use RequireTenant on routes that need one.
func Middleware(resolver *ContextResolver, cfg Config, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	mc := &middlewareConfig{errorHandler: defaultErrorHandler, logger: logger.Nop()}
	for _, opt := range opts {
		opt(mc)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resolved, err := resolver.Resolve(r.Context(), ExtractSignals(r, cfg))
			if err != nil {
				mc.errorHandler(w, r, err)
				return
			}

			ctx := WithResolved(r.Context(), resolved)
			if resolved.Tenant != nil {
				ctx = WithTenant(ctx, resolved.Tenant)
			}
			r = r.WithContext(ctx)

			stamp(r.Header, resolved)
			stamp(w.Header(), resolved)

			mc.logger.DebugContext(ctx, "tenant context resolved",
				logger.TenantID(resolved.TenantID),
				logger.OrganizationID(resolved.OrganizationID),
				logger.Mode(string(resolved.Mode)),
				logger.Source(string(resolved.Source)),
			)

			next.ServeHTTP(w, r)
		})
	}
}

// stamp overwrites any client-supplied values so downstream code only sees
// what resolution decided.
func stamp(h http.Header, r Resolved) {
	h.Del(HeaderTenantID)
	h.Del(HeaderOrganizationID)
	if r.TenantID != "" {
		h.Set(HeaderTenantID, r.TenantID)
	}
	if r.OrganizationID != "" {
		h.Set(HeaderOrganizationID, r.OrganizationID)
	}
	h.Set(HeaderMode, string(r.Mode))
}

// RequireTenant rejects requests that reached it without a resolved tenant.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IDFromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
