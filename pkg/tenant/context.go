package tenant

import (
	"context"
	"log/slog"
)

type (
	resolvedContextKey struct{}
	tenantContextKey   struct{}
	claimContextKey    struct{}
)

// WithResolved stores the resolved request context.
func WithResolved(ctx context.Context, r Resolved) context.Context {
	return context.WithValue(ctx, resolvedContextKey{}, r)
}

// ResolvedFromContext returns the resolved request context.
func ResolvedFromContext(ctx context.Context) (Resolved, bool) {
	r, ok := ctx.Value(resolvedContextKey{}).(Resolved)
	return r, ok
}

// IDFromContext returns the resolved tenant id. Empty means no tenant.
func IDFromContext(ctx context.Context) (string, bool) {
	r, ok := ResolvedFromContext(ctx)
	if !ok || r.TenantID == "" {
		return "", false
	}
	return r.TenantID, true
}

// WithTenant stores the tenant record when resolution loaded one.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, t)
}

// FromContext returns the tenant record loaded during resolution, if any.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(tenantContextKey{}).(*Tenant)
	return t, ok && t != nil
}

// WithSessionClaim records the tenant named by the caller's session. Auth
// middleware sets it before tenant resolution runs.
func WithSessionClaim(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, claimContextKey{}, tenantID)
}

// SessionClaimFromContext returns the session tenant claim or "".
func SessionClaimFromContext(ctx context.Context) string {
	s, _ := ctx.Value(claimContextKey{}).(string)
	return s
}

// LoggerExtractor adds tenant_id to log records.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id), true
		}
		return slog.Attr{}, false
	}
}
