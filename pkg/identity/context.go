package identity

import (
	"context"
	"log/slog"
)

type principalContextKey struct{}

// WithPrincipal stores the authenticated principal for the rest of the middleware chain.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// FromContext returns the authenticated principal, or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// IDFromContext returns the authenticated principal id.
func IDFromContext(ctx context.Context) (string, bool) {
	p := FromContext(ctx)
	if p == nil || p.ID == "" {
		return "", false
	}
	return p.ID, true
}

// LoggerExtractor enriches log records with the principal id.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("user_id", id), true
		}
		return slog.Attr{}, false
	}
}
