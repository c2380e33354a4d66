package rbac

import "context"

type effectiveRoleKey struct{}

// WithEffectiveRole stores the role computed for the request.
func WithEffectiveRole(ctx context.Context, r EffectiveRole) context.Context {
	return context.WithValue(ctx, effectiveRoleKey{}, r)
}

// EffectiveRoleFromContext returns the role stored by WithEffectiveRole.
func EffectiveRoleFromContext(ctx context.Context) (EffectiveRole, bool) {
	r, ok := ctx.Value(effectiveRoleKey{}).(EffectiveRole)
	return r, ok
}
