package supportaccess

import "context"

// Grant is a verified support-access token attached to a request.
type Grant struct {
	Token   string
	Payload Payload
}

// AllowsWrite reports whether the grant permits limited writes.
func (g *Grant) AllowsWrite() bool {
	return g != nil && g.Payload.AllowsWrite()
}

type grantContextKey struct{}

// WithGrant stores g on ctx.
func WithGrant(ctx context.Context, g *Grant) context.Context {
	return context.WithValue(ctx, grantContextKey{}, g)
}

// GrantFromContext returns the request's grant, or nil.
func GrantFromContext(ctx context.Context) *Grant {
	g, _ := ctx.Value(grantContextKey{}).(*Grant)
	return g
}
