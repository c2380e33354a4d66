package identity

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/tenantkit/pkg/lookup"
)

// ErrPrincipalNotFound is returned by stores when no principal matches the id.
var ErrPrincipalNotFound = fmt.Errorf("identity.principal_not_found: %w", lookup.ErrNotFound)

// Principal is the acting user as stored by the platform.
// An empty TenantID marks a platform-level principal.
type Principal struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	TenantID string `json:"tenant_id,omitempty"`
	RoleID   string `json:"role_id,omitempty"`
}

// IsPlatformLevel reports whether the principal is not bound to a tenant.
func (p *Principal) IsPlatformLevel() bool {
	return p != nil && p.TenantID == ""
}

// Store loads stored principal records.
type Store interface {
	// Principal returns ErrPrincipalNotFound when the id is unknown.
	Principal(ctx context.Context, id string) (*Principal, error)
}
