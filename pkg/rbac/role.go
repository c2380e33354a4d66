package rbac

import (
	"github.com/dmitrymomot/tenantkit/pkg/scopes"
)

// PlatformAdminRole is the only platform role whose holders may receive
// tenant role overrides.
const PlatformAdminRole = "Platform Admin"

// Role is a seeded named set of permission patterns. Roles are not created by
// end users.
type Role struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Permissions []string `json:"permissions,omitempty" yaml:"permissions,omitempty"`
}

// RoleSource tells where an effective role came from.
type RoleSource string

const (
	SourcePlatform RoleSource = "platform"
	SourceTenant   RoleSource = "tenant"
)

// EffectiveRole is the role applied to a request after override precedence.
// A nil Role means "no role": zero permissions.
type EffectiveRole struct {
	Role     *Role
	Source   RoleSource
	TenantID string

	perms *scopes.Set
}

// Name returns the role name or "" when there is no role.
func (e EffectiveRole) Name() string {
	if e.Role == nil {
		return ""
	}
	return e.Role.Name
}

// ID returns the role id or "" when there is no role.
func (e EffectiveRole) ID() string {
	if e.Role == nil {
		return ""
	}
	return e.Role.ID
}

// Can reports whether the role grants permission.
func (e EffectiveRole) Can(permission string) bool {
	return e.perms.Has(permission)
}

// Permissions returns the granted patterns, sorted.
func (e EffectiveRole) Permissions() []string {
	return e.perms.Patterns()
}
