package rbac

import "context"

// RoleStore reads seeded roles. Misses return ErrRoleNotFound.
type RoleStore interface {
	RoleByID(ctx context.Context, id string) (*Role, error)
	RoleByName(ctx context.Context, name string) (*Role, error)
}

// OverrideStore persists tenant role overrides keyed by (user, tenant).
// A pair holds at most one role; SetOverride replaces any previous one.
type OverrideStore interface {
	// Override returns the overriding role id or ErrOverrideNotFound.
	Override(ctx context.Context, userID, tenantID string) (string, error)
	SetOverride(ctx context.Context, userID, tenantID, roleID string) error
	// DeleteOverride is a no-op when the pair has no override.
	DeleteOverride(ctx context.Context, userID, tenantID string) error
}
