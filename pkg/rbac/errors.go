package rbac

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/tenantkit/pkg/lookup"
)

var (
	ErrRoleNotFound            = fmt.Errorf("rbac.role_not_found: %w", lookup.ErrNotFound)
	ErrOverrideNotFound        = fmt.Errorf("rbac.override_not_found: %w", lookup.ErrNotFound)
	ErrInsufficientPermissions = errors.New("rbac.insufficient_permissions")
	ErrUnauthenticated         = errors.New("rbac.unauthenticated")
	ErrOverrideNotAllowed      = errors.New("rbac.override_not_allowed")
	ErrCircularInheritance     = errors.New("rbac.circular_inheritance")
	ErrInvalidCatalog          = errors.New("rbac.invalid_catalog")
)
