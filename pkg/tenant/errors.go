package tenant

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/tenantkit/pkg/lookup"
)

var (
	ErrTenantNotFound    = fmt.Errorf("tenant.not_found: %w", lookup.ErrNotFound)
	ErrNoTenantInContext = errors.New("tenant.no_tenant_in_context")
	ErrInvalidMode       = errors.New("tenant.invalid_mode")
)
