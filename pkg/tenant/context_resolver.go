package tenant

import (
	"context"
	"fmt"
)

// Mode is the deployment's tenancy model.
type Mode string

const (
	ModeMultiTenant      Mode = "multi_tenant"
	ModeOrganizationOnly Mode = "organization_only"
)

// ParseMode validates a configured mode. Empty means multi-tenant.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeMultiTenant:
		return ModeMultiTenant, nil
	case ModeOrganizationOnly:
		return ModeOrganizationOnly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Resolved is the per-request tenancy context. It is never persisted.
type Resolved struct {
	TenantID       string  `json:"tenant_id,omitempty"`
	OrganizationID string  `json:"organization_id,omitempty"`
	Mode           Mode    `json:"mode"`
	Source         Source  `json:"source"`
	Tenant         *Tenant `json:"-"`
}

// HasTenant reports whether a tenant was resolved.
func (r Resolved) HasTenant() bool { return r.TenantID != "" }

// ContextResolver decides tenant, organization and mode for a request. It has
// no side effects beyond its return value.
type ContextResolver struct {
	resolver   *Resolver
	mode       Mode
	defaultOrg string
}

// NewContextResolver wraps resolver with the deployment's mode settings.
func NewContextResolver(resolver *Resolver, mode Mode, defaultOrganizationID string) (*ContextResolver, error) {
	m, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	return &ContextResolver{resolver: resolver, mode: m, defaultOrg: defaultOrganizationID}, nil
}

// Mode returns the configured tenancy mode.
func (c *ContextResolver) Mode() Mode { return c.mode }

// Resolve runs tenant resolution and applies the mode. In organization-only
// mode the organization id comes from the same signal chain and falls back to
// the configured default organization.
func (c *ContextResolver) Resolve(ctx context.Context, s Signals) (Resolved, error) {
	res, err := c.resolver.Resolve(ctx, s)
	if err != nil {
		return Resolved{Mode: c.mode, Source: SourceNone}, err
	}

	out := Resolved{
		TenantID: res.TenantID,
		Mode:     c.mode,
		Source:   res.Source,
		Tenant:   res.Tenant,
	}
	if c.mode == ModeOrganizationOnly {
		out.OrganizationID = res.TenantID
		if out.OrganizationID == "" && c.defaultOrg != "" {
			out.OrganizationID = c.defaultOrg
			out.TenantID = c.defaultOrg
			out.Source = SourceDefault
		}
	}
	return out, nil
}
