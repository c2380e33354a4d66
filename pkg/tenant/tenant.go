package tenant

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

// Status is a tenant lifecycle state. Tenants are never hard-deleted in the
// request path; they move between statuses instead.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusArchived  Status = "archived"
)

// Tenant is an isolated customer organization.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	Subdomain string    `json:"subdomain"`
	Status    Status    `json:"status"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// IsActive reports whether the tenant may serve requests.
func (t *Tenant) IsActive() bool {
	return t != nil && t.Status == StatusActive
}

// Provider loads tenants from the backing store.
type Provider interface {
	// TenantBySubdomain returns ErrTenantNotFound when no tenant owns label.
	TenantBySubdomain(ctx context.Context, label string) (*Tenant, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, label string) (*Tenant, error)

func (f ProviderFunc) TenantBySubdomain(ctx context.Context, label string) (*Tenant, error) {
	return f(ctx, label)
}

// MemoryProvider is a Provider backed by a map keyed by subdomain.
type MemoryProvider struct {
	mu      sync.RWMutex
	tenants map[string]Tenant
}

// NewMemoryProvider creates a provider seeded with tenants.
func NewMemoryProvider(tenants ...Tenant) *MemoryProvider {
	p := &MemoryProvider{tenants: make(map[string]Tenant, len(tenants))}
	for _, t := range tenants {
		p.tenants[t.Subdomain] = t
	}
	return p
}

// Put inserts or replaces a tenant.
func (p *MemoryProvider) Put(t Tenant) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tenants[t.Subdomain] = t
}

// Tenants returns all tenants sorted by subdomain.
func (p *MemoryProvider) Tenants() []Tenant {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Tenant, 0, len(p.tenants))
	for _, k := range slices.Sorted(maps.Keys(p.tenants)) {
		out = append(out, p.tenants[k])
	}
	return out
}

func (p *MemoryProvider) TenantBySubdomain(_ context.Context, label string) (*Tenant, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.tenants[label]
	if !ok {
		return nil, ErrTenantNotFound
	}
	return &t, nil
}
