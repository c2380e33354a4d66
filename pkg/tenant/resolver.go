package tenant

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/cache"
	"github.com/dmitrymomot/tenantkit/pkg/identity"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/lookup"
)

// Source names the resolution step that produced a tenant.
type Source string

const (
	SourceNone      Source = "none"
	SourceSubdomain Source = "subdomain"
	SourceParam     Source = "param"
	SourceHeader    Source = "header"
	SourceCookie    Source = "cookie"
	SourceClaim     Source = "claim"
	SourceSession   Source = "session"
	SourceDefault   Source = "default"
)

// Resolution is the outcome of Resolver.Resolve. An empty TenantID with
// SourceNone means no tenant; callers decide whether the route allows that.
type Resolution struct {
	TenantID string
	Source   Source
	// Tenant is set when the tenant record was loaded (subdomain step).
	Tenant *Tenant
}

// Resolver maps request signals to a tenant id.
type Resolver struct {
	provider   Provider
	principals identity.Store
	cache      *cache.Cache[*Tenant]
	cacheTTL   time.Duration
	failOpen   bool
	activeOnly bool
	bound      bool
	logger     *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache caches subdomain lookups for ttl. Misses are not cached.
func WithCache(c *cache.Cache[*Tenant], ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// WithPrincipals enables the principal fallback step.
func WithPrincipals(s identity.Store) Option {
	return func(r *Resolver) { r.principals = s }
}

// WithFailOpen treats store failures as misses instead of errors.
func WithFailOpen(failOpen bool) Option {
	return func(r *Resolver) { r.failOpen = failOpen }
}

// WithActiveOnly treats tenants that are not active as unknown subdomains.
func WithActiveOnly() Option {
	return func(r *Resolver) { r.activeOnly = true }
}

// WithPrincipalBinding ignores explicit signals naming a tenant other than
// the stored tenant of a tenant-bound principal. Requires WithPrincipals.
func WithPrincipalBinding() Option {
	return func(r *Resolver) { r.bound = true }
}

// WithLogger sets the logger used for skipped signals and store failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver. provider may be nil to disable the
// subdomain step.
func NewResolver(provider Provider, opts ...Option) *Resolver {
	r := &Resolver{provider: provider, logger: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("tenant.resolver"))
	return r
}

// Resolve runs subdomain, explicit-signal and principal steps in order. The
// only error it returns wraps lookup.ErrStoreUnavailable, and only when
// fail-open is off.
func (r *Resolver) Resolve(ctx context.Context, s Signals) (Resolution, error) {
	if s.Subdomain != "" && r.provider != nil {
		res := r.bySubdomain(ctx, s.Subdomain)
		switch res.Status {
		case lookup.StatusFound:
			t := res.Value
			return Resolution{TenantID: t.ID, Source: SourceSubdomain, Tenant: t}, nil
		case lookup.StatusStoreError:
			if err := r.storeFailed(ctx, "subdomain", res.Err); err != nil {
				return Resolution{Source: SourceNone}, err
			}
		}
	}

	var (
		principal *identity.Principal
		loaded    bool
	)
	loadPrincipal := func() error {
		if loaded || s.PrincipalID == "" || r.principals == nil {
			return nil
		}
		loaded = true
		res := lookup.Of(r.principals.Principal(ctx, s.PrincipalID))
		switch res.Status {
		case lookup.StatusFound:
			principal = res.Value
		case lookup.StatusStoreError:
			return r.storeFailed(ctx, "principal", res.Err)
		}
		return nil
	}

	if r.bound {
		if err := loadPrincipal(); err != nil {
			return Resolution{Source: SourceNone}, err
		}
	}

	for _, c := range []struct {
		value  string
		source Source
	}{
		{s.Param, SourceParam},
		{s.Header, SourceHeader},
		{s.Cookie, SourceCookie},
		{s.Claim, SourceClaim},
	} {
		if c.value == "" {
			continue
		}
		if !IsValidID(c.value) {
			r.logger.DebugContext(ctx, "ignoring malformed tenant signal",
				logger.Source(string(c.source)))
			continue
		}
		if r.bound && principal != nil && principal.TenantID != "" && principal.TenantID != c.value {
			r.logger.DebugContext(ctx, "ignoring tenant signal outside principal tenant",
				logger.Source(string(c.source)), logger.UserID(principal.ID))
			continue
		}
		return Resolution{TenantID: c.value, Source: c.source}, nil
	}

	if err := loadPrincipal(); err != nil {
		return Resolution{Source: SourceNone}, err
	}
	// A platform-level principal has no tenant of its own.
	if principal != nil && principal.TenantID != "" {
		return Resolution{TenantID: principal.TenantID, Source: SourceSession}, nil
	}

	return Resolution{Source: SourceNone}, nil
}

func (r *Resolver) bySubdomain(ctx context.Context, label string) lookup.Result[*Tenant] {
	load := func(ctx context.Context) (*Tenant, error) {
		return r.provider.TenantBySubdomain(ctx, label)
	}

	var (
		t   *Tenant
		err error
	)
	if r.cache != nil {
		t, err = r.cache.GetOrCompute(ctx, "tenant:subdomain:"+label, r.cacheTTL, load)
	} else {
		t, err = load(ctx)
	}

	res := lookup.Of(t, err)
	if res.Ok() && (t == nil || (r.activeOnly && !t.IsActive())) {
		return lookup.NotFound[*Tenant]()
	}
	return res
}

func (r *Resolver) storeFailed(ctx context.Context, step string, err error) error {
	if r.failOpen {
		r.logger.WarnContext(ctx, "tenant store unavailable, continuing without it",
			slog.String("step", step), logger.Error(err))
		return nil
	}
	r.logger.ErrorContext(ctx, "tenant store unavailable",
		slog.String("step", step), logger.Error(err))
	return err
}
