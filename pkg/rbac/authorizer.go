package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/cache"
	"github.com/dmitrymomot/tenantkit/pkg/identity"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/lookup"
	"github.com/dmitrymomot/tenantkit/pkg/scopes"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// Authorizer computes effective roles and gates permissions.
// It is safe for concurrent use.
type Authorizer struct {
	roles      RoleStore
	overrides  OverrideStore
	principals identity.Store
	catalog    *Catalog
	cache      *cache.Cache[*Role]
	cacheTTL   time.Duration
	metrics    *Metrics
	logger     *slog.Logger
}

// Option configures an Authorizer.
type Option func(*Authorizer)

// WithCatalog sets the presets used for roles stored without permissions.
func WithCatalog(c *Catalog) Option {
	return func(a *Authorizer) {
		if c != nil {
			a.catalog = c
		}
	}
}

// WithRoleCache caches role lookups by id and by name for ttl.
func WithRoleCache(c *cache.Cache[*Role], ttl time.Duration) Option {
	return func(a *Authorizer) {
		a.cache = c
		a.cacheTTL = ttl
	}
}

// WithPrincipals lets SetTenantRole check that the target is platform-level.
func WithPrincipals(s identity.Store) Option {
	return func(a *Authorizer) { a.principals = s }
}

// WithMetrics records decisions and override changes on m.
func WithMetrics(m *Metrics) Option {
	return func(a *Authorizer) { a.metrics = m }
}

// WithLogger sets the logger for denials and store failures.
func WithLogger(l *slog.Logger) Option {
	return func(a *Authorizer) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAuthorizer creates an Authorizer. overrides may be nil when the
// deployment has no tenant role overrides.
func NewAuthorizer(roles RoleStore, overrides OverrideStore, opts ...Option) *Authorizer {
	a := &Authorizer{
		roles:     roles,
		overrides: overrides,
		catalog:   DefaultCatalog(),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(logger.Component("rbac"))
	for _, w := range a.catalog.Warnings() {
		a.logger.Warn("permission catalog", slog.String("warning", w))
	}
	return a
}

// EffectiveRole returns the role p acts under inside tenantID (empty for no
// tenant). A tenant override applies only to a platform-level principal whose
// platform role is exactly PlatformAdminRole. A principal without a role, or
// whose role or override role no longer exists, gets an EffectiveRole with a
// nil Role.
func (a *Authorizer) EffectiveRole(ctx context.Context, p *identity.Principal, tenantID string) (EffectiveRole, error) {
	if p == nil {
		return EffectiveRole{}, ErrUnauthenticated
	}

	eff := EffectiveRole{Source: SourcePlatform, TenantID: tenantID}
	if p.RoleID == "" {
		return eff, nil
	}

	platform := a.roleByID(ctx, p.RoleID)
	if platform.Status == lookup.StatusStoreError {
		return eff, platform.Err
	}
	if platform.Ok() {
		eff = a.effective(platform.Value, SourcePlatform, tenantID)
	}

	if tenantID == "" || !p.IsPlatformLevel() || eff.Name() != PlatformAdminRole || a.overrides == nil {
		return eff, nil
	}

	override := lookup.Of(a.overrides.Override(ctx, p.ID, tenantID))
	switch override.Status {
	case lookup.StatusStoreError:
		return eff, override.Err
	case lookup.StatusNotFound:
		return eff, nil
	}

	role := a.roleByID(ctx, override.Value)
	switch role.Status {
	case lookup.StatusStoreError:
		return eff, role.Err
	case lookup.StatusNotFound:
		// Dangling override: fail closed rather than keep Platform Admin.
		a.logger.WarnContext(ctx, "tenant role override references missing role",
			logger.UserID(p.ID), logger.TenantID(tenantID), slog.String("role_id", override.Value))
		return EffectiveRole{Source: SourceTenant, TenantID: tenantID}, nil
	}
	return a.effective(role.Value, SourceTenant, tenantID), nil
}

// HasPermission reports whether the role named roleName grants permission.
// An unknown role grants nothing. The only error is a store failure.
func (a *Authorizer) HasPermission(ctx context.Context, roleName, permission string) (bool, error) {
	res := a.roleByName(ctx, roleName)
	switch res.Status {
	case lookup.StatusStoreError:
		return false, res.Err
	case lookup.StatusNotFound:
		return false, nil
	}
	return a.permissionSet(res.Value).Has(permission), nil
}

// RequirePermission resolves p's effective role in the tenant stored on ctx
// and fails unless it grants permission.
func (a *Authorizer) RequirePermission(ctx context.Context, p *identity.Principal, permission string) error {
	return a.require(ctx, p, []string{permission}, func(e EffectiveRole) bool {
		return e.Can(permission)
	})
}

// RequireAny fails unless at least one permission is granted.
func (a *Authorizer) RequireAny(ctx context.Context, p *identity.Principal, permissions ...string) error {
	return a.require(ctx, p, permissions, func(e EffectiveRole) bool {
		return e.perms.HasAny(permissions...)
	})
}

// RequireAll fails unless every permission is granted.
func (a *Authorizer) RequireAll(ctx context.Context, p *identity.Principal, permissions ...string) error {
	return a.require(ctx, p, permissions, func(e EffectiveRole) bool {
		return e.perms.HasAll(permissions...)
	})
}

func (a *Authorizer) require(ctx context.Context, p *identity.Principal, permissions []string, check func(EffectiveRole) bool) error {
	if p == nil {
		a.decision("unauthenticated", "")
		return ErrUnauthenticated
	}

	tenantID, _ := tenant.IDFromContext(ctx)
	eff, err := a.EffectiveRole(ctx, p, tenantID)
	if err != nil {
		a.decision("error", "")
		a.logger.ErrorContext(ctx, "effective role lookup failed", logger.UserID(p.ID), logger.Error(err))
		return err
	}

	if !check(eff) {
		a.decision("denied", eff.Source)
		a.logger.DebugContext(ctx, "permission denied",
			logger.UserID(p.ID),
			logger.TenantID(tenantID),
			logger.Role(eff.Name()),
			slog.Any("permissions", permissions),
		)
		return fmt.Errorf("%w: %v", ErrInsufficientPermissions, permissions)
	}
	a.decision("allowed", eff.Source)
	return nil
}

// ListPermissions returns the patterns granted to p inside tenantID.
func (a *Authorizer) ListPermissions(ctx context.Context, p *identity.Principal, tenantID string) ([]string, error) {
	eff, err := a.EffectiveRole(ctx, p, tenantID)
	if err != nil {
		return nil, err
	}
	return eff.Permissions(), nil
}

// SetTenantRole grants platform-level principal userID the role roleName
// inside tenantID, replacing any previous override for the pair.
func (a *Authorizer) SetTenantRole(ctx context.Context, userID, tenantID, roleName string) error {
	if a.overrides == nil || userID == "" || tenantID == "" {
		return ErrOverrideNotAllowed
	}
	if err := a.ensurePlatformLevel(ctx, userID); err != nil {
		return err
	}

	role := a.roleByName(ctx, roleName)
	switch role.Status {
	case lookup.StatusStoreError:
		return role.Err
	case lookup.StatusNotFound:
		return fmt.Errorf("%w: %q", ErrRoleNotFound, roleName)
	}

	if err := a.overrides.SetOverride(ctx, userID, tenantID, role.Value.ID); err != nil {
		return lookup.Unavailable(err)
	}
	a.overrideChanged("set")
	a.logger.InfoContext(ctx, "tenant role override set",
		logger.UserID(userID), logger.TenantID(tenantID), logger.Role(roleName))
	return nil
}

// RemoveTenantRole deletes the override for (userID, tenantID), if any.
func (a *Authorizer) RemoveTenantRole(ctx context.Context, userID, tenantID string) error {
	if a.overrides == nil {
		return ErrOverrideNotAllowed
	}
	if err := a.overrides.DeleteOverride(ctx, userID, tenantID); err != nil {
		return lookup.Unavailable(err)
	}
	a.overrideChanged("remove")
	a.logger.InfoContext(ctx, "tenant role override removed",
		logger.UserID(userID), logger.TenantID(tenantID))
	return nil
}

func (a *Authorizer) ensurePlatformLevel(ctx context.Context, userID string) error {
	if a.principals == nil {
		return nil
	}
	res := lookup.Of(a.principals.Principal(ctx, userID))
	switch res.Status {
	case lookup.StatusStoreError:
		return res.Err
	case lookup.StatusNotFound:
		return errors.Join(ErrOverrideNotAllowed, identity.ErrPrincipalNotFound)
	}
	if !res.Value.IsPlatformLevel() {
		return fmt.Errorf("%w: principal belongs to tenant %q", ErrOverrideNotAllowed, res.Value.TenantID)
	}
	return nil
}

func (a *Authorizer) effective(r *Role, source RoleSource, tenantID string) EffectiveRole {
	return EffectiveRole{Role: r, Source: source, TenantID: tenantID, perms: a.permissionSet(r)}
}

// permissionSet prefers the stored list and falls back to the catalog preset
// of the same name.
func (a *Authorizer) permissionSet(r *Role) *scopes.Set {
	if r == nil {
		return nil
	}
	if len(r.Permissions) > 0 {
		return scopes.NewSet(r.Permissions)
	}
	if s, ok := a.catalog.Preset(r.Name); ok {
		return s
	}
	return nil
}

func (a *Authorizer) roleByID(ctx context.Context, id string) lookup.Result[*Role] {
	return a.lookupRole(ctx, "role:id:"+id, func(ctx context.Context) (*Role, error) {
		return a.roles.RoleByID(ctx, id)
	})
}

func (a *Authorizer) roleByName(ctx context.Context, name string) lookup.Result[*Role] {
	return a.lookupRole(ctx, "role:name:"+name, func(ctx context.Context) (*Role, error) {
		return a.roles.RoleByName(ctx, name)
	})
}

func (a *Authorizer) lookupRole(ctx context.Context, key string, load cache.Loader[*Role]) lookup.Result[*Role] {
	var (
		r   *Role
		err error
	)
	if a.cache != nil {
		r, err = a.cache.GetOrCompute(ctx, key, a.cacheTTL, load)
	} else {
		r, err = load(ctx)
	}
	if err == nil && r == nil {
		return lookup.NotFound[*Role]()
	}
	return lookup.Of(r, err)
}

func (a *Authorizer) decision(outcome string, source RoleSource) {
	if a.metrics != nil {
		a.metrics.Decisions.WithLabelValues(outcome, string(source)).Inc()
	}
}

func (a *Authorizer) overrideChanged(op string) {
	if a.metrics != nil {
		a.metrics.Overrides.WithLabelValues(op).Inc()
	}
}
