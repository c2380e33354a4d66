package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/dmitrymomot/tenantkit/pkg/identity"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/lookup"
	"github.com/dmitrymomot/tenantkit/pkg/rbac"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// ErrConfigNotFound is returned by ConfigValue for an unknown name.
var ErrConfigNotFound = fmt.Errorf("pgstore.config_not_found: %w", lookup.ErrNotFound)

// Store is the PostgreSQL backing store. It implements tenant.Provider,
// identity.Store, rbac.RoleStore, rbac.OverrideStore and the support-token
// config reader. Every call goes through one circuit breaker.
type Store struct {
	db     *sql.DB
	cb     *gobreaker.CircuitBreaker[any]
	logger *slog.Logger
}

var (
	_ tenant.Provider    = (*Store)(nil)
	_ identity.Store     = (*Store)(nil)
	_ rbac.RoleStore     = (*Store)(nil)
	_ rbac.OverrideStore = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for failed and rejected store calls.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store over db. Breaker settings come from cfg.
func New(db *sql.DB, cfg Config, opts ...Option) *Store {
	s := &Store{db: db, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("pgstore"))
	s.cb = newBreaker(cfg, s.logger)
	return s
}

// TenantBySubdomain implements tenant.Provider.
func (s *Store) TenantBySubdomain(ctx context.Context, label string) (*tenant.Tenant, error) {
	return run(ctx, s, "tenant_by_subdomain", func() (*tenant.Tenant, error) {
		var t tenant.Tenant
		err := s.db.QueryRowContext(ctx,
			`SELECT id, name, domain, subdomain, status, plan, created_at FROM tenants WHERE subdomain = $1`,
			label,
		).Scan(&t.ID, &t.Name, &t.Domain, &t.Subdomain, &t.Status, &t.Plan, &t.CreatedAt)
		if IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		if err != nil {
			return nil, err
		}
		return &t, nil
	})
}

// Principal implements identity.Store.
func (s *Store) Principal(ctx context.Context, id string) (*identity.Principal, error) {
	return run(ctx, s, "principal", func() (*identity.Principal, error) {
		var p identity.Principal
		err := s.db.QueryRowContext(ctx,
			`SELECT id, email, COALESCE(tenant_id, ''), COALESCE(role_id, '') FROM users WHERE id = $1`,
			id,
		).Scan(&p.ID, &p.Email, &p.TenantID, &p.RoleID)
		if IsNotFoundError(err) {
			return nil, identity.ErrPrincipalNotFound
		}
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
}

// RoleByID implements rbac.RoleStore.
func (s *Store) RoleByID(ctx context.Context, id string) (*rbac.Role, error) {
	return run(ctx, s, "role_by_id", func() (*rbac.Role, error) {
		return s.role(ctx, `SELECT id, name, permissions FROM roles WHERE id = $1`, id)
	})
}

// RoleByName implements rbac.RoleStore.
func (s *Store) RoleByName(ctx context.Context, name string) (*rbac.Role, error) {
	return run(ctx, s, "role_by_name", func() (*rbac.Role, error) {
		return s.role(ctx, `SELECT id, name, permissions FROM roles WHERE name = $1`, name)
	})
}

func (s *Store) role(ctx context.Context, query, arg string) (*rbac.Role, error) {
	var (
		r     rbac.Role
		perms sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&r.ID, &r.Name, &perms)
	if IsNotFoundError(err) {
		return nil, rbac.ErrRoleNotFound
	}
	if err != nil {
		return nil, err
	}
	if perms.Valid {
		r.Permissions = strings.Fields(perms.String)
	}
	return &r, nil
}

// Override implements rbac.OverrideStore.
func (s *Store) Override(ctx context.Context, userID, tenantID string) (string, error) {
	return run(ctx, s, "override", func() (string, error) {
		var roleID string
		err := s.db.QueryRowContext(ctx,
			`SELECT role_id FROM tenant_role_overrides WHERE user_id = $1 AND tenant_id = $2`,
			userID, tenantID,
		).Scan(&roleID)
		if IsNotFoundError(err) {
			return "", rbac.ErrOverrideNotFound
		}
		return roleID, err
	})
}

// SetOverride implements rbac.OverrideStore. The pair is upserted.
func (s *Store) SetOverride(ctx context.Context, userID, tenantID, roleID string) error {
	return s.exec(ctx, "set_override",
		`INSERT INTO tenant_role_overrides (user_id, tenant_id, role_id, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, tenant_id) DO UPDATE SET role_id = EXCLUDED.role_id, updated_at = now()`,
		userID, tenantID, roleID,
	)
}

// DeleteOverride implements rbac.OverrideStore.
func (s *Store) DeleteOverride(ctx context.Context, userID, tenantID string) error {
	return s.exec(ctx, "delete_override",
		`DELETE FROM tenant_role_overrides WHERE user_id = $1 AND tenant_id = $2`,
		userID, tenantID,
	)
}

// ConfigValue reads the app_config row name.
func (s *Store) ConfigValue(ctx context.Context, name string) (string, error) {
	return run(ctx, s, "config_value", func() (string, error) {
		var v string
		err := s.db.QueryRowContext(ctx, `SELECT value FROM app_config WHERE name = $1`, name).Scan(&v)
		if IsNotFoundError(err) {
			return "", ErrConfigNotFound
		}
		return v, err
	})
}

// SetConfigValue upserts the app_config row name.
func (s *Store) SetConfigValue(ctx context.Context, name, value string) error {
	return s.exec(ctx, "set_config_value",
		`INSERT INTO app_config (name, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		name, value,
	)
}

// SeedRoles inserts a role row for every name that does not exist yet. Seeded
// rows carry no permission list, so the catalog preset of the same name
// applies.
func (s *Store) SeedRoles(ctx context.Context, names ...string) error {
	for _, name := range names {
		err := s.exec(ctx, "seed_role",
			`INSERT INTO roles (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			uuid.NewString(), name,
		)
		if err != nil {
			return fmt.Errorf("seed role %q: %w", name, err)
		}
	}
	return nil
}

func (s *Store) exec(ctx context.Context, op, query string, args ...any) error {
	_, err := run(ctx, s, op, func() (struct{}, error) {
		_, err := s.db.ExecContext(ctx, query, args...)
		return struct{}{}, err
	})
	return err
}
