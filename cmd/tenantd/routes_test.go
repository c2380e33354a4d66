package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/identity"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/rbac"
	"github.com/dmitrymomot/tenantkit/pkg/supportaccess"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

const testSupportSecret = "0123456789abcdef0123456789abcdef"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	principals := identity.NewMemoryStore(
		identity.Principal{ID: "admin", Email: "admin@example.com", RoleID: "r-admin"},
		identity.Principal{ID: "staff", Email: "staff@example.com", RoleID: "r-support"},
		identity.Principal{ID: "member", Email: "member@acme.com", TenantID: "t-acme", RoleID: "r-member"},
		identity.Principal{ID: "acme-support", Email: "support@acme.com", TenantID: "t-acme", RoleID: "r-support"},
	)
	roles := rbac.NewMemoryRoleStore(
		rbac.Role{ID: "r-admin", Name: rbac.PlatformAdminRole},
		rbac.Role{ID: "r-support", Name: "Support Agent"},
		rbac.Role{ID: "r-member", Name: "Member"},
	)

	cfg := tenant.DefaultConfig()
	cfg.BaseDomain = "example.com"

	resolver, err := tenant.NewContextResolver(
		tenant.NewResolver(
			tenant.NewMemoryProvider(tenant.Tenant{ID: "t-acme", Name: "Acme", Subdomain: "acme", Status: tenant.StatusActive}),
			tenant.WithPrincipals(principals),
		),
		tenant.ModeMultiTenant, "",
	)
	require.NoError(t, err)

	return newRouter(routerDeps{
		logger:     logger.Nop(),
		tenantCfg:  cfg,
		principals: principals,
		resolver:   resolver,
		authorizer: rbac.NewAuthorizer(roles, rbac.NewMemoryOverrideStore(), rbac.WithPrincipals(principals)),
		support:    supportaccess.NewService(supportaccess.StaticSecret(testSupportSecret)),
	})
}

func do(h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeContext(t *testing.T, rec *httptest.ResponseRecorder) contextResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp contextResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestProbes(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	rec := do(h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(h, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMeContext(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodGet, "http://acme.example.com/me/context", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodGet, "/me/context", "", map[string]string{userIDHeader: "ghost"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("tenant member on subdomain", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodGet, "http://acme.example.com/me/context", "", map[string]string{userIDHeader: "member"})
		resp := decodeContext(t, rec)
		assert.Equal(t, "t-acme", resp.TenantID)
		assert.Equal(t, tenant.SourceSubdomain, resp.Source)
		assert.Equal(t, "Member", resp.Role)
		assert.Contains(t, resp.Permissions, rbac.PermListingsCreate)
		assert.Equal(t, "t-acme", rec.Header().Get(tenant.HeaderTenantID))
		assert.Nil(t, resp.Support)
	})

	t.Run("member falls back to stored tenant", func(t *testing.T) {
		t.Parallel()

		resp := decodeContext(t, do(h, http.MethodGet, "/me/context", "", map[string]string{userIDHeader: "member"}))
		assert.Equal(t, "t-acme", resp.TenantID)
		assert.Equal(t, tenant.SourceSession, resp.Source)
	})
}

func TestSupportTokenFlow(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	body := `{"target_user_id":"member","target_tenant_id":"t-acme","scope":"read_only","reason":"customer reports missing listings","ticket_id":"T-42"}`

	t.Run("member cannot mint", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodPost, "/support/tokens", body, map[string]string{userIDHeader: "member"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invalid request", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodPost, "/support/tokens", `{"scope":"read_only","reason":"short"}`, map[string]string{userIDHeader: "staff"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("staff mints and uses a token", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodPost, "/support/tokens", body, map[string]string{userIDHeader: "staff"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var issued supportaccess.Issued
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &issued))
		assert.Equal(t, "staff", issued.Payload.ActorStaffUserID)

		resp := decodeContext(t, do(h, http.MethodGet, "/me/context", "", map[string]string{
			"Authorization": "Support " + issued.Token,
		}))
		assert.Equal(t, "member", resp.UserID)
		assert.Equal(t, "t-acme", resp.TenantID)
		assert.Equal(t, tenant.SourceClaim, resp.Source)
		require.NotNil(t, resp.Support)
		assert.Equal(t, "staff", resp.Support.Actor)
		assert.Equal(t, supportaccess.ScopeReadOnly, resp.Support.Scope)

		// Read-only tokens cannot write.
		rec = do(h, http.MethodPost, "/support/tokens", body, map[string]string{
			supportaccess.HeaderToken: issued.Token,
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("tampered token", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodGet, "/me/context", "", map[string]string{supportaccess.HeaderToken: "a.b.c"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "bad_signature")
	})
}

func TestSupportTokenTargets(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	staff := map[string]string{userIDHeader: "staff"}
	mintBody := func(target, tenantID string) string {
		return `{"target_user_id":"` + target + `","target_tenant_id":"` + tenantID +
			`","scope":"support_write_limited","reason":"customer reports missing listings"}`
	}

	t.Run("mint rejects disallowed targets", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name   string
			body   string
			status int
		}{
			{"platform-level user", mintBody("admin", ""), http.StatusUnprocessableEntity},
			{"platform-level user with tenant", mintBody("admin", "t-acme"), http.StatusUnprocessableEntity},
			{"tenant other than the target's", mintBody("member", "t-globex"), http.StatusUnprocessableEntity},
			{"target holding support rights", mintBody("acme-support", "t-acme"), http.StatusUnprocessableEntity},
			{"unknown target", mintBody("ghost", ""), http.StatusUnprocessableEntity},
			{"tenant user without tenant", mintBody("member", ""), http.StatusCreated},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				rec := do(h, http.MethodPost, "/support/tokens", tt.body, staff)
				assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			})
		}
	})

	// Tokens signed with the right secret but minted outside the handler.
	svc := supportaccess.NewService(supportaccess.StaticSecret(testSupportSecret))
	forge := func(t *testing.T, target, tenantID string) string {
		t.Helper()
		issued, err := svc.Mint(context.Background(), supportaccess.MintRequest{
			Actor:          "staff",
			TargetUserID:   target,
			TargetTenantID: tenantID,
			Scope:          supportaccess.ScopeSupportWriteLimited,
			Reason:         "customer reports missing listings",
		})
		require.NoError(t, err)
		return issued.Token
	}

	t.Run("token cannot act as disallowed targets", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name     string
			target   string
			tenantID string
		}{
			{"platform admin", "admin", ""},
			{"platform admin inside a tenant", "admin", "t-acme"},
			{"support user", "acme-support", ""},
			{"member of another tenant", "member", "t-globex"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				token := map[string]string{supportaccess.HeaderToken: forge(t, tt.target, tt.tenantID)}
				rec := do(h, http.MethodGet, "/me/context", "", token)
				assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

				rec = do(h, http.MethodPut, "/tenants/t-acme/overrides/staff", `{"role":"Member"}`, token)
				assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

				rec = do(h, http.MethodPost, "/support/tokens", mintBody("member", "t-acme"), token)
				assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
			})
		}
	})

	t.Run("write-limited token acts as its tenant user only", func(t *testing.T) {
		t.Parallel()

		token := map[string]string{supportaccess.HeaderToken: forge(t, "member", "t-acme")}
		resp := decodeContext(t, do(h, http.MethodGet, "/me/context", "", token))
		assert.Equal(t, "member", resp.UserID)
		assert.Equal(t, "Member", resp.Role)
		assert.NotContains(t, resp.Permissions, rbac.PermSupportImpersonate)

		rec := do(h, http.MethodPost, "/support/tokens", mintBody("member", "t-acme"), token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestTenantRoleOverride(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	admin := map[string]string{userIDHeader: "admin"}

	resp := decodeContext(t, do(h, http.MethodGet, "/me/context", "", map[string]string{userIDHeader: "admin", "X-Tenant-ID": "t-acme"}))
	assert.Equal(t, rbac.PlatformAdminRole, resp.Role)
	assert.Equal(t, rbac.SourcePlatform, resp.RoleSource)

	rec := do(h, http.MethodPut, "/tenants/t-acme/overrides/admin", `{"role":"Member"}`, admin)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	resp = decodeContext(t, do(h, http.MethodGet, "/me/context", "", map[string]string{userIDHeader: "admin", "X-Tenant-ID": "t-acme"}))
	assert.Equal(t, "Member", resp.Role)
	assert.Equal(t, rbac.SourceTenant, resp.RoleSource)

	// Outside that tenant the platform role still applies.
	resp = decodeContext(t, do(h, http.MethodGet, "/me/context", "", admin))
	assert.Equal(t, rbac.PlatformAdminRole, resp.Role)

	t.Run("tenant users cannot be overridden", func(t *testing.T) {
		rec := do(h, http.MethodPut, "/tenants/t-acme/overrides/member", `{"role":"Member"}`, admin)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		rec := do(h, http.MethodPut, "/tenants/t-acme/overrides/admin", `{"role":"Nope"}`, admin)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("member cannot manage overrides", func(t *testing.T) {
		rec := do(h, http.MethodDelete, "/tenants/t-acme/overrides/admin", "", map[string]string{userIDHeader: "member"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("remove", func(t *testing.T) {
		rec := do(h, http.MethodDelete, "/tenants/t-acme/overrides/admin", "", admin)
		require.Equal(t, http.StatusNoContent, rec.Code)

		resp := decodeContext(t, do(h, http.MethodGet, "/me/context", "", map[string]string{userIDHeader: "admin", "X-Tenant-ID": "t-acme"}))
		assert.Equal(t, rbac.PlatformAdminRole, resp.Role)
	})
}

