package tenant_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func newMiddleware(t *testing.T, p tenant.Provider, mode tenant.Mode) func(http.Handler) http.Handler {
	t.Helper()
	cr, err := tenant.NewContextResolver(tenant.NewResolver(p), mode, "org-default")
	require.NoError(t, err)
	cfg := tenant.DefaultConfig()
	cfg.BaseDomain = "example.com"
	return tenant.Middleware(cr, cfg)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("stamps headers and context", func(t *testing.T) {
		t.Parallel()

		var (
			seen      tenant.Resolved
			record    *tenant.Tenant
			reqHeader string
		)
		h := newMiddleware(t, seededProvider(), tenant.ModeMultiTenant)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = tenant.ResolvedFromContext(r.Context())
			record, _ = tenant.FromContext(r.Context())
			reqHeader = r.Header.Get(tenant.HeaderTenantID)
		}))

		req := httptest.NewRequest(http.MethodGet, "http://acme.example.com/", nil)
		req.Header.Set(tenant.HeaderOrganizationID, "spoofed")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "t-acme", seen.TenantID)
		require.NotNil(t, record)
		assert.Equal(t, "Acme", record.Name)
		assert.Equal(t, "t-acme", reqHeader)
		assert.Equal(t, "t-acme", rec.Header().Get(tenant.HeaderTenantID))
		assert.Equal(t, "multi_tenant", rec.Header().Get(tenant.HeaderMode))
		assert.Empty(t, rec.Header().Get(tenant.HeaderOrganizationID))
	})

	t.Run("organization only mode", func(t *testing.T) {
		t.Parallel()

		h := newMiddleware(t, seededProvider(), tenant.ModeOrganizationOnly)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://localhost/", nil))

		assert.Equal(t, "org-default", rec.Header().Get(tenant.HeaderOrganizationID))
		assert.Equal(t, "organization_only", rec.Header().Get(tenant.HeaderMode))
	})

	t.Run("store failure is 503", func(t *testing.T) {
		t.Parallel()

		called := false
		h := newMiddleware(t, failingProvider(), tenant.ModeMultiTenant)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			called = true
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://acme.example.com/", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := newMiddleware(t, seededProvider(), tenant.ModeMultiTenant)(tenant.RequireTenant(nil)(ok))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://localhost/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://localhost/?tenant_id=acme", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
