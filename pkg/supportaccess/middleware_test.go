package supportaccess_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/supportaccess"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	svc := supportaccess.NewService(supportaccess.StaticSecret(testSecret),
		supportaccess.WithClock(func() time.Time { return testNow }))

	issue := func(t *testing.T, scope supportaccess.Scope) string {
		t.Helper()
		req := mintRequest()
		req.Scope = scope
		issued, err := svc.Mint(context.Background(), req)
		require.NoError(t, err)
		return issued.Token
	}

	var (
		grant *supportaccess.Grant
		claim string
	)
	handler := supportaccess.Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		grant = supportaccess.GrantFromContext(r.Context())
		claim = tenant.SessionClaimFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(method string, header, value string) *httptest.ResponseRecorder {
		grant, claim = nil, ""
		req := httptest.NewRequest(method, "/", nil)
		if header != "" {
			req.Header.Set(header, value)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	// Subtests share handler state and run sequentially.

	t.Run("no token passes through", func(t *testing.T) {
		rec := serve(http.MethodGet, "", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Nil(t, grant)
	})

	t.Run("authorization header", func(t *testing.T) {
		rec := serve(http.MethodGet, "Authorization", "Support "+issue(t, supportaccess.ScopeReadOnly))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, grant)
		assert.Equal(t, "staff-1", grant.Payload.ActorStaffUserID)
		assert.Equal(t, "acme", claim)
	})

	t.Run("token header", func(t *testing.T) {
		rec := serve(http.MethodPost, supportaccess.HeaderToken, issue(t, supportaccess.ScopeSupportWriteLimited))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, grant)
		assert.True(t, grant.AllowsWrite())
	})

	t.Run("read only rejects writes", func(t *testing.T) {
		rec := serve(http.MethodPost, supportaccess.HeaderToken, issue(t, supportaccess.ScopeReadOnly))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Nil(t, grant)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := serve(http.MethodGet, supportaccess.HeaderToken, "garbage")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_format")
	})
}

func TestRequireGrant(t *testing.T) {
	t.Parallel()

	h := supportaccess.RequireGrant(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(supportaccess.WithGrant(req.Context(), &supportaccess.Grant{}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
