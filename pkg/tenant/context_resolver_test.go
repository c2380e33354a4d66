package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	m, err := tenant.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, tenant.ModeMultiTenant, m)

	m, err = tenant.ParseMode("organization_only")
	require.NoError(t, err)
	assert.Equal(t, tenant.ModeOrganizationOnly, m)

	_, err = tenant.ParseMode("single")
	assert.ErrorIs(t, err, tenant.ErrInvalidMode)
}

func TestContextResolver(t *testing.T) {
	t.Parallel()

	base := tenant.NewResolver(seededProvider(), tenant.WithPrincipals(seededPrincipals()))
	ctx := context.Background()

	t.Run("multi tenant", func(t *testing.T) {
		t.Parallel()

		cr, err := tenant.NewContextResolver(base, tenant.ModeMultiTenant, "org-default")
		require.NoError(t, err)

		got, err := cr.Resolve(ctx, tenant.Signals{Subdomain: "acme"})
		require.NoError(t, err)
		assert.Equal(t, "t-acme", got.TenantID)
		assert.Empty(t, got.OrganizationID)
		assert.Equal(t, tenant.ModeMultiTenant, got.Mode)
		assert.Equal(t, tenant.SourceSubdomain, got.Source)
		assert.True(t, got.HasTenant())

		none, err := cr.Resolve(ctx, tenant.Signals{})
		require.NoError(t, err)
		assert.False(t, none.HasTenant())
		assert.Equal(t, tenant.SourceNone, none.Source)
	})

	t.Run("organization only", func(t *testing.T) {
		t.Parallel()

		cr, err := tenant.NewContextResolver(base, tenant.ModeOrganizationOnly, "org-default")
		require.NoError(t, err)
		assert.Equal(t, tenant.ModeOrganizationOnly, cr.Mode())

		got, err := cr.Resolve(ctx, tenant.Signals{Header: "org-7"})
		require.NoError(t, err)
		assert.Equal(t, "org-7", got.OrganizationID)
		assert.Equal(t, "org-7", got.TenantID)
		assert.Equal(t, tenant.SourceHeader, got.Source)

		fallback, err := cr.Resolve(ctx, tenant.Signals{})
		require.NoError(t, err)
		assert.Equal(t, "org-default", fallback.OrganizationID)
		assert.Equal(t, tenant.SourceDefault, fallback.Source)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		t.Parallel()

		cr, err := tenant.NewContextResolver(tenant.NewResolver(failingProvider()), "", "")
		require.NoError(t, err)

		got, err := cr.Resolve(ctx, tenant.Signals{Subdomain: "acme"})
		require.Error(t, err)
		assert.Equal(t, tenant.ModeMultiTenant, got.Mode)
	})

	t.Run("invalid mode", func(t *testing.T) {
		t.Parallel()

		_, err := tenant.NewContextResolver(base, "bogus", "")
		assert.ErrorIs(t, err, tenant.ErrInvalidMode)
	})
}
