package scopes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tenantkit/pkg/scopes"
)

func TestScopeMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		scope   string
		pattern string
		want    bool
	}{
		{"exact match", "billing.read", "billing.read", true},
		{"exact mismatch", "billing.write", "billing.read", false},
		{"universal wildcard", "anything.at.all", "*", true},
		{"namespace wildcard", "billing.read", "billing.*", true},
		{"namespace wildcard nested", "billing.invoices.read", "billing.*", true},
		{"namespace wildcard other namespace", "users.read", "billing.*", false},
		{"namespace wildcard requires delimiter", "billingx.read", "billing.*", false},
		{"namespace wildcard does not match bare namespace", "billing", "billing.*", false},
		{"namespace wildcard needs something after the delimiter", "billing.", "billing.*", false},
		{"inner wildcard needs a segment", "users..read", "users.*.read", false},
		{"regex metacharacters are literal", "billingXread", "billing.read", false},
		{"regex metacharacters in wildcard pattern", "a+b.read", "a+b.*", true},
		{"two wildcards both expand", "users.42.read", "users.*.read", true},
		{"two wildcards both expand leading and trailing", "x.users.42.read.all", "*.users.*", true},
		{"two wildcards mismatch", "users.42.write", "users.*.read", false},
		{"empty scope never matches", "", "*", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, scopes.ScopeMatches(tt.scope, tt.pattern))
		})
	}
}

func TestCompile(t *testing.T) {
	t.Parallel()

	p := scopes.Compile("users.*.read.*")
	assert.Equal(t, "users.*.read.*", p.String())
	assert.Equal(t, 2, p.Wildcards())
	assert.True(t, p.Match("users.1.read.profile"))

	assert.Same(t, p, scopes.Compile("users.*.read.*"), "compiled patterns are cached")
	assert.Equal(t, 0, scopes.Compile("users.read").Wildcards())
	assert.Equal(t, 1, scopes.WildcardCount("billing.*"))
}

func TestHasScope(t *testing.T) {
	t.Parallel()

	granted := []string{"billing.*", "users.read"}

	assert.True(t, scopes.HasScope(granted, "billing.write"))
	assert.True(t, scopes.HasScope(granted, "users.read"))
	assert.False(t, scopes.HasScope(granted, "users.write"))
	assert.False(t, scopes.HasScope(nil, "users.read"))
}

func TestHasAnyAndAllScopes(t *testing.T) {
	t.Parallel()

	granted := []string{"content.*", "users.read"}

	assert.True(t, scopes.HasAnyScopes(granted, []string{"admin.users", "content.write"}))
	assert.False(t, scopes.HasAnyScopes(granted, []string{"admin.users", "users.write"}))
	assert.True(t, scopes.HasAnyScopes(granted, nil))

	assert.True(t, scopes.HasAllScopes(granted, []string{"content.read", "users.read"}))
	assert.False(t, scopes.HasAllScopes(granted, []string{"content.read", "users.write"}))
	assert.True(t, scopes.HasAllScopes(granted, nil))
}

func TestSet(t *testing.T) {
	t.Parallel()

	t.Run("literal wildcard and universal", func(t *testing.T) {
		t.Parallel()

		set := scopes.NewSet([]string{"users.read", "billing.*", "users.read"})
		assert.Equal(t, 2, set.Len())
		assert.Equal(t, []string{"billing.*", "users.read"}, set.Patterns())

		assert.True(t, set.Has("users.read"))
		assert.True(t, set.Has("billing.refunds.create"))
		assert.False(t, set.Has("users.delete"))
		assert.False(t, set.Has(""))

		all := scopes.NewSet([]string{"*"})
		assert.True(t, all.Has("tenants.delete"))
	})

	t.Run("any and all", func(t *testing.T) {
		t.Parallel()

		set := scopes.NewSet([]string{"listings.*"})
		assert.True(t, set.HasAny("users.read", "listings.publish"))
		assert.False(t, set.HasAny("users.read"))
		assert.True(t, set.HasAny())
		assert.True(t, set.HasAll("listings.read", "listings.write"))
		assert.False(t, set.HasAll("listings.read", "users.read"))
	})

	t.Run("nil set grants nothing", func(t *testing.T) {
		t.Parallel()

		var set *scopes.Set
		assert.False(t, set.Has("users.read"))
		assert.Equal(t, 0, set.Len())
		assert.Nil(t, set.Patterns())
	})
}

func TestParseAndJoinScopes(t *testing.T) {
	t.Parallel()

	assert.Nil(t, scopes.ParseScopes(""))
	assert.Nil(t, scopes.ParseScopes("   "))
	assert.Equal(t, []string{"read", "write"}, scopes.ParseScopes("  read   write  "))
	assert.Equal(t, []string{"*", "admin.read", "user.*"}, scopes.ParseScopes("* admin.read user.*"))

	assert.Equal(t, "read write admin.*", scopes.JoinScopes([]string{"read", "write", "admin.*"}))
	assert.Equal(t, "", scopes.JoinScopes(nil))
}

func TestNormalizeScopes(t *testing.T) {
	t.Parallel()

	assert.Nil(t, scopes.NormalizeScopes(nil))
	assert.Equal(t,
		[]string{"admin.*", "read", "write"},
		scopes.NormalizeScopes([]string{"write", "read", "read", "admin.*"}),
	)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, scopes.Validate("billing.read"))
	assert.ErrorIs(t, scopes.Validate(""), scopes.ErrInvalidScope)
	assert.ErrorIs(t, scopes.Validate("billing read"), scopes.ErrInvalidScope)
}
