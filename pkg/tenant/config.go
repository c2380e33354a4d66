package tenant

import "time"

// Config describes how tenant signals are read and how the deployment operates.
type Config struct {
	BaseDomain            string        `env:"TENANT_BASE_DOMAIN"`
	Header                string        `env:"TENANT_HEADER" envDefault:"X-Tenant-ID"`
	QueryParam            string        `env:"TENANT_QUERY_PARAM" envDefault:"tenant_id"`
	Cookie                string        `env:"TENANT_COOKIE" envDefault:"tenant_id"`
	Mode                  Mode          `env:"TENANT_MODE" envDefault:"multi_tenant" validate:"oneof=multi_tenant organization_only"`
	DefaultOrganizationID string        `env:"TENANT_DEFAULT_ORGANIZATION_ID"`
	CacheTTL              time.Duration `env:"TENANT_CACHE_TTL" envDefault:"60s"`
	FailOpen              bool          `env:"TENANT_FAIL_OPEN" envDefault:"false"`
	ActiveOnly            bool          `env:"TENANT_ACTIVE_ONLY" envDefault:"true"`
	BindPrincipal         bool          `env:"TENANT_BIND_PRINCIPAL" envDefault:"false"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Header:     "X-Tenant-ID",
		QueryParam: "tenant_id",
		Cookie:     "tenant_id",
		Mode:       ModeMultiTenant,
		CacheTTL:   time.Minute,
		ActiveOnly: true,
	}
}
