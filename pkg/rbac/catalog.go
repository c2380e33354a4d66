package rbac

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/tenantkit/pkg/scopes"
)

// MaxInheritanceDepth bounds preset inheritance chains.
const MaxInheritanceDepth = 10

// Permissions grouped by category.
const (
	PermTenantsRead        = "tenants.read"
	PermTenantsCreate      = "tenants.create"
	PermTenantsUpdate      = "tenants.update"
	PermTenantsSuspend     = "tenants.suspend"
	PermTenantsRolesManage = "tenants.roles.manage"

	PermUsersRead   = "users.read"
	PermUsersInvite = "users.invite"
	PermUsersUpdate = "users.update"
	PermUsersDelete = "users.delete"

	PermBillingRead   = "billing.read"
	PermBillingWrite  = "billing.write"
	PermBillingRefund = "billing.refund"

	PermListingsRead    = "listings.read"
	PermListingsCreate  = "listings.create"
	PermListingsUpdate  = "listings.update"
	PermListingsPublish = "listings.publish"
	PermListingsDelete  = "listings.delete"

	PermContentRead  = "content.read"
	PermContentWrite = "content.write"

	PermSettingsRead  = "settings.read"
	PermSettingsWrite = "settings.write"

	PermAnalyticsRead = "analytics.read"

	PermSupportRead        = "support.read"
	PermSupportImpersonate = "support.impersonate"
)

// Preset names shipped with DefaultCatalog.
const (
	PresetPlatformAdmin = PlatformAdminRole
	PresetSupportAgent  = "Support Agent"
	PresetTenantAdmin   = "Tenant Admin"
	PresetMember        = "Member"
	PresetGuest         = "Guest"
)

// Preset is a named permission bundle. Inherits pulls in other presets.
type Preset struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Permissions []string `yaml:"permissions"`
	Inherits    []string `yaml:"inherits,omitempty"`
}

// Catalog is the static permission table and its role presets. It is
// immutable once built and safe for concurrent use.
type Catalog struct {
	categories map[string][]string
	presets    map[string]*scopes.Set
	order      []string
	warnings   []string
}

type catalogFile struct {
	Categories map[string][]string `yaml:"categories"`
	Roles      []Preset            `yaml:"roles"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultCategories(), defaultPresets())
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCatalog reads a YAML catalog:
//
//	categories:
//	  billing: [billing.read, billing.write]
//	roles:
//	  - name: Member
//	    inherits: [Guest]
//	    permissions: [billing.read]
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}
	return NewCatalog(f.Categories, f.Roles)
}

// NewCatalog validates presets, resolves inheritance and precompiles every
// preset's permission set.
func NewCatalog(categories map[string][]string, presets []Preset) (*Catalog, error) {
	byName := make(map[string]Preset, len(presets))
	for _, p := range presets {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: preset without name", ErrInvalidCatalog)
		}
		if _, dup := byName[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate preset %q", ErrInvalidCatalog, p.Name)
		}
		for _, perm := range p.Permissions {
			if err := scopes.Validate(perm); err != nil {
				return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("preset %q: %w", p.Name, err))
			}
		}
		byName[p.Name] = p
	}

	c := &Catalog{
		categories: make(map[string][]string, len(categories)),
		presets:    make(map[string]*scopes.Set, len(byName)),
	}
	for cat, perms := range categories {
		c.categories[cat] = scopes.NormalizeScopes(perms)
	}

	depths := make(map[string]int, len(byName))
	for _, p := range presets {
		perms, depth, err := flatten(p.Name, byName, nil)
		if err != nil {
			return nil, err
		}
		depths[p.Name] = depth
		set := scopes.NewSet(perms)
		c.presets[p.Name] = set
		for _, pattern := range set.Patterns() {
			if scopes.WildcardCount(pattern) > 1 {
				c.warnings = append(c.warnings,
					fmt.Sprintf("preset %q: pattern %q has more than one wildcard", p.Name, pattern))
			}
		}
	}

	c.order = slices.Collect(maps.Keys(byName))
	slices.SortFunc(c.order, func(a, b string) int {
		return cmp.Or(cmp.Compare(depths[a], depths[b]), strings.Compare(a, b))
	})
	slices.Sort(c.warnings)
	return c, nil
}

// flatten collects a preset's own and inherited permissions and returns its
// inheritance depth. path holds the presets currently being expanded.
func flatten(name string, presets map[string]Preset, path []string) ([]string, int, error) {
	if slices.Contains(path, name) {
		return nil, 0, errors.Join(ErrCircularInheritance,
			fmt.Errorf("circular inheritance: %v -> %s", path, name))
	}
	if len(path) > MaxInheritanceDepth {
		return nil, 0, errors.Join(ErrCircularInheritance,
			fmt.Errorf("inheritance depth exceeds %d", MaxInheritanceDepth))
	}
	p, ok := presets[name]
	if !ok {
		return nil, 0, fmt.Errorf("%w: unknown inherited preset %q", ErrInvalidCatalog, name)
	}

	out := slices.Clone(p.Permissions)
	depth := 0
	for _, parent := range p.Inherits {
		inherited, d, err := flatten(parent, presets, append(slices.Clone(path), name))
		if err != nil {
			return nil, 0, err
		}
		out = append(out, inherited...)
		depth = max(depth, d+1)
	}
	return out, depth, nil
}

// Preset returns the compiled permission set of a preset.
func (c *Catalog) Preset(name string) (*scopes.Set, bool) {
	s, ok := c.presets[name]
	return s, ok
}

// PresetPermissions returns the flattened patterns of a preset.
func (c *Catalog) PresetPermissions(name string) []string {
	s, ok := c.presets[name]
	if !ok {
		return nil
	}
	return slices.Clone(s.Patterns())
}

// Roles returns preset names, base presets first.
func (c *Catalog) Roles() []string {
	return slices.Clone(c.order)
}

// Category returns the permissions of one category.
func (c *Catalog) Category(name string) []string {
	return slices.Clone(c.categories[name])
}

// Categories returns the category names, sorted.
func (c *Catalog) Categories() []string {
	return slices.Sorted(maps.Keys(c.categories))
}

// Permissions returns every permission listed in any category, sorted.
func (c *Catalog) Permissions() []string {
	var all []string
	for _, perms := range c.categories {
		all = append(all, perms...)
	}
	return scopes.NormalizeScopes(all)
}

// Warnings lists patterns worth a second look, such as multi-wildcard ones.
func (c *Catalog) Warnings() []string {
	return slices.Clone(c.warnings)
}

func defaultCategories() map[string][]string {
	return map[string][]string{
		"tenants":   {PermTenantsRead, PermTenantsCreate, PermTenantsUpdate, PermTenantsSuspend, PermTenantsRolesManage},
		"users":     {PermUsersRead, PermUsersInvite, PermUsersUpdate, PermUsersDelete},
		"billing":   {PermBillingRead, PermBillingWrite, PermBillingRefund},
		"listings":  {PermListingsRead, PermListingsCreate, PermListingsUpdate, PermListingsPublish, PermListingsDelete},
		"content":   {PermContentRead, PermContentWrite},
		"settings":  {PermSettingsRead, PermSettingsWrite},
		"analytics": {PermAnalyticsRead},
		"support":   {PermSupportRead, PermSupportImpersonate},
	}
}

func defaultPresets() []Preset {
	return []Preset{
		{
			Name:        PresetPlatformAdmin,
			Description: "Platform operator with every permission.",
			Permissions: []string{scopes.ScopeWildcard},
		},
		{
			Name:        PresetSupportAgent,
			Description: "Platform support staff.",
			Permissions: []string{PermSupportRead, PermSupportImpersonate, PermTenantsRead, PermUsersRead},
		},
		{
			Name:        PresetTenantAdmin,
			Description: "Administers one tenant.",
			Inherits:    []string{PresetMember},
			Permissions: []string{
				PermTenantsUpdate,
				"users.*",
				"billing.*",
				"listings.*",
				"content.*",
				"settings.*",
			},
		},
		{
			Name:        PresetMember,
			Description: "Regular tenant user.",
			Inherits:    []string{PresetGuest},
			Permissions: []string{
				PermTenantsRead,
				PermUsersRead,
				PermListingsCreate,
				PermListingsUpdate,
				PermSettingsRead,
				PermAnalyticsRead,
			},
		},
		{
			Name:        PresetGuest,
			Description: "Unauthenticated or public access.",
			Permissions: []string{PermListingsRead, PermContentRead},
		},
	}
}
