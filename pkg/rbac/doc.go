// Package rbac decides what a principal may do inside a tenant.
//
// A principal holds one platform role. When the principal is platform-level
// (no tenant of its own) and that role is exactly "Platform Admin", a tenant
// role override for the (principal, tenant) pair supersedes the platform role
// while the principal works inside that tenant. Every other principal always
// uses its platform role and the override table is never consulted.
//
// Permissions are flat dot-separated strings matched against a role's
// patterns with package scopes: a literal, the universal "*", or a pattern
// with wildcards such as "billing.*". A role's stored permission list wins;
// roles stored without one fall back to the matching preset of the Catalog.
//
// Lookups are I/O. A missing role means no permissions, never an error; a
// failing store is returned as an error wrapping lookup.ErrStoreUnavailable so
// callers can fail the request instead of treating it as a denial.
//
//	az := rbac.NewAuthorizer(roleStore, overrideStore, rbac.WithCatalog(rbac.DefaultCatalog()))
//	if err := az.RequirePermission(ctx, principal, rbac.PermBillingRefund); err != nil {
//	    // rbac.ErrInsufficientPermissions, rbac.ErrUnauthenticated or a store failure
//	}
package rbac
