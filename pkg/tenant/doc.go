// Package tenant resolves which tenant a request belongs to.
//
// Resolution runs in a fixed order and the first hit wins:
//
//  1. Subdomain: the host's leading label is looked up through a Provider,
//     optionally via a TTL cache. Unknown or malformed labels are a miss.
//  2. Explicit signal: query parameter, header, cookie or session claim, in
//     that order. A value is accepted only when it is a UUID or a DNS label.
//  3. Principal: the authenticated principal's stored tenant_id. Platform-level
//     principals have none and the request stays tenant-less.
//
// Request inputs are normalized once by ExtractSignals into a Signals value, so
// the Resolver never probes *http.Request directly.
//
// Misses are never errors. Store failures are: by default they fail the
// resolution with an error wrapping lookup.ErrStoreUnavailable. WithFailOpen
// downgrades them to misses.
//
// ContextResolver adds the operating mode on top of Resolver and Middleware
// publishes the outcome on the request context and as X-Tenant-ID,
// X-Organization-ID and X-Tenant-Mode headers.
package tenant
