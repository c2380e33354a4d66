// Package lookup classifies the outcome of a backing-store read.
//
// Stores in this module return plain (value, error) pairs. A lookup that
// finds nothing returns an error wrapping ErrNotFound; any other error is an
// upstream failure. Result turns that pair into an explicit three-way value so
// callers branch on "no row" and "store unreachable" separately instead of
// collapsing both into a nil.
//
//	res := lookup.Of(store.TenantBySubdomain(ctx, label))
//	switch res.Status {
//	case lookup.StatusFound:
//	    use(res.Value)
//	case lookup.StatusNotFound:
//	    // fall through to the next signal
//	case lookup.StatusStoreError:
//	    return res.Err
//	}
package lookup
