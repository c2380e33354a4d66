// Package cache implements a TTL cache with get-or-compute semantics.
//
// Cache wraps a Store (process-local MemoryStore backed by
// hashicorp/golang-lru, or RedisStore shared across replicas) and collapses
// concurrent loads of the same key with singleflight. Loader failures are
// returned to every waiting caller and are never stored, so a failing
// backend cannot poison the cache.
//
//	roles := cache.New(cache.NewMemoryStore[*rbac.Role](1024), cache.WithName("roles"))
//	role, err := roles.GetOrCompute(ctx, "name:Member", 30*time.Second, func(ctx context.Context) (*rbac.Role, error) {
//	    return store.RoleByName(ctx, "Member")
//	})
package cache
