package rbac

import (
	"context"
	"slices"
	"sync"
)

// MemoryRoleStore is a RoleStore backed by maps. Returned roles are copies.
type MemoryRoleStore struct {
	mu     sync.RWMutex
	byID   map[string]Role
	byName map[string]string
}

// NewMemoryRoleStore creates a store seeded with roles.
func NewMemoryRoleStore(roles ...Role) *MemoryRoleStore {
	s := &MemoryRoleStore{
		byID:   make(map[string]Role, len(roles)),
		byName: make(map[string]string, len(roles)),
	}
	for _, r := range roles {
		s.Put(r)
	}
	return s
}

// Put inserts or replaces a role.
func (s *MemoryRoleStore) Put(r Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.byID[r.ID]; ok {
		delete(s.byName, old.Name)
	}
	r.Permissions = slices.Clone(r.Permissions)
	s.byID[r.ID] = r
	s.byName[r.Name] = r.ID
}

func (s *MemoryRoleStore) RoleByID(_ context.Context, id string) (*Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, ErrRoleNotFound
	}
	r.Permissions = slices.Clone(r.Permissions)
	return &r, nil
}

func (s *MemoryRoleStore) RoleByName(ctx context.Context, name string) (*Role, error) {
	s.mu.RLock()
	id, ok := s.byName[name]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrRoleNotFound
	}
	return s.RoleByID(ctx, id)
}

type overrideKey struct {
	userID   string
	tenantID string
}

// MemoryOverrideStore keeps overrides in a map keyed by (user, tenant).
// Writes to the same pair are last-write-wins.
type MemoryOverrideStore struct {
	mu        sync.RWMutex
	overrides map[overrideKey]string
}

// NewMemoryOverrideStore returns an empty override store.
func NewMemoryOverrideStore() *MemoryOverrideStore {
	return &MemoryOverrideStore{overrides: make(map[overrideKey]string)}
}

func (s *MemoryOverrideStore) Override(_ context.Context, userID, tenantID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.overrides[overrideKey{userID, tenantID}]
	if !ok {
		return "", ErrOverrideNotFound
	}
	return id, nil
}

func (s *MemoryOverrideStore) SetOverride(_ context.Context, userID, tenantID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[overrideKey{userID, tenantID}] = roleID
	return nil
}

func (s *MemoryOverrideStore) DeleteOverride(_ context.Context, userID, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, overrideKey{userID, tenantID})
	return nil
}
