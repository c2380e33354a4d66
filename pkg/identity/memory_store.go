package identity

import (
	"context"
	"sync"
)

// MemoryStore is a Store backed by a map. Useful for tests and single-node setups.
type MemoryStore struct {
	mu         sync.RWMutex
	principals map[string]Principal
}

// NewMemoryStore creates a store seeded with the given principals.
func NewMemoryStore(principals ...Principal) *MemoryStore {
	s := &MemoryStore{principals: make(map[string]Principal, len(principals))}
	for _, p := range principals {
		s.principals[p.ID] = p
	}
	return s
}

// Put inserts or replaces a principal.
func (s *MemoryStore) Put(p Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principals[p.ID] = p
}

func (s *MemoryStore) Principal(ctx context.Context, id string) (*Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.principals[id]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	return &p, nil
}
