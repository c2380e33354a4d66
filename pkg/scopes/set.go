package scopes

// Set is an immutable, precompiled collection of permission patterns.
// It is safe for concurrent use.
type Set struct {
	literals  map[string]struct{}
	patterns  []*Pattern
	universal bool
	raw       []string
}

// NewSet compiles patterns once for repeated matching.
func NewSet(patterns []string) *Set {
	s := &Set{
		literals: make(map[string]struct{}, len(patterns)),
		raw:      NormalizeScopes(patterns),
	}
	for _, raw := range s.raw {
		p := Compile(raw)
		switch {
		case p.universal:
			s.universal = true
		case p.wildcards == 0:
			s.literals[raw] = struct{}{}
		default:
			s.patterns = append(s.patterns, p)
		}
	}
	return s
}

// Has reports whether any pattern in the set grants scope.
func (s *Set) Has(scope string) bool {
	if s == nil || scope == "" {
		return false
	}
	if s.universal {
		return true
	}
	if _, ok := s.literals[scope]; ok {
		return true
	}
	for _, p := range s.patterns {
		if p.Match(scope) {
			return true
		}
	}
	return false
}

// HasAny reports whether at least one scope is granted.
func (s *Set) HasAny(scopes ...string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, scope := range scopes {
		if s.Has(scope) {
			return true
		}
	}
	return false
}

// HasAll reports whether every scope is granted.
func (s *Set) HasAll(scopes ...string) bool {
	for _, scope := range scopes {
		if !s.Has(scope) {
			return false
		}
	}
	return true
}

// Patterns returns the normalized raw patterns.
func (s *Set) Patterns() []string {
	if s == nil {
		return nil
	}
	return s.raw
}

// Len returns the number of distinct patterns.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.raw)
}
