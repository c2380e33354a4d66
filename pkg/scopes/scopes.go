package scopes

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode"
)

const (
	// ScopeSeparator separates scopes in their stored string form.
	ScopeSeparator = " "

	// ScopeWildcard matches everything when used alone and any non-empty run
	// of characters when embedded in a pattern.
	ScopeWildcard = "*"

	// ScopeDelimiter separates namespace parts (e.g. "billing.read").
	ScopeDelimiter = "."
)

// Pattern is a compiled permission pattern.
type Pattern struct {
	raw       string
	universal bool
	wildcards int
	re        *regexp.Regexp
}

// compiled caches patterns by their raw form. Patterns come from a small seeded
// catalog so the cache stays bounded in practice.
var compiled sync.Map

// Compile builds a matcher for pattern. Every wildcard occurrence is expanded
// and must match at least one character, so "billing.*" does not grant
// "billing.".
func Compile(pattern string) *Pattern {
	if p, ok := compiled.Load(pattern); ok {
		return p.(*Pattern)
	}

	p := &Pattern{
		raw:       pattern,
		universal: pattern == ScopeWildcard,
		wildcards: strings.Count(pattern, ScopeWildcard),
	}
	if p.wildcards > 0 && !p.universal {
		segments := strings.Split(pattern, ScopeWildcard)
		for i := range segments {
			segments[i] = regexp.QuoteMeta(segments[i])
		}
		p.re = regexp.MustCompile("^" + strings.Join(segments, ".+") + "$")
	}

	actual, _ := compiled.LoadOrStore(pattern, p)
	return actual.(*Pattern)
}

// String returns the raw pattern.
func (p *Pattern) String() string { return p.raw }

// Wildcards returns how many wildcard characters the pattern contains.
func (p *Pattern) Wildcards() int { return p.wildcards }

// Match reports whether scope is granted by the pattern.
// An empty scope is never granted.
func (p *Pattern) Match(scope string) bool {
	if scope == "" {
		return false
	}
	if scope == p.raw || p.universal {
		return true
	}
	if p.re == nil {
		return false
	}
	return p.re.MatchString(scope)
}

// ScopeMatches reports whether scope is granted by pattern.
//
//   - "read" matches "read"
//   - "*" matches any scope
//   - "admin.*" matches any scope starting with "admin."
func ScopeMatches(scope, pattern string) bool {
	return Compile(pattern).Match(scope)
}

// HasScope reports whether any pattern in scopes grants scope.
func HasScope(scopes []string, scope string) bool {
	for _, s := range scopes {
		if ScopeMatches(scope, s) {
			return true
		}
	}
	return false
}

// HasAnyScopes reports whether at least one required scope is granted.
// An empty required list is always satisfied.
func HasAnyScopes(scopes, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, req := range required {
		if HasScope(scopes, req) {
			return true
		}
	}
	return false
}

// HasAllScopes reports whether every required scope is granted.
// An empty required list is always satisfied.
func HasAllScopes(scopes, required []string) bool {
	for _, req := range required {
		if !HasScope(scopes, req) {
			return false
		}
	}
	return true
}

// WildcardCount returns the number of wildcard characters in pattern.
func WildcardCount(pattern string) int {
	return strings.Count(pattern, ScopeWildcard)
}

// Validate checks that scope is non-empty and free of whitespace.
func Validate(scope string) error {
	if scope == "" || strings.IndexFunc(scope, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	return nil
}

// ParseScopes splits a space-separated list, dropping empty entries.
// Returns nil for empty input.
func ParseScopes(scopesStr string) []string {
	fields := strings.Fields(scopesStr)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// JoinScopes is the inverse of ParseScopes.
func JoinScopes(scopes []string) string {
	return strings.Join(scopes, ScopeSeparator)
}

// NormalizeScopes removes duplicates and sorts. Returns nil for empty input.
func NormalizeScopes(scopes []string) []string {
	if len(scopes) == 0 {
		return nil
	}
	out := slices.Clone(scopes)
	slices.Sort(out)
	return slices.Compact(out)
}
