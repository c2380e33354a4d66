// Package scopes matches permission strings against granted permission patterns.
//
// A pattern is one of:
//
//   - a literal permission, e.g. "users.read";
//   - the universal wildcard "*", which grants everything;
//   - a string containing wildcard characters, e.g. "billing.*", meaning the
//     namespace and everything under it.
//
// Patterns are compiled once into a sequence of literal and wildcard segments.
// Every "*" in a pattern expands to "match anything", and the resulting
// expression is anchored to the whole permission string. A literal-equality
// fast path is checked before the compiled expression.
//
// # Usage
//
//	set := scopes.NewSet([]string{"billing.*", "users.read"})
//	set.Has("billing.invoices.read") // true
//	set.Has("users.write")           // false
//
// Permission lists are stored as space-separated strings; ParseScopes and
// JoinScopes convert between the two forms.
package scopes
