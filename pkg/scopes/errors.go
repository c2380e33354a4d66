package scopes

import "errors"

// ErrInvalidScope is returned when a scope is empty or contains whitespace.
var ErrInvalidScope = errors.New("scopes: invalid scope format")
