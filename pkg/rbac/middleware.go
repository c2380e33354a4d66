package rbac

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/tenantkit/pkg/identity"
	"github.com/dmitrymomot/tenantkit/pkg/lookup"
)

// ErrorHandler writes the response for a failed authorization.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler maps authorization errors to 401, 403 and 503.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, ErrInsufficientPermissions):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case lookup.IsUnavailable(err):
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Require lets the request through only when the principal on the context
// holds every listed permission in the resolved tenant.
func Require(a *Authorizer, permissions ...string) func(http.Handler) http.Handler {
	return RequireWith(a, DefaultErrorHandler, permissions...)
}

// RequireWith is Require with a custom error handler.
func RequireWith(a *Authorizer, onError ErrorHandler, permissions ...string) func(http.Handler) http.Handler {
	if onError == nil {
		onError = DefaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := identity.FromContext(r.Context())
			if err := a.RequireAll(r.Context(), p, permissions...); err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyOf lets the request through when at least one permission is held.
func RequireAnyOf(a *Authorizer, permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := identity.FromContext(r.Context())
			if err := a.RequireAny(r.Context(), p, permissions...); err != nil {
				DefaultErrorHandler(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
