package supportaccess

import (
	"net/http"
	"strings"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// HeaderToken is an alternative to "Authorization: Support <token>".
const HeaderToken = "X-Support-Token"

const authScheme = "Support "

// TokenFromRequest returns the support token carried by r, or "".
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); len(h) > len(authScheme) && strings.EqualFold(h[:len(authScheme)], authScheme) {
		return strings.TrimSpace(h[len(authScheme):])
	}
	return strings.TrimSpace(r.Header.Get(HeaderToken))
}

// Middleware verifies a support token when one is present. A valid token's
// grant is put on the context and its target tenant becomes the session
// claim for tenant resolution. Read-only grants may only use safe methods.
// Requests without a token pass through untouched.
func Middleware(s *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := s.Verify(r.Context(), token)
			if err != nil {
				http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
				return
			}
			if !res.Valid {
				http.Error(w, "Invalid support token: "+string(res.Code), http.StatusUnauthorized)
				return
			}

			grant := &Grant{Token: token, Payload: *res.Payload}
			if !grant.AllowsWrite() && !isSafeMethod(r.Method) {
				http.Error(w, "Support token is read-only", http.StatusForbidden)
				return
			}

			ctx := WithGrant(r.Context(), grant)
			if grant.Payload.TargetTenantID != "" {
				ctx = tenant.WithSessionClaim(ctx, grant.Payload.TargetTenantID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireGrant rejects requests without a verified support grant.
func RequireGrant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GrantFromContext(r.Context()) == nil {
			http.Error(w, "Support token required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
