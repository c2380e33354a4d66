package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/dmitrymomot/tenantkit/pkg/identity"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/lookup"
	"github.com/dmitrymomot/tenantkit/pkg/rbac"
	"github.com/dmitrymomot/tenantkit/pkg/supportaccess"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// userIDHeader carries the authenticated user id set by the auth gateway in
// front of this service.
const userIDHeader = "X-User-ID"

var (
	errImpersonatePlatformUser = errors.New("tenantd.impersonate_platform_user")
	errImpersonateOtherTenant  = errors.New("tenantd.impersonate_other_tenant")
	errImpersonateSupportUser  = errors.New("tenantd.impersonate_support_user")
)

// impersonable reports whether a support grant may act as target inside
// tenantID. Only tenant users without support rights can be impersonated,
// and only inside their own tenant.
func impersonable(ctx context.Context, a *rbac.Authorizer, target *identity.Principal, tenantID string) error {
	if target.IsPlatformLevel() {
		return errImpersonatePlatformUser
	}
	if tenantID != "" && tenantID != target.TenantID {
		return errImpersonateOtherTenant
	}
	eff, err := a.EffectiveRole(ctx, target, target.TenantID)
	if err != nil {
		return err
	}
	if eff.Can(rbac.PermSupportImpersonate) {
		return errImpersonateSupportUser
	}
	return nil
}

func isImpersonationError(err error) bool {
	return errors.Is(err, errImpersonatePlatformUser) ||
		errors.Is(err, errImpersonateOtherTenant) ||
		errors.Is(err, errImpersonateSupportUser)
}

// authenticate loads the principal named by X-User-ID, or the target user of
// a verified support grant when the header is absent. Anonymous requests
// continue without a principal.
func authenticate(store identity.Store, a *rbac.Authorizer, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(userIDHeader))
			var grant *supportaccess.Grant
			if id == "" {
				if grant = supportaccess.GrantFromContext(r.Context()); grant != nil {
					id = grant.Payload.TargetUserID
				}
			}
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}

			res := lookup.Of(store.Principal(r.Context(), id))
			switch res.Status {
			case lookup.StatusStoreError:
				log.ErrorContext(r.Context(), "principal lookup failed", logger.UserID(id), logger.Error(res.Err))
				writeError(w, http.StatusServiceUnavailable, "service unavailable")
				return
			case lookup.StatusNotFound:
				writeError(w, http.StatusUnauthorized, "unknown user")
				return
			}

			if grant != nil {
				err := impersonable(r.Context(), a, res.Value, grant.Payload.TargetTenantID)
				switch {
				case isImpersonationError(err):
					log.WarnContext(r.Context(), "support token rejected",
						slog.String("actor", grant.Payload.ActorStaffUserID), logger.UserID(id), logger.Error(err))
					writeError(w, http.StatusForbidden, "support token cannot act as this user")
					return
				case err != nil:
					rbac.DefaultErrorHandler(w, r, err)
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(identity.WithPrincipal(r.Context(), res.Value)))
		})
	}
}

type supportInfo struct {
	Actor     string              `json:"actor_staff_user_id"`
	Scope     supportaccess.Scope `json:"scope"`
	TicketID  string              `json:"ticket_id,omitempty"`
	ExpiresAt time.Time           `json:"expires_at"`
}

type contextResponse struct {
	UserID         string          `json:"user_id"`
	TenantID       string          `json:"tenant_id,omitempty"`
	OrganizationID string          `json:"organization_id,omitempty"`
	Mode           tenant.Mode     `json:"mode"`
	Source         tenant.Source   `json:"source"`
	Role           string          `json:"role,omitempty"`
	RoleSource     rbac.RoleSource `json:"role_source"`
	Permissions    []string        `json:"permissions"`
	Support        *supportInfo    `json:"support,omitempty"`
}

func meContext(a *rbac.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := identity.FromContext(r.Context())
		if p == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		resolved, _ := tenant.ResolvedFromContext(r.Context())

		eff, err := a.EffectiveRole(r.Context(), p, resolved.TenantID)
		if err != nil {
			rbac.DefaultErrorHandler(w, r, err)
			return
		}

		resp := contextResponse{
			UserID:         p.ID,
			TenantID:       resolved.TenantID,
			OrganizationID: resolved.OrganizationID,
			Mode:           resolved.Mode,
			Source:         resolved.Source,
			Role:           eff.Name(),
			RoleSource:     eff.Source,
			Permissions:    eff.Permissions(),
		}
		if resp.Permissions == nil {
			resp.Permissions = []string{}
		}
		if g := supportaccess.GrantFromContext(r.Context()); g != nil {
			resp.Support = &supportInfo{
				Actor:     g.Payload.ActorStaffUserID,
				Scope:     g.Payload.Scope,
				TicketID:  g.Payload.TicketID,
				ExpiresAt: g.Payload.Expiry().UTC(),
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type mintRequest struct {
	TargetUserID   string              `json:"target_user_id"`
	TargetTenantID string              `json:"target_tenant_id"`
	Scope          supportaccess.Scope `json:"scope"`
	Reason         string              `json:"reason"`
	TicketID       string              `json:"ticket_id"`
	TTLSeconds     int64               `json:"ttl_seconds"`
}

func mintSupportToken(s *supportaccess.Service, principals identity.Store, a *rbac.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := identity.FromContext(r.Context())

		var req mintRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.TargetUserID != "" {
			target := lookup.Of(principals.Principal(r.Context(), req.TargetUserID))
			switch target.Status {
			case lookup.StatusStoreError:
				writeError(w, http.StatusServiceUnavailable, "service unavailable")
				return
			case lookup.StatusNotFound:
				writeError(w, http.StatusUnprocessableEntity, "unknown target user")
				return
			}
			err := impersonable(r.Context(), a, target.Value, req.TargetTenantID)
			switch {
			case isImpersonationError(err):
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			case err != nil:
				rbac.DefaultErrorHandler(w, r, err)
				return
			}
		}

		issued, err := s.Mint(r.Context(), supportaccess.MintRequest{
			Actor:          p.ID,
			TargetUserID:   req.TargetUserID,
			TargetTenantID: req.TargetTenantID,
			Scope:          req.Scope,
			Reason:         req.Reason,
			TicketID:       req.TicketID,
			TTL:            time.Duration(req.TTLSeconds) * time.Second,
		})
		switch {
		case errors.Is(err, supportaccess.ErrInvalidPayload), errors.Is(err, supportaccess.ErrInvalidTTL):
			writeError(w, http.StatusBadRequest, err.Error())
		case err != nil:
			writeError(w, http.StatusServiceUnavailable, "service unavailable")
		default:
			writeJSON(w, http.StatusCreated, issued)
		}
	}
}

type overrideRequest struct {
	Role string `json:"role"`
}

func setTenantRole(a *rbac.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req overrideRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Role == "" {
			writeError(w, http.StatusBadRequest, "role is required")
			return
		}

		err := a.SetTenantRole(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "tenantID"), req.Role)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, rbac.ErrOverrideNotAllowed):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, rbac.ErrRoleNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			rbac.DefaultErrorHandler(w, r, err)
		}
	}
}

func removeTenantRole(a *rbac.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := a.RemoveTenantRole(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "tenantID")); err != nil {
			rbac.DefaultErrorHandler(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
