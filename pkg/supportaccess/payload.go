package supportaccess

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Fixed issuer and audience of every support-access token.
const (
	Issuer   = "tenantkit-support"
	Audience = "tenantkit-app"
)

// MinReasonLength is the shortest accepted reason, after trimming spaces.
const MinReasonLength = 10

// DefaultTTL is the token lifetime when none is given.
const DefaultTTL = 900 * time.Second

// Scope is the coarse capability a token grants.
type Scope string

const (
	ScopeReadOnly            Scope = "read_only"
	ScopeSupportWriteLimited Scope = "support_write_limited"
)

// Payload is the signed body of a support-access token. Field names are the
// wire contract.
type Payload struct {
	Issuer           string `json:"iss"`
	Audience         string `json:"aud"`
	IssuedAt         int64  `json:"iat"`
	ExpiresAt        int64  `json:"exp"`
	ActorStaffUserID string `json:"actor_staff_user_id" validate:"required"`
	TargetUserID     string `json:"target_user_id,omitempty"`
	TargetTenantID   string `json:"target_tenant_id,omitempty"`
	Scope            Scope  `json:"scope" validate:"required,oneof=read_only support_write_limited"`
	Reason           string `json:"reason" validate:"required,reason"`
	TicketID         string `json:"ticket_id,omitempty"`
}

// Expiry returns the expiry as time.Time.
func (p Payload) Expiry() time.Time { return time.Unix(p.ExpiresAt, 0) }

// AllowsWrite reports whether the scope permits limited writes.
func (p Payload) AllowsWrite() bool { return p.Scope == ScopeSupportWriteLimited }

// jwt.Claims

func (p Payload) GetExpirationTime() (*jwt.NumericDate, error) {
	if p.ExpiresAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(p.ExpiresAt, 0)), nil
}

func (p Payload) GetIssuedAt() (*jwt.NumericDate, error) {
	if p.IssuedAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(p.IssuedAt, 0)), nil
}

func (p Payload) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (p Payload) GetIssuer() (string, error)              { return p.Issuer, nil }
func (p Payload) GetSubject() (string, error)             { return p.ActorStaffUserID, nil }

func (p Payload) GetAudience() (jwt.ClaimStrings, error) {
	if p.Audience == "" {
		return nil, nil
	}
	return jwt.ClaimStrings{p.Audience}, nil
}
