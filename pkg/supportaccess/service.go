package supportaccess

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// MintRequest describes a token to issue. Actor is the support operator.
type MintRequest struct {
	Actor          string        `json:"actor_staff_user_id"`
	TargetUserID   string        `json:"target_user_id,omitempty"`
	TargetTenantID string        `json:"target_tenant_id,omitempty"`
	Scope          Scope         `json:"scope"`
	Reason         string        `json:"reason"`
	TicketID       string        `json:"ticket_id,omitempty"`
	TTL            time.Duration `json:"-"`
}

// Issued is a freshly minted token and its signed payload.
type Issued struct {
	Token   string  `json:"token"`
	Payload Payload `json:"payload"`
}

// Service mints and verifies tokens with a secret from a SecretSource and
// writes an audit line for every mint and verification.
type Service struct {
	secrets SecretSource
	ttl     time.Duration
	maxTTL  time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTTL sets the default lifetime.
func WithTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxTTL caps the lifetime a caller may request.
func WithMaxTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.maxTTL = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger that receives the mint and verify audit trail.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service.
func NewService(secrets SecretSource, opts ...ServiceOption) *Service {
	s := &Service{
		secrets: secrets,
		ttl:     DefaultTTL,
		maxTTL:  time.Hour,
		now:     time.Now,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("supportaccess"))
	return s
}

// Mint validates req and issues a token.
func (s *Service) Mint(ctx context.Context, req MintRequest) (Issued, error) {
	ttl := req.TTL
	if ttl <= 0 {
		ttl = s.ttl
	}
	if ttl > s.maxTTL {
		return Issued{}, fmt.Errorf("%w: %s exceeds %s", ErrInvalidTTL, ttl, s.maxTTL)
	}

	secret, err := s.secrets.SigningSecret(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "support token secret unavailable", logger.Error(err))
		return Issued{}, err
	}

	token, p, err := Mint(Payload{
		ActorStaffUserID: req.Actor,
		TargetUserID:     req.TargetUserID,
		TargetTenantID:   req.TargetTenantID,
		Scope:            req.Scope,
		Reason:           req.Reason,
		TicketID:         req.TicketID,
	}, secret, ttl, s.now())
	if err != nil {
		s.logger.WarnContext(ctx, "support token mint rejected",
			slog.String("actor", req.Actor), logger.Error(err))
		return Issued{}, err
	}

	s.logger.InfoContext(ctx, "support token minted", auditAttrs(p)...)
	return Issued{Token: token, Payload: p}, nil
}

// Verify checks token. The error is non-nil only when the secret could not be
// read; token problems are reported in Result.
func (s *Service) Verify(ctx context.Context, token string) (Result, error) {
	secret, err := s.secrets.SigningSecret(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "support token secret unavailable", logger.Error(err))
		return Result{}, err
	}

	res := Verify(token, secret, s.now())
	if !res.Valid {
		s.logger.WarnContext(ctx, "support token rejected", slog.String("code", string(res.Code)))
		return res, nil
	}
	s.logger.InfoContext(ctx, "support token accepted", auditAttrs(*res.Payload)...)
	return res, nil
}

func auditAttrs(p Payload) []any {
	return []any{
		slog.String("actor", p.ActorStaffUserID),
		slog.String("target_user_id", p.TargetUserID),
		slog.String("target_tenant_id", p.TargetTenantID),
		slog.String("scope", string(p.Scope)),
		slog.String("reason", p.Reason),
		slog.String("ticket_id", p.TicketID),
		slog.Time("expires_at", p.Expiry()),
	}
}
