package supportaccess

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
)

// ErrorCode is the closed set of verification failures.
type ErrorCode string

const (
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeBadSignature  ErrorCode = "bad_signature"
	CodeExpired       ErrorCode = "expired"
	CodeBadIssuer     ErrorCode = "bad_issuer"
	CodeBadAudience   ErrorCode = "bad_audience"
)

// Err maps the code to its sentinel error.
func (c ErrorCode) Err() error {
	switch c {
	case CodeInvalidFormat:
		return ErrInvalidFormat
	case CodeBadSignature:
		return ErrBadSignature
	case CodeExpired:
		return ErrExpired
	case CodeBadIssuer:
		return ErrBadIssuer
	case CodeBadAudience:
		return ErrBadAudience
	default:
		return nil
	}
}

// Result is the outcome of Verify. Payload is set only when Valid.
type Result struct {
	Valid   bool      `json:"valid"`
	Payload *Payload  `json:"payload,omitempty"`
	Code    ErrorCode `json:"error,omitempty"`
}

// Err returns nil for a valid token and the code's sentinel otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return r.Code.Err()
}

func failed(code ErrorCode) Result { return Result{Code: code} }

var (
	validate = newValidator()
	parser   = jwt.NewParser()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("reason", func(fl validator.FieldLevel) bool {
		return len([]rune(strings.TrimSpace(fl.Field().String()))) >= MinReasonLength
	})
	return v
}

// ValidatePayload checks the caller-supplied fields of p.
func ValidatePayload(p Payload) error {
	if err := validate.Struct(p); err != nil {
		return errors.Join(ErrInvalidPayload, err)
	}
	return nil
}

// Mint signs p with secret. Issuer, audience, issued-at and expiry are set
// from the constants, now and ttl; a non-positive ttl means DefaultTTL.
func Mint(p Payload, secret []byte, ttl time.Duration, now time.Time) (string, Payload, error) {
	if len(secret) == 0 {
		return "", Payload{}, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	p.Reason = strings.TrimSpace(p.Reason)
	if err := ValidatePayload(p); err != nil {
		return "", Payload{}, err
	}

	p.Issuer = Issuer
	p.Audience = Audience
	p.IssuedAt = now.Unix()
	p.ExpiresAt = now.Add(ttl).Unix()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, p).SignedString(secret)
	if err != nil {
		return "", Payload{}, err
	}
	return token, p, nil
}

// Verify checks token against secret at time now. It never returns an error;
// failures are reported in Result.Code.
func Verify(token string, secret []byte, now time.Time) Result {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return failed(CodeInvalidFormat)
	}

	if len(secret) == 0 {
		return failed(CodeBadSignature)
	}
	sig, err := jwt.SigningMethodHS256.Sign(parts[0]+"."+parts[1], secret)
	if err != nil {
		return failed(CodeBadSignature)
	}
	// Compare encoded forms so that every altered character is caught,
	// including ones base64 decoding would ignore.
	expected := base64.RawURLEncoding.EncodeToString(sig)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(parts[2])) != 1 {
		return failed(CodeBadSignature)
	}

	var p Payload
	parsed, _, err := parser.ParseUnverified(token, &p)
	if err != nil || parsed.Method != jwt.SigningMethodHS256 {
		return failed(CodeInvalidFormat)
	}

	v := jwt.NewValidator(
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
	)
	if err := v.Validate(p); err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return failed(CodeExpired)
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return failed(CodeBadIssuer)
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return failed(CodeBadAudience)
		default:
			return failed(CodeInvalidFormat)
		}
	}

	return Result{Valid: true, Payload: &p}
}
