package supportaccess

import "errors"

var (
	ErrInvalidFormat = errors.New("supportaccess.invalid_format")
	ErrBadSignature  = errors.New("supportaccess.bad_signature")
	ErrExpired       = errors.New("supportaccess.expired")
	ErrBadIssuer     = errors.New("supportaccess.bad_issuer")
	ErrBadAudience   = errors.New("supportaccess.bad_audience")

	ErrInvalidPayload = errors.New("supportaccess.invalid_payload")
	ErrInvalidTTL     = errors.New("supportaccess.invalid_ttl")
	ErrEmptySecret    = errors.New("supportaccess.empty_secret")
)
