// Package supportaccess mints and verifies short-lived support-access tokens.
//
// A token lets a platform support operator act on a target user or tenant for
// a bounded time. It is a compact HS256 token, header.payload.signature, each
// segment base64url without padding. The payload carries the operator, the
// optional targets, one of two coarse scopes and a mandatory human-readable
// reason with an optional ticket id for the audit trail.
//
// Verify checks, in order: three segments (invalid_format), the HMAC in
// constant time (bad_signature), expiry (expired), issuer (bad_issuer) and
// audience (bad_audience). Failures are returned as data in Result so callers
// can log the specific reason. Whether the bearer may do a particular thing
// is decided by the caller once the payload is trusted.
//
// Mint refuses payloads without an operator, with an unknown scope or with a
// reason shorter than MinReasonLength.
package supportaccess
