package validator

import "errors"

// Validation failures are terminal for the request or handshake that
// presented the token; nothing in this package retries.
var (
	// ErrMalformedToken is returned when the credential is not three
	// non-empty base64url segments or its payload cannot be decoded.
	ErrMalformedToken = errors.New("token is malformed")

	// ErrBadSignature is returned when the signature does not verify
	// against the configured signing key and algorithm.
	ErrBadSignature = errors.New("token signature is invalid")

	// ErrExpired is returned when the expiry claim is not strictly in
	// the future at validation time.
	ErrExpired = errors.New("token is expired")

	// ErrInvalidClaims is returned when the token verifies but its
	// claims fail a configured check (missing subject, issuer or
	// audience mismatch when those checks are enabled, nbf in the
	// future).
	ErrInvalidClaims = errors.New("token claims are invalid")
)
