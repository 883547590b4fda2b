package validator

import (
	"context"
	"errors"
	"strings"
)

// ErrMissingSigningKey is returned by LoadSigningKey when no secret is
// configured. This is a startup failure, never a per-request one.
var ErrMissingSigningKey = errors.New("signing key is missing or empty")

// SigningKey is the symmetric secret tokens are signed with. It is
// loaded once at startup and shared read-only by every validation, so
// no locking is needed around it.
type SigningKey []byte

// LoadSigningKey builds the process-wide signing key from the
// configured secret.
func LoadSigningKey(secret string) (SigningKey, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSigningKey
	}
	return SigningKey(secret), nil
}

// KeyFunc returns a key provider in the shape the Validator expects.
func (k SigningKey) KeyFunc() func(context.Context) (interface{}, error) {
	return func(context.Context) (interface{}, error) {
		return []byte(k), nil
	}
}
