package auth

import (
	"context"

	"github.com/gatherly/gatherly/validator"
)

// Identity is the validated principal for one request or one hub
// connection. It only ever exists downstream of a successful token
// validation and is immutable once created.
type Identity struct {
	claims *validator.ValidatedClaims
}

// NewIdentity wraps validated claims. Callers outside this package
// should rarely need it directly; the middleware creates identities
// after validation.
func NewIdentity(claims *validator.ValidatedClaims) *Identity {
	return &Identity{claims: claims}
}

// Subject returns the stable subject identifier of the caller.
func (id *Identity) Subject() string {
	return id.claims.RegisteredClaims.Subject
}

// Claims exposes the full validated claim set.
func (id *Identity) Claims() *validator.ValidatedClaims {
	return id.claims
}

// contextKey is an unexported type for context keys to prevent
// collisions with other packages.
type contextKey int

const identityKey contextKey = iota

// SetIdentity stores the identity in the context. The middleware calls
// this exactly once per request after validation succeeds.
func SetIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the identity set by the middleware.
// The second return is false when the request never passed
// authentication, for example on routes mounted outside CheckAuth.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}

// HasIdentity reports whether an identity is present in the context.
func HasIdentity(ctx context.Context) bool {
	_, ok := IdentityFromContext(ctx)
	return ok
}
