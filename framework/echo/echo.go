// Package echoauth adapts the auth middleware to the Echo framework.
package echoauth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gatherly/gatherly/auth"
)

// DefaultIdentityKey is the echo context key identities are stored
// under when no WithContextKey option is given.
var DefaultIdentityKey = "identity"

type config struct {
	errorHandler func(echo.Context, error)
	contextKey   string
}

// Middleware wraps an auth.Middleware as an echo.MiddlewareFunc. The
// identity is attached both to the request context (for handlers that
// use auth.IdentityFromContext) and to the echo context under the
// configured key.
func Middleware(m *auth.Middleware, opts ...Option) echo.MiddlewareFunc {
	cfg := &config{
		errorHandler: defaultErrorHandler,
		contextKey:   DefaultIdentityKey,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := m.Authenticate(c.Request())
			if err != nil {
				cfg.errorHandler(c, err)
				return nil // Prevent further handlers from being called.
			}

			if identity != nil {
				c.SetRequest(c.Request().Clone(auth.SetIdentity(c.Request().Context(), identity)))
				c.Set(cfg.contextKey, identity)
			}
			return next(c)
		}
	}
}

func defaultErrorHandler(c echo.Context, err error) {
	_ = c.JSON(http.StatusUnauthorized, map[string]string{
		"message": "Unauthorized.",
	})
}

// GetIdentity extracts the identity from the Echo context.
func GetIdentity(c echo.Context, contextKey string) (*auth.Identity, bool) {
	v := c.Get(contextKey)
	if v == nil {
		return nil, false
	}
	identity, ok := v.(*auth.Identity)
	return identity, ok
}
