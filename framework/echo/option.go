package echoauth

import "github.com/labstack/echo/v4"

// Option configures the Echo adapter.
type Option func(*config)

// WithErrorHandler replaces the default 401 responder. Custom
// handlers should keep the body generic; the error only distinguishes
// missing from invalid credentials for logging.
func WithErrorHandler(h func(echo.Context, error)) Option {
	return func(cfg *config) {
		if h != nil {
			cfg.errorHandler = h
		}
	}
}

// WithContextKey changes the echo context key the identity is stored
// under.
func WithContextKey(key string) Option {
	return func(cfg *config) {
		if key != "" {
			cfg.contextKey = key
		}
	}
}
