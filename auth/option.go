package auth

import "errors"

// Option configures the Middleware. Options returning an error abort
// construction.
type Option func(*Middleware) error

// Sentinel errors for configuration validation.
var (
	ErrValidatorNil         = errors.New("validator cannot be nil")
	ErrErrorHandlerNil      = errors.New("errorHandler cannot be nil")
	ErrTokenExtractorNil    = errors.New("tokenExtractor cannot be nil")
	ErrUnexpectedClaimsType = errors.New("validator returned an unexpected claims type")
)

// WithErrorHandler sets the handler called when authentication fails.
// See the ErrorHandler type for the contract it must honor.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Middleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.errorHandler = h
		return nil
	}
}

// WithTokenExtractor sets the function to extract the credential from
// the request.
//
// Default: AuthHeaderTokenExtractor
func WithTokenExtractor(e TokenExtractor) Option {
	return func(m *Middleware) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		m.tokenExtractor = e
		return nil
	}
}

// WithCredentialsOptional sets whether requests without any credential
// pass through unauthenticated instead of being rejected.
//
// Default: false (credentials required)
func WithCredentialsOptional(value bool) Option {
	return func(m *Middleware) error {
		m.credentialsOptional = value
		return nil
	}
}

// WithValidateOnOptions sets whether OPTIONS requests have their
// credential validated.
//
// Default: true
func WithValidateOnOptions(value bool) Option {
	return func(m *Middleware) error {
		m.validateOnOptions = value
		return nil
	}
}

// WithLogger sets an optional logger for the middleware.
func WithLogger(logger Logger) Option {
	return func(m *Middleware) error {
		m.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics sink.
//
// Default: NoopMetrics
func WithMetrics(metrics Metrics) Option {
	return func(m *Middleware) error {
		if metrics != nil {
			m.metrics = metrics
		}
		return nil
	}
}

// WithTracer sets the tracer used around token validation.
//
// Default: NoopTracer
func WithTracer(tracer Tracer) Option {
	return func(m *Middleware) error {
		if tracer != nil {
			m.tracer = tracer
		}
		return nil
	}
}
