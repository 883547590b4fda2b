package auth

import (
	"context"
	"net/http"

	"github.com/gatherly/gatherly/validator"
)

// TokenValidator is the contract the middleware needs from the
// validation layer. *validator.Validator satisfies it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// Middleware is the authentication gate for stateless requests and,
// through Authenticate, for hub handshakes.
type Middleware struct {
	validator           TokenValidator
	errorHandler        ErrorHandler
	tokenExtractor      TokenExtractor
	credentialsOptional bool
	validateOnOptions   bool
	logger              Logger
	metrics             Metrics
	tracer              Tracer
}

// New constructs a new Middleware around the given token validator.
// All other collaborators are passed via options.
func New(v TokenValidator, opts ...Option) (*Middleware, error) {
	if v == nil {
		return nil, ErrValidatorNil
	}

	m := &Middleware{
		validator:         v,
		errorHandler:      DefaultErrorHandler,
		tokenExtractor:    AuthHeaderTokenExtractor,
		validateOnOptions: true,
		metrics:           &NoopMetrics{},
		tracer:            &NoopTracer{},
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Authenticate runs credential extraction and validation for a single
// inbound exchange. It returns the identity on success, (nil, nil)
// when no credential was presented and credentials are optional, and
// an error otherwise. The hub calls this once per handshake; CheckAuth
// calls it once per request.
func (m *Middleware) Authenticate(r *http.Request) (*Identity, error) {
	token, err := m.tokenExtractor(r)
	if err != nil {
		if m.logger != nil {
			m.logger.Warnf("failed to extract token: %v (path %s)", err, r.URL.Path)
		}
		m.metrics.IncCounter("auth_requests_total", map[string]string{"result": "invalid"})
		return nil, &invalidError{details: err}
	}

	return m.CheckToken(r.Context(), token)
}

// CheckToken validates a raw credential string. An empty token means
// no credential was found by extraction, which is only fatal when
// credentials are required.
func (m *Middleware) CheckToken(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		if m.credentialsOptional {
			return nil, nil
		}
		m.metrics.IncCounter("auth_requests_total", map[string]string{"result": "missing"})
		return nil, ErrCredentialMissing
	}

	span := m.tracer.StartSpan("auth.validate_token")
	defer span.Finish()

	raw, err := m.validator.ValidateToken(ctx, token)
	if err != nil {
		span.SetTag("result", "invalid")
		if m.logger != nil {
			m.logger.Warnf("token validation failed: %v", err)
		}
		m.metrics.IncCounter("auth_requests_total", map[string]string{"result": "invalid"})
		return nil, &invalidError{details: err}
	}

	claims, ok := raw.(*validator.ValidatedClaims)
	if !ok {
		span.SetTag("result", "invalid")
		return nil, &invalidError{details: ErrUnexpectedClaimsType}
	}

	span.SetTag("result", "ok")
	span.SetTag("subject", claims.RegisteredClaims.Subject)
	m.metrics.IncCounter("auth_requests_total", map[string]string{"result": "ok"})

	return NewIdentity(claims), nil
}

// CheckAuth wraps a handler so that it only runs for authenticated
// requests. On success the identity is attached to the request context
// before next runs; on failure the error handler answers and next is
// never reached.
func (m *Middleware) CheckAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// If we don't validate on OPTIONS and this is OPTIONS
		// then continue onto next without validating.
		if !m.validateOnOptions && r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := m.Authenticate(r)
		if err != nil {
			m.errorHandler(w, r, err)
			return
		}

		// Credentials were optional and none were presented;
		// continue without an identity.
		if identity == nil {
			next.ServeHTTP(w, r)
			return
		}

		if m.logger != nil {
			m.logger.Debugf("authenticated subject %s for %s %s", identity.Subject(), r.Method, r.URL.Path)
		}

		r = r.Clone(SetIdentity(r.Context(), identity))
		next.ServeHTTP(w, r)
	})
}
