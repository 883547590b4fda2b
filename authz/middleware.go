package authz

import (
	"fmt"
	"net/http"

	"github.com/gatherly/gatherly/auth"
)

// Middleware enforces named policies on HTTP routes. It must be
// mounted inside auth.Middleware.CheckAuth so the identity is already
// in the request context.
type Middleware struct {
	registry *Registry
	logger   auth.Logger
	metrics  auth.Metrics
}

// MiddlewareOption configures the authz Middleware.
type MiddlewareOption func(*Middleware)

// WithLogger sets an optional logger.
func WithLogger(logger auth.Logger) MiddlewareOption {
	return func(m *Middleware) { m.logger = logger }
}

// WithMetrics sets the metrics sink. Default: auth.NoopMetrics.
func WithMetrics(metrics auth.Metrics) MiddlewareOption {
	return func(m *Middleware) {
		if metrics != nil {
			m.metrics = metrics
		}
	}
}

// NewMiddleware builds a policy-enforcing middleware over the given
// registry.
func NewMiddleware(registry *Registry, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		registry: registry,
		metrics:  &auth.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Require wraps a handler with the named policy. The target resource
// id is read from the route's path value pathParam. Referencing an
// unregistered policy is a programming error and panics at wiring
// time.
func (m *Middleware) Require(policyName, pathParam string) func(http.Handler) http.Handler {
	policy, ok := m.registry.Get(policyName)
	if !ok {
		panic(fmt.Sprintf("authz: route references unknown policy %q", policyName))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := auth.IdentityFromContext(r.Context())
			resourceID := r.PathValue(pathParam)

			decision, err := policy.Authorize(r.Context(), identity, resourceID)
			if err != nil {
				if m.logger != nil {
					m.logger.Errorf("policy %s: ownership lookup failed for %s: %v", policyName, resourceID, err)
				}
				writeJSONError(w, http.StatusInternalServerError, "Something went wrong.")
				return
			}

			result := "allow"
			if !decision.Allowed {
				result = string(decision.Reason)
			}
			m.metrics.IncCounter("authz_decisions_total", map[string]string{
				"policy": policyName,
				"result": result,
			})

			if !decision.Allowed {
				if m.logger != nil {
					m.logger.Warnf("policy %s denied %s on %s: %s", policyName, subjectOf(identity), resourceID, decision.Reason)
				}
				// One generic body for every denial so callers cannot
				// tell a missing resource from someone else's.
				writeJSONError(w, http.StatusForbidden, "Forbidden.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func subjectOf(identity *auth.Identity) string {
	if identity == nil {
		return "<unauthenticated>"
	}
	return identity.Subject()
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"message":"` + message + `"}`))
}
