package authz

// Reason explains a denial. It is for logs and metrics only; HTTP
// responses stay generic so callers cannot probe which check failed.
type Reason string

const (
	// ReasonUnauthenticated means no identity reached the evaluator.
	// Authentication runs first, so seeing this indicates a wiring bug,
	// but it is still checked defensively.
	ReasonUnauthenticated Reason = "unauthenticated"

	// ReasonResourceNotFound means the target resource does not exist.
	ReasonResourceNotFound Reason = "resource_not_found"

	// ReasonNotOwner means the caller is not the recorded owner.
	ReasonNotOwner Reason = "not_owner"
)

// Decision is the outcome of a policy evaluation. An action either
// proceeds entirely or is rejected entirely; there is no partial
// allow.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allow is the affirmative decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny rejects with the given reason.
func Deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}
