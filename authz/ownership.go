package authz

import (
	"context"

	"github.com/gatherly/gatherly/auth"
)

// OwnershipLookup fetches the recorded owner of a resource. It is the
// one evaluation step that may block on I/O; the store behind it
// honors ctx. ok is false when the resource does not exist. An error
// means the lookup itself failed and no decision could be made.
type OwnershipLookup func(ctx context.Context, resourceID string) (owner string, ok bool, err error)

// EvaluateOwnership compares the caller's subject against the
// resource's recorded owner. It performs exactly one external read
// and no writes.
func EvaluateOwnership(ctx context.Context, identity *auth.Identity, resourceID string, lookup OwnershipLookup) (Decision, error) {
	if identity == nil {
		return Deny(ReasonUnauthenticated), nil
	}

	owner, ok, err := lookup(ctx, resourceID)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return Deny(ReasonResourceNotFound), nil
	}

	if owner != identity.Subject() {
		return Deny(ReasonNotOwner), nil
	}
	return Allow(), nil
}
