package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherly/gatherly/auth"
)

// PolicyIsEventHost gates event mutation to the subject who created
// the event. Route declarations reference policies by these names.
const PolicyIsEventHost = "IsEventHost"

// Policy is a named authorization rule over a single resource.
type Policy interface {
	Name() string
	Authorize(ctx context.Context, identity *auth.Identity, resourceID string) (Decision, error)
}

// OwnershipPolicy is a Policy that allows only the resource's owner.
// The lookup is passed in explicitly so the policy stays pure and
// independently testable.
type OwnershipPolicy struct {
	name   string
	lookup OwnershipLookup
}

// NewOwnershipPolicy builds a named ownership policy around the given
// lookup.
func NewOwnershipPolicy(name string, lookup OwnershipLookup) (*OwnershipPolicy, error) {
	if name == "" {
		return nil, errors.New("policy name is required")
	}
	if lookup == nil {
		return nil, errors.New("ownership lookup is required")
	}
	return &OwnershipPolicy{name: name, lookup: lookup}, nil
}

func (p *OwnershipPolicy) Name() string { return p.name }

func (p *OwnershipPolicy) Authorize(ctx context.Context, identity *auth.Identity, resourceID string) (Decision, error) {
	return EvaluateOwnership(ctx, identity, resourceID, p.lookup)
}

// Registry holds the policies routes may reference by name. It is
// populated during wiring and read-only afterwards.
type Registry struct {
	policies map[string]Policy
}

func NewRegistry() *Registry {
	return &Registry{policies: make(map[string]Policy)}
}

// Register adds a policy. Registering the same name twice is a wiring
// mistake and fails.
func (r *Registry) Register(p Policy) error {
	if _, exists := r.policies[p.Name()]; exists {
		return fmt.Errorf("policy %q already registered", p.Name())
	}
	r.policies[p.Name()] = p
	return nil
}

// Get returns the policy registered under name.
func (r *Registry) Get(name string) (Policy, bool) {
	p, ok := r.policies[name]
	return p, ok
}
