package validator

import "time"

// Option is how options for the Validator are set up.
type Option func(*Validator)

// WithAllowedClockSkew sets the tolerance applied to time based
// claims.
//
// The default is zero: expiry is enforced exactly, and a token whose
// expiry equals the current instant is rejected. Leave it at zero
// unless the deployment genuinely runs issuers and verifiers on
// different clocks.
func WithAllowedClockSkew(skew time.Duration) Option {
	return func(v *Validator) {
		v.allowedClockSkew = skew
	}
}

// WithExpectedIssuer turns on issuer verification against the given
// value. The server does not set this: it runs single-tenant and
// trusts every token its own secret signs. The option exists so the
// relaxation stays a visible configuration choice.
func WithExpectedIssuer(issuer string) Option {
	return func(v *Validator) {
		v.expectedIssuer = issuer
	}
}

// WithExpectedAudience turns on audience verification against the
// given value. Unset for the same single-tenant reason as
// WithExpectedIssuer.
func WithExpectedAudience(audience string) Option {
	return func(v *Validator) {
		v.expectedAudience = audience
	}
}

// WithClock overrides the time source used for time based claims.
// Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(v *Validator) {
		if clock != nil {
			v.clock = clock
		}
	}
}
