// Package validator verifies signed bearer tokens and produces the
// claims carried inside them.
//
// The service runs single-tenant against one locally held HMAC secret,
// so issuer and audience checks are off unless explicitly enabled
// through options, and expiry is checked with zero clock skew. Both
// are deliberate deployment decisions; read the option documentation
// before changing either.
package validator
