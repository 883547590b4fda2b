// Package authz decides whether an authenticated caller may perform
// an ownership-restricted action on a resource.
//
// The only policy the server ships is host ownership: the subject who
// created an event is its host, and only the host may mutate it.
// Routes opt in by policy name; everything else just requires a valid
// identity from package auth.
package authz
