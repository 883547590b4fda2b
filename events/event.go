// Package events is the business surface the auth stack protects:
// events have a host (the subject who created them), anyone
// authenticated may browse and create, and only the host may mutate.
package events

import "time"

// Event is a hosted gathering. Host is the subject id of the creator
// and is what the IsEventHost policy compares against; it never
// changes after creation.
type Event struct {
	ID        string    `json:"id"`
	Host      string    `json:"host"`
	Title     string    `json:"title"`
	Location  string    `json:"location,omitempty"`
	StartsAt  time.Time `json:"starts_at"`
	CreatedAt time.Time `json:"created_at"`
}
