package events

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned for operations on an event id that does not
// exist.
var ErrNotFound = errors.New("event not found")

// Store keeps events in memory. It is safe for concurrent use by the
// handlers and the ownership lookup.
type Store struct {
	mu     sync.RWMutex
	events map[string]Event
}

func NewStore() *Store {
	return &Store{events: make(map[string]Event)}
}

func (s *Store) Create(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
}

func (s *Store) Get(id string) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	return e, ok
}

func (s *Store) List() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	return out
}

// Update replaces the stored event. The host field is preserved from
// the stored record so a mutation can never reassign ownership.
func (s *Store) Update(e Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.events[e.ID]
	if !ok {
		return Event{}, ErrNotFound
	}
	e.Host = current.Host
	e.CreatedAt = current.CreatedAt
	s.events[e.ID] = e
	return e, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return ErrNotFound
	}
	delete(s.events, id)
	return nil
}

// HostLookup satisfies authz.OwnershipLookup. A store backed by real
// persistence would block here, so the context is honored even though
// the in-memory path never waits.
func (s *Store) HostLookup(ctx context.Context, eventID string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	e, ok := s.Get(eventID)
	if !ok {
		return "", false, nil
	}
	return e.Host, true, nil
}
