package events

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gatherly/gatherly/auth"
)

// Handler exposes event CRUD over JSON. Authentication and the host
// ownership gate run in middleware before any of these methods; the
// handlers only read the already-attached identity.
type Handler struct {
	store  *Store
	logger auth.Logger
}

func NewHandler(store *Store, logger auth.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

type eventRequest struct {
	Title    string    `json:"title"`
	Location string    `json:"location,omitempty"`
	StartsAt time.Time `json:"starts_at"`
}

// Create records a new event with the caller as host.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		// CheckAuth always runs first; reaching here without an
		// identity is a routing bug.
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized."})
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "A title is required."})
		return
	}

	e := Event{
		ID:        uuid.NewString(),
		Host:      identity.Subject(),
		Title:     req.Title,
		Location:  req.Location,
		StartsAt:  req.StartsAt,
		CreatedAt: time.Now().UTC(),
	}
	h.store.Create(e)

	if h.logger != nil {
		h.logger.Infof("event %s created by %s", e.ID, e.Host)
	}
	writeJSON(w, http.StatusCreated, e)
}

// List returns every event. Any authenticated subject may browse.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List())
}

// Update edits an event. Mounted behind the IsEventHost policy.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "A title is required."})
		return
	}

	e, err := h.store.Update(Event{
		ID:       r.PathValue("id"),
		Title:    req.Title,
		Location: req.Location,
		StartsAt: req.StartsAt,
	})
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found."})
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Delete removes an event. Mounted behind the IsEventHost policy.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.PathValue("id")); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found."})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
