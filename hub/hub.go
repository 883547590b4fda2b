// Package hub is the real-time channel: per-event chat rooms over a
// persistent websocket connection.
//
// Authentication happens exactly once, at handshake time and before
// the upgrade, so a connection that fails validation is refused
// outright and no partially-authenticated state ever exists. The
// identity established then is bound to the connection for its whole
// lifetime; individual messages are not re-authenticated, and a
// connection deliberately outlives its token's expiry.
package hub

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/gatherly/gatherly/auth"
)

// Authenticator runs credential extraction and validation for the
// handshake request. *auth.Middleware satisfies it.
type Authenticator interface {
	Authenticate(r *http.Request) (*auth.Identity, error)
}

// Message is a chat message broadcast to a room. From is always the
// connection's bound subject, never client-supplied.
type Message struct {
	Room   string    `json:"room"`
	From   string    `json:"from"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// inbound is what clients send: just a body. Everything else is
// derived server-side.
type inbound struct {
	Body string `json:"body"`
}

type conn struct {
	identity *auth.Identity
	sock     *websocket.Conn
	send     chan Message
}

// Hub tracks rooms and the connections joined to them.
type Hub struct {
	authenticator  Authenticator
	logger         auth.Logger
	originPatterns []string
	writeTimeout   time.Duration
	sendBuffer     int

	mu    sync.RWMutex
	rooms map[string]map[*conn]struct{}
}

// New builds a Hub that authenticates handshakes with a.
func New(a Authenticator, opts ...Option) *Hub {
	h := &Hub{
		authenticator: a,
		writeTimeout:  5 * time.Second,
		sendBuffer:    16,
		rooms:         make(map[string]map[*conn]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handler serves the hub endpoint. It expects to be mounted on a
// route with an {event} path value.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(h.serve)
}

func (h *Hub) serve(w http.ResponseWriter, r *http.Request) {
	// Gate before upgrading. The extractor chain accepts the
	// access_token query parameter here because browser clients
	// cannot set headers on the upgrade request.
	identity, err := h.authenticator.Authenticate(r)
	if err != nil || identity == nil {
		if h.logger != nil {
			h.logger.Warnf("hub handshake rejected: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthorized."}`))
		return
	}

	room := r.PathValue("event")
	if room == "" {
		http.Error(w, "missing event", http.StatusBadRequest)
		return
	}

	sock, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		return
	}

	c := &conn{
		identity: identity,
		sock:     sock,
		send:     make(chan Message, h.sendBuffer),
	}
	h.join(room, c)
	defer h.leave(room, c)

	if h.logger != nil {
		h.logger.Infof("subject %s joined room %s", identity.Subject(), room)
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go h.writeLoop(ctx, c, cancel)
	h.readLoop(ctx, room, c)

	_ = sock.Close(websocket.StatusNormalClosure, "closed")
}

// readLoop consumes client messages and broadcasts them stamped with
// the connection's bound subject.
func (h *Hub) readLoop(ctx context.Context, room string, c *conn) {
	for {
		var in inbound
		if err := wsjson.Read(ctx, c.sock, &in); err != nil {
			return
		}
		if in.Body == "" {
			continue
		}
		h.broadcast(room, Message{
			Room:   room,
			From:   c.identity.Subject(),
			Body:   in.Body,
			SentAt: time.Now().UTC(),
		})
	}
}

func (h *Hub) writeLoop(ctx context.Context, c *conn, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			writeCtx, cancelWrite := context.WithTimeout(ctx, h.writeTimeout)
			err := wsjson.Write(writeCtx, c.sock, msg)
			cancelWrite()
			if err != nil {
				cancel()
				return
			}
		}
	}
}

// broadcast fans a message out to every member of the room, the
// sender included. Slow consumers are skipped rather than allowed to
// stall the room.
func (h *Hub) broadcast(room string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for member := range h.rooms[room] {
		select {
		case member.send <- msg:
		default:
		}
	}
}

func (h *Hub) join(room string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*conn]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

func (h *Hub) leave(room string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.rooms[room]
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}
