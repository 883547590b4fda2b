// Package auth locates, validates and carries the caller's identity.
//
// It serves both transport surfaces the server exposes: the stateless
// JSON API, where CheckAuth wraps handlers and authenticates every
// request, and the websocket hub, where Authenticate runs once at
// handshake time and the resulting Identity is bound to the
// connection for its whole life.
package auth
