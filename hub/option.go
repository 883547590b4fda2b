package hub

import (
	"time"

	"github.com/gatherly/gatherly/auth"
)

// Option configures the Hub.
type Option func(*Hub)

// WithLogger sets an optional logger.
func WithLogger(logger auth.Logger) Option {
	return func(h *Hub) { h.logger = logger }
}

// WithOriginPatterns sets the host patterns allowed to open
// cross-origin websocket connections. Empty means same-origin only.
func WithOriginPatterns(patterns []string) Option {
	return func(h *Hub) { h.originPatterns = patterns }
}

// WithWriteTimeout bounds how long a single broadcast write may take
// before the connection is dropped. Default: 5s.
func WithWriteTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}
