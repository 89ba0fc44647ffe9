package channel

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Window represents one connected window's end of the channel.
type Window struct {
	id     string
	origin string
	send   chan []byte
}

// Hub tracks every window currently subscribed to the channel and
// fans click intents out to them. Single-instance model: the receiver
// and all windows talk to the same in-process hub.
type Hub struct {
	mu      sync.RWMutex
	windows []*Window
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{}
}

// Register adds a window. Enumeration order for delivery is
// registration order; there is no further tie-break.
func (h *Hub) Register(id, origin string, send chan []byte) *Window {
	w := &Window{id: id, origin: origin, send: send}

	h.mu.Lock()
	h.windows = append(h.windows, w)
	h.mu.Unlock()

	log.Debug().Str("window", id).Str("origin", origin).Msg("window subscribed to channel")
	return w
}

// Unregister removes a window.
func (h *Hub) Unregister(w *Window) {
	h.mu.Lock()
	updated := make([]*Window, 0, len(h.windows))
	for _, existing := range h.windows {
		if existing != w {
			updated = append(updated, existing)
		}
	}
	h.windows = updated
	h.mu.Unlock()

	log.Debug().Str("window", w.id).Msg("window unsubscribed from channel")
}

// Deliver posts a click intent to every window whose origin matches.
// All matches receive the message; only the first is asked to take
// foreground focus. Returns the number of windows the intent was
// posted to — zero means the caller must fall back to opening a new
// window. Sends are non-blocking: a window with a full buffer simply
// misses the message.
func (h *Hub) Deliver(intent ClickIntent, origin string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, w := range h.windows {
		if w.origin != origin {
			continue
		}
		msg := intent
		msg.Focus = delivered == 0
		select {
		case w.send <- encodeSSE("message", msg):
			delivered++
		default:
			log.Warn().Str("window", w.id).Msg("window send buffer full, intent dropped")
		}
	}
	return delivered
}

// WindowCount returns the number of connected windows.
func (h *Hub) WindowCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.windows)
}
