package websocket

import (
	"log"
	"sync"
)

// Hub maintains the set of listening desktop sessions, keyed by pairing
// token. Each token has at most one listener: a page that re-opens its
// socket replaces the previous connection.
type Hub struct {
	listeners map[string]*Listener

	register   chan *Listener
	unregister chan *Listener

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Listener),
		unregister: make(chan *Listener),
		listeners:  make(map[string]*Listener),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case l := <-h.register:
			h.mu.Lock()
			if old, ok := h.listeners[l.Token]; ok {
				close(old.send)
			}
			h.listeners[l.Token] = l
			h.mu.Unlock()
			log.Printf("🖥️  Session listening: %s", l.Token)

		case l := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.listeners[l.Token]; ok && cur == l {
				delete(h.listeners, l.Token)
				close(l.send)
				log.Printf("📴 Session closed: %s", l.Token)
			}
			h.mu.Unlock()
		}
	}
}

// Send forwards a scanned payload to the session listening on the given
// token. Returns false when nobody is listening or the listener is stalled.
func (h *Hub) Send(token, payload string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	l, ok := h.listeners[token]
	if !ok {
		return false
	}

	// Run only closes a listener's channel under the write lock, so the
	// non-blocking send below cannot hit a channel mid-close.
	select {
	case l.send <- []byte(payload):
		return true
	default:
		return false
	}
}

// Listening reports whether a desktop session is connected for the token.
func (h *Hub) Listening(token string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.listeners[token]
	return ok
}
