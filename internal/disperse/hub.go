package disperse

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Fantasim/rainmaker/internal/config"
)

// Hub fans dispatcher transitions out to connected SSE clients.
type Hub struct {
	clients map[chan Transition]struct{}
	mu      sync.RWMutex
}

// NewHub creates a new transition event hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[chan Transition]struct{})}
}

// Run blocks until ctx is cancelled, then closes all client channels.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.clients {
		close(ch)
		delete(h.clients, ch)
	}

	slog.Info("dispatch hub stopped", "reason", ctx.Err())
}

// Subscribe registers a new client and returns a channel to receive transitions.
func (h *Hub) Subscribe() chan Transition {
	ch := make(chan Transition, config.EventHubBuffer)

	h.mu.Lock()
	h.clients[ch] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	slog.Info("dispatch client subscribed", "totalClients", count)
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (h *Hub) Unsubscribe(ch chan Transition) {
	h.mu.Lock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
	count := len(h.clients)
	h.mu.Unlock()

	slog.Info("dispatch client unsubscribed", "totalClients", count)
}

// Broadcast sends a transition to all connected clients.
// Non-blocking: a slow client's event is dropped rather than stalling the engine.
func (h *Hub) Broadcast(tr Transition) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.clients {
		select {
		case ch <- tr:
		default:
			slog.Warn("dispatch event dropped for slow client", "state", tr.State)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
