// Package realtime fans board change events out to websocket subscribers.
// Delivery is at-most-once: a slow client misses events rather than slowing
// everyone else down, and a reconnecting client re-fetches board state
// instead of replaying what it missed.
package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nathanbarrett/livv-stack-sub000/internal/auth"
	"github.com/nathanbarrett/livv-stack-sub000/internal/events"
)

const defaultSendBuffer = 16

// Compile-time verification that *Hub implements events.Publisher
var _ events.Publisher = (*Hub)(nil)

// Hub manages websocket clients and their per-board topic subscriptions.
// It implements events.Publisher.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	authorizer auth.Authorizer
	metrics    *Metrics
	sendBuffer int
	closeOnce  sync.Once
}

// NewHub creates a hub. The authorizer gates subscriptions: a client may
// only subscribe to boards it can view. sendBuffer <= 0 selects the default
// per-client queue size.
func NewHub(authorizer auth.Authorizer, sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		authorizer: authorizer,
		metrics:    NewMetrics(),
		sendBuffer: sendBuffer,
	}
}

// Publish implements events.Publisher. The event is marshaled once and sent
// to every client subscribed to the topic with a non-blocking write; a
// client whose queue is full misses the event.
func (h *Hub) Publish(topic string, event events.Event) error {
	msg := wireMessage{
		Type:  "event",
		Topic: topic,
		Event: &event,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	h.mu.RLock()
	subscribed := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c.isSubscribed(topic) {
			subscribed = append(subscribed, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range subscribed {
		if h.trySend(c, data) {
			h.metrics.IncEventsPublished()
		} else {
			h.metrics.IncEventsDropped()
			slog.Warn("client send queue full, event dropped", "topic", topic)
		}
	}

	return nil
}

// Metrics returns the hub's metrics.
func (h *Hub) Metrics() *Metrics {
	return h.metrics
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client. Publishing to a closed hub is harmless;
// there is simply nobody left to deliver to.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		h.mu.Unlock()
		h.metrics.SetConnectedClients(0)
	})
}

// trySend attempts to queue data for a client, handling the case where the
// client's channel was closed between snapshot and send.
func (h *Hub) trySend(c *Client, data []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed by removeClient - client already cleaned up
			ok = false
		}
	}()

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.metrics.SetConnectedClients(int32(count))
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, registered := h.clients[c]; registered {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.metrics.SetConnectedClients(int32(count))
}

// authorizeSubscribe checks whether the client's principal may view a board.
func (h *Hub) authorizeSubscribe(c *Client, boardID int) (bool, error) {
	if h.authorizer == nil {
		return true, nil
	}
	return h.authorizer.CanViewBoard(c.ctx, c.principal, boardID)
}
