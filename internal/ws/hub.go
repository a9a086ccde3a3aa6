package ws

import (
	"context"
	"encoding/json"
	"sync"

	"todo_app/internal/domain"
	"todo_app/internal/logger"
	"todo_app/internal/rpc"
)

// Hub tracks connected clients and fans todo events out to all of them.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	seq      int64
	Registry *rpc.Registry
}

func NewHub(registry *rpc.Registry) *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		Registry: registry,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.seq++
	c.ID = h.seq
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	ConnectedClients.Set(float64(n))
	logger.Debug("ws client registered", "client_id", c.ID, "clients", n)
}

// Unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	removed := h.removeLocked(c)
	n := len(h.clients)
	h.mu.Unlock()

	if removed {
		ConnectedClients.Set(float64(n))
		logger.Debug("ws client unregistered", "client_id", c.ID, "clients", n)
	}
}

func (h *Hub) removeLocked(c *Client) bool {
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	close(c.Send)
	return true
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. Clients whose buffer is full are dropped.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	var dropped []int64
	for c := range h.clients {
		select {
		case c.Send <- msg:
		default:
			h.removeLocked(c)
			dropped = append(dropped, c.ID)
		}
	}
	n := len(h.clients)
	h.mu.Unlock()

	if len(dropped) > 0 {
		ConnectedClients.Set(float64(n))
		DroppedClients.Add(float64(len(dropped)))
		logger.Warn("ws dropped slow clients", "client_ids", dropped)
	}
}

// SendTo queues msg for one client; false if the client is gone or full.
func (h *Hub) SendTo(c *Client, msg []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func (h *Hub) BroadcastEvent(ev domain.TodoEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws marshal event", "error", err)
		return
	}
	h.Broadcast(b)
}

// Publish makes the hub usable directly as the service notifier.
func (h *Hub) Publish(_ context.Context, ev domain.TodoEvent) {
	h.BroadcastEvent(ev)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	for c := range h.clients {
		h.removeLocked(c)
	}
	h.mu.Unlock()
	ConnectedClients.Set(0)
}
