package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"prime-research/internal/dto"
	"prime-research/internal/pkg/logger"
)

const hubModule = "PROGRESS_HUB"

// Hub fans progress events out to connected websocket clients. A client
// with an empty SessionId receives events for every session.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		logger:     log,
	}
}

// Run serves registrations and forwards events until ctx is done or events
// is closed.
func (h *Hub) Run(ctx context.Context, events <-chan dto.ProgressEvent) {
	defer func() {
		h.closeAll()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info(hubModule, "Client registered", map[string]interface{}{"session_id": client.SessionId})

		case client := <-h.unregister:
			h.remove(client)

		case event, ok := <-events:
			if !ok {
				return
			}
			h.Deliver(event)
		}
	}
}

// Deliver sends event to every interested client. A client whose buffer is
// full misses the event.
func (h *Hub) Deliver(event dto.ProgressEvent) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "progress",
		"data": event,
	})
	if err != nil {
		h.logger.Warn(hubModule, "Failed to encode progress event", map[string]interface{}{"error": err})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.SessionId != "" && client.SessionId != event.SessionId {
			continue
		}
		select {
		case client.Send <- data:
		default:
			h.logger.Warn(hubModule, "Client send buffer full, dropping event", map[string]interface{}{
				"session_id": client.SessionId,
				"stage":      event.Stage,
			})
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
		h.logger.Info(hubModule, "Client unregistered", map[string]interface{}{"session_id": client.SessionId})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.Send)
	}
}
