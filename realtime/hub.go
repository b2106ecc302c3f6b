package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"main/middleware"
	"main/repository"
)

// Hub links websocket connections to sessions in the registry and fans out
// presence broadcasts. Broadcasts are best-effort: a client whose send buffer
// is full misses the frame and catches up on the next state change.
type Hub struct {
	registry *repository.SessionRegistry

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub(registry *repository.SessionRegistry) *Hub {
	return &Hub{
		registry: registry,
		clients:  make(map[*Client]struct{}),
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	middleware.ConnectedSockets.Set(float64(count))
	log.Printf("Client connected: %s", client.socketID)
}

// unregister drops the client, closes its send channel so the write pump
// exits, unlinks its socket from the registry and rebroadcasts presence.
// Safe to call more than once per client.
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	_, present := h.clients[client]
	delete(h.clients, client)
	count := len(h.clients)
	h.mu.Unlock()

	if !present {
		return
	}

	close(client.send)
	middleware.ConnectedSockets.Set(float64(count))
	h.registry.UnlinkSocket(client.socketID)
	h.BroadcastStats()
	log.Printf("Client disconnected: %s", client.socketID)
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event string, data interface{}) {
	h.send(event, data, nil)
}

// BroadcastExcept sends an event to every client but the originator.
func (h *Hub) BroadcastExcept(origin *Client, event string, data interface{}) {
	h.send(event, data, origin)
}

func (h *Hub) send(event string, data interface{}, skip *Client) {
	frame, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		log.Printf("Failed to encode %s broadcast: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client == skip {
			continue
		}
		select {
		case client.send <- frame:
		default:
			// Slow consumer; drop the frame rather than block the hub.
		}
	}
}

// BroadcastStats pushes the aggregate presence counters to all clients.
func (h *Hub) BroadcastStats() {
	stats := h.registry.Stats()
	middleware.UpdateActiveSessions(float64(stats.ActiveSessions))
	h.Broadcast("user_stats", map[string]interface{}{
		"activeUsers":   stats.ConnectedUsers,
		"totalSessions": stats.ActiveSessions,
	})
}
