package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"project-management-api/internal/metrics"
)

// Task event types.
const (
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
	EventTaskDeleted = "task_deleted"
)

// TaskEvent is pushed to every participant of the task's project.
// Version is the task version after the change.
type TaskEvent struct {
	Type      string `json:"type"`
	TaskID    int    `json:"taskId"`
	ProjectID int    `json:"projectId"`
	UserID    int    `json:"userId"`
	Version   int    `json:"version"`
}

// Client represents a single websocket client connection.
// The network conn itself is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub maintains active user connections and broadcasts events to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[int]map[Client]struct{}
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[int]map[Client]struct{}),
		logger:  logger.Named("realtime"),
	}
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID int, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
	metrics.WebSocketConnections.Inc()
}

// Unregister removes a client; if user has no more clients, cleans up map.
func (h *Hub) Unregister(userID int, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.clients[userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	metrics.WebSocketConnections.Dec()
	if len(clients) == 0 {
		delete(h.clients, userID)
	}
}

// Connected reports how many clients userID has open.
func (h *Hub) Connected(userID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Broadcast sends a message to all clients of a user. A failed send is left
// to the owning handler, whose read loop ends and unregisters the client.
func (h *Hub) Broadcast(userID int, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		if !c.Send(message) {
			h.logger.Debug("Websocket send failed", zap.Int("user_id", userID))
		}
	}
}

// PublishTaskEvent sends ev to every listed user.
func (h *Hub) PublishTaskEvent(userIDs []int, ev TaskEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Failed to encode task event", zap.Error(err))
		return
	}
	for _, id := range userIDs {
		h.Broadcast(id, msg)
	}
}
