package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/StiliyanIliev27/Memora/internal/events"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage is the frame pushed to connected clients. Every message
// is an invalidation hint: clients re-fetch the affected list rather
// than patching local state.
type WSMessage struct {
	Type    string         `json:"type"`
	Data    map[string]any `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
}

// WSHub manages WebSocket connections keyed by user id.
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*websocket.Conn),
	}
}

// Register registers a WebSocket connection for a user, replacing and
// closing any previous one.
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[userID]; ok {
		existing.Close()
	}
	h.connections[userID] = conn

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes the user's connection if it is still the given
// one. A connection replaced by a newer Register is left alone.
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.connections[userID]; ok && current == conn {
		current.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	conn, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID, conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

// Dispatch forwards a change event to every addressed user that is
// connected here. Offline users simply miss the hint; they reload on
// next connect.
func (h *WSHub) Dispatch(ev events.Event) {
	msg := WSMessage{Type: ev.Type, Data: ev.Data}
	for _, userID := range ev.UserIDs {
		if !h.IsOnline(userID) {
			continue
		}
		if err := h.SendToUser(userID, msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Str("type", ev.Type).Msg("Failed to deliver event")
		}
	}
}
