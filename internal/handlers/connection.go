package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/StiliyanIliev27/Memora/internal/events"
	"github.com/StiliyanIliev27/Memora/internal/middleware"
	"github.com/StiliyanIliev27/Memora/internal/models"
	"github.com/StiliyanIliev27/Memora/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ConnectionHandler handles connection-related HTTP requests
type ConnectionHandler struct {
	connectionService *services.ConnectionService
	userService       *services.UserService
	wsHub             *services.WSHub
	bus               events.Publisher
	push              *services.PushService
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(
	connectionService *services.ConnectionService,
	userService *services.UserService,
	wsHub *services.WSHub,
	bus events.Publisher,
	push *services.PushService,
) *ConnectionHandler {
	return &ConnectionHandler{
		connectionService: connectionService,
		userService:       userService,
		wsHub:             wsHub,
		bus:               bus,
		push:              push,
	}
}

// CreateConnectionRequest represents the request body for sending an invitation
type CreateConnectionRequest struct {
	Email   string  `json:"email"`
	Type    string  `json:"type"`
	Message *string `json:"message,omitempty"`
}

// Create handles POST /api/v1/connections
func (h *ConnectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conn, err := h.connectionService.CreateByEmail(ctx, userID, req.Email, models.ConnectionType(req.Type), req.Message)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("email", req.Email).
			Msg("Failed to create connection")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("user_id", userID).
		Str("connection_type", string(conn.ConnectionType)).
		Msg("Connection invitation sent")

	h.publish(ctx, events.Event{
		Type:    events.TypeConnectionCreated,
		UserIDs: []string{conn.User1ID, conn.User2ID},
		Data:    map[string]any{"connection_id": conn.ID},
	})

	// Recipients who are not connected over WebSocket get a push instead.
	if invitee := conn.OtherUserID(userID); !h.wsHub.IsOnline(invitee) {
		h.pushToUser(ctx, invitee, "You have a new connection invitation")
	}

	respondJSON(w, http.StatusCreated, conn)
}

// List handles GET /api/v1/connections
func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	connections, err := h.connectionService.GetConnections(ctx, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Msg("Failed to list connections")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"connections": connections,
		"total":       len(connections),
	})
}

// RespondRequest represents the request body for answering an invitation
type RespondRequest struct {
	Status string `json:"status"`
}

// Respond handles POST /api/v1/connections/{connection_id}/respond
func (h *ConnectionHandler) Respond(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	connectionID := chi.URLParam(r, "connection_id")

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conn, err := h.connectionService.UpdateStatus(ctx, connectionID, userID, models.ConnectionStatus(req.Status))
	if err != nil {
		log.Error().
			Err(err).
			Str("connection_id", connectionID).
			Str("user_id", userID).
			Msg("Failed to respond to connection")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("status", string(conn.Status)).
		Msg("Connection responded")

	h.publish(ctx, events.Event{
		Type:    events.TypeConnectionUpdated,
		UserIDs: []string{conn.User1ID, conn.User2ID},
		Data:    map[string]any{"connection_id": conn.ID, "status": string(conn.Status)},
	})

	if inviter := conn.OtherUserID(userID); conn.Status == models.ConnectionAccepted && !h.wsHub.IsOnline(inviter) {
		h.pushToUser(ctx, inviter, "Your connection invitation was accepted")
	}

	respondJSON(w, http.StatusOK, conn)
}

// Delete handles DELETE /api/v1/connections/{connection_id}
func (h *ConnectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	connectionID := chi.URLParam(r, "connection_id")

	conn, err := h.connectionService.Delete(ctx, connectionID, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("connection_id", connectionID).
			Str("user_id", userID).
			Msg("Failed to delete connection")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("connection_id", connectionID).
		Str("user_id", userID).
		Msg("Connection deleted")

	h.publish(ctx, events.Event{
		Type:    events.TypeConnectionDeleted,
		UserIDs: []string{conn.User1ID, conn.User2ID},
		Data:    map[string]any{"connection_id": conn.ID},
	})

	w.WriteHeader(http.StatusNoContent)
}

func (h *ConnectionHandler) publish(ctx context.Context, ev events.Event) {
	if err := h.bus.Publish(ctx, ev); err != nil {
		log.Error().
			Err(err).
			Str("event_type", ev.Type).
			Msg("Failed to publish event")
	}
}

func (h *ConnectionHandler) pushToUser(ctx context.Context, userID, alert string) {
	if !h.push.Enabled() {
		return
	}
	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Msg("Failed to load user for push")
		return
	}
	h.push.Notify(user.PushToken, alert)
}
