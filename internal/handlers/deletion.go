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

// DeletionHandler handles deletion request HTTP endpoints
type DeletionHandler struct {
	deletionService *services.DeletionService
	bus             events.Publisher
}

// NewDeletionHandler creates a new deletion request handler
func NewDeletionHandler(deletionService *services.DeletionService, bus events.Publisher) *DeletionHandler {
	return &DeletionHandler{
		deletionService: deletionService,
		bus:             bus,
	}
}

// CreateDeletionRequest represents the request body for asking to
// delete shared content. Exactly one of memory_id/file_id is expected.
type CreateDeletionRequest struct {
	MemoryID *string `json:"memory_id,omitempty"`
	FileID   *string `json:"file_id,omitempty"`
	Message  *string `json:"message,omitempty"`
}

// Create handles POST /api/v1/deletion-requests
func (h *DeletionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateDeletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.MemoryID != nil && req.FileID != nil {
		respondError(w, "provide either memory_id or file_id, not both", http.StatusBadRequest)
		return
	}

	var target services.DeletionTarget
	switch {
	case req.MemoryID != nil:
		target = services.MemoryTarget(*req.MemoryID)
	case req.FileID != nil:
		target = services.FileTarget(*req.FileID)
	}

	created, err := h.deletionService.Create(ctx, userID, target, req.Message)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Msg("Failed to create deletion request")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("request_id", created.ID).
		Str("user_id", userID).
		Str("request_type", string(created.RequestType)).
		Msg("Deletion request created")

	if conn, err := h.deletionService.ConnectionForRequest(ctx, created.ID); err == nil {
		h.publish(r, events.Event{
			Type:    events.TypeDeletionRequestCreated,
			UserIDs: []string{conn.User1ID, conn.User2ID},
			Data:    map[string]any{"request_id": created.ID},
		})
	}

	respondJSON(w, http.StatusCreated, created)
}

// ListForConnection handles GET /api/v1/connections/{connection_id}/deletion-requests
// and returns the requests the caller must act on.
func (h *DeletionHandler) ListForConnection(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.deletionService.RequestsForConnection)
}

// ListMine handles GET /api/v1/connections/{connection_id}/deletion-requests/mine
// and returns the caller's own requests.
func (h *DeletionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.deletionService.UserRequests)
}

func (h *DeletionHandler) list(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, connectionID, userID string) ([]*models.DeletionRequest, error)) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	connectionID := chi.URLParam(r, "connection_id")

	requests, err := fn(ctx, connectionID, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("connection_id", connectionID).
			Str("user_id", userID).
			Msg("Failed to list deletion requests")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"requests": requests,
		"total":    len(requests),
	})
}

// RespondDeletionRequest represents the request body for answering a
// deletion request
type RespondDeletionRequest struct {
	Status string `json:"status"`
}

// Respond handles POST /api/v1/deletion-requests/{request_id}/respond
func (h *DeletionHandler) Respond(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	requestID := chi.URLParam(r, "request_id")

	var req RespondDeletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Resolve the members up front: an approval deletes the target,
	// after which the connection can no longer be derived from it.
	conn, connErr := h.deletionService.ConnectionForRequest(ctx, requestID)

	responded, err := h.deletionService.Respond(ctx, requestID, userID, models.RequestStatus(req.Status))
	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", requestID).
			Str("user_id", userID).
			Msg("Failed to respond to deletion request")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("request_id", requestID).
		Str("status", string(responded.Status)).
		Msg("Deletion request responded")

	if connErr == nil {
		h.publish(r, events.Event{
			Type:    events.TypeDeletionRequestResponded,
			UserIDs: []string{conn.User1ID, conn.User2ID},
			Data: map[string]any{
				"request_id": responded.ID,
				"status":     string(responded.Status),
			},
		})
	}

	respondJSON(w, http.StatusOK, responded)
}

func (h *DeletionHandler) publish(r *http.Request, ev events.Event) {
	if err := h.bus.Publish(r.Context(), ev); err != nil {
		log.Error().
			Err(err).
			Str("event_type", ev.Type).
			Msg("Failed to publish event")
	}
}
