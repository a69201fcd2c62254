package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/StiliyanIliev27/Memora/internal/events"
	"github.com/StiliyanIliev27/Memora/internal/markers"
	"github.com/StiliyanIliev27/Memora/internal/middleware"
	"github.com/StiliyanIliev27/Memora/internal/models"
	"github.com/StiliyanIliev27/Memora/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MemoryHandler handles memory-related HTTP requests
type MemoryHandler struct {
	memoryService     *services.MemoryService
	connectionService *services.ConnectionService
	bus               events.Publisher
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(memoryService *services.MemoryService, connectionService *services.ConnectionService, bus events.Publisher) *MemoryHandler {
	return &MemoryHandler{
		memoryService:     memoryService,
		connectionService: connectionService,
		bus:               bus,
	}
}

// CreateMemoryRequest represents the request body for pinning a memory
type CreateMemoryRequest struct {
	ConnectionID *string `json:"connection_id,omitempty"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	LocationName string  `json:"location_name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	MemoryType   string  `json:"memory_type"`
	FileURL      *string `json:"file_url,omitempty"`
	PlaceID      *string `json:"place_id,omitempty"`
	City         *string `json:"city,omitempty"`
	Country      *string `json:"country,omitempty"`
	State        *string `json:"state,omitempty"`
}

// Create handles POST /api/v1/memories
func (h *MemoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	memory, err := h.memoryService.Create(ctx, userID, services.CreateMemoryInput{
		ConnectionID: req.ConnectionID,
		Title:        req.Title,
		Description:  req.Description,
		LocationName: req.LocationName,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		MemoryType:   models.MemoryType(req.MemoryType),
		FileURL:      req.FileURL,
		PlaceID:      req.PlaceID,
		City:         req.City,
		Country:      req.Country,
		State:        req.State,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Msg("Failed to create memory")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("memory_id", memory.ID).
		Str("user_id", userID).
		Str("memory_type", string(memory.MemoryType)).
		Msg("Memory created")

	h.notifyMembers(r, events.TypeMemoryCreated, memory, userID)

	respondJSON(w, http.StatusCreated, memory)
}

// List handles GET /api/v1/memories
func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	memories, err := h.memoryService.GetUserMemories(ctx, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Msg("Failed to list memories")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"memories": memories,
		"markers":  markers.ProjectAll(memories),
		"total":    len(memories),
	})
}

// ListByConnection handles GET /api/v1/connections/{connection_id}/memories
func (h *MemoryHandler) ListByConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	connectionID := chi.URLParam(r, "connection_id")

	memories, err := h.memoryService.GetMemoriesByConnection(ctx, connectionID, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("connection_id", connectionID).
			Str("user_id", userID).
			Msg("Failed to list connection memories")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"memories": memories,
		"markers":  markers.ProjectAll(memories),
		"total":    len(memories),
	})
}

// UpdateMemoryRequest represents the request body for editing a memory
type UpdateMemoryRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Update handles PATCH /api/v1/memories/{memory_id}
func (h *MemoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	memoryID := chi.URLParam(r, "memory_id")

	var req UpdateMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	memory, err := h.memoryService.Update(ctx, memoryID, userID, req.Title, req.Description)
	if err != nil {
		log.Error().
			Err(err).
			Str("memory_id", memoryID).
			Str("user_id", userID).
			Msg("Failed to update memory")
		respondAppError(w, err)
		return
	}

	h.notifyMembers(r, events.TypeMemoryUpdated, memory, userID)

	respondJSON(w, http.StatusOK, memory)
}

// Delete handles DELETE /api/v1/memories/{memory_id}
func (h *MemoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	memoryID := chi.URLParam(r, "memory_id")

	memory, err := h.memoryService.Delete(ctx, memoryID, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("memory_id", memoryID).
			Str("user_id", userID).
			Msg("Failed to delete memory")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("memory_id", memoryID).
		Str("user_id", userID).
		Msg("Memory deleted")

	h.notifyMembers(r, events.TypeMemoryDeleted, memory, userID)

	w.WriteHeader(http.StatusNoContent)
}

// notifyMembers publishes a memory event addressed to everyone who can
// see the memory: just the creator for personal memories, both members
// for shared ones.
func (h *MemoryHandler) notifyMembers(r *http.Request, eventType string, memory *models.Memory, userID string) {
	ctx := r.Context()

	userIDs := []string{memory.CreatedBy}
	if memory.ConnectionID != nil {
		conn, err := h.connectionService.GetByID(ctx, *memory.ConnectionID, userID)
		if err != nil {
			log.Error().
				Err(err).
				Str("memory_id", memory.ID).
				Msg("Failed to resolve connection for memory event")
		} else {
			userIDs = []string{conn.User1ID, conn.User2ID}
		}
	}

	ev := events.Event{
		Type:    eventType,
		UserIDs: userIDs,
		Data:    map[string]any{"memory_id": memory.ID},
	}
	if err := h.bus.Publish(ctx, ev); err != nil {
		log.Error().
			Err(err).
			Str("event_type", eventType).
			Msg("Failed to publish event")
	}
}
