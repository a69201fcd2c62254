package handlers

import (
	"net/http"
	"strconv"

	"github.com/StiliyanIliev27/Memora/internal/services"

	"github.com/rs/zerolog/log"
)

// LocationHandler handles geocoding proxy requests
type LocationHandler struct {
	locationService *services.LocationService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locationService *services.LocationService) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
	}
}

// Search handles GET /api/v1/locations/search?q=
func (h *LocationHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")

	suggestions, err := h.locationService.Search(ctx, query)
	if err != nil {
		log.Error().
			Err(err).
			Str("query", query).
			Msg("Location search failed")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
	})
}

// Reverse handles GET /api/v1/locations/reverse?lng=&lat=
func (h *LocationHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		respondError(w, "lng must be a number", http.StatusBadRequest)
		return
	}
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		respondError(w, "lat must be a number", http.StatusBadRequest)
		return
	}

	suggestions, err := h.locationService.Reverse(ctx, lng, lat)
	if err != nil {
		log.Error().
			Err(err).
			Float64("lng", lng).
			Float64("lat", lat).
			Msg("Reverse geocoding failed")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
	})
}
