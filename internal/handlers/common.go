package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/StiliyanIliev27/Memora/internal/apperr"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondAppError maps a service error to an HTTP response. Kinded
// errors carry a user-safe message; anything else becomes an opaque
// 500 (the cause is logged at the call site).
func respondAppError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		respondError(w, userMessage(err), http.StatusNotFound)
	case apperr.KindConflict:
		respondError(w, userMessage(err), http.StatusConflict)
	case apperr.KindValidation:
		respondError(w, userMessage(err), http.StatusBadRequest)
	case apperr.KindForbidden:
		respondError(w, userMessage(err), http.StatusForbidden)
	case apperr.KindUnauthorized:
		respondError(w, userMessage(err), http.StatusUnauthorized)
	default:
		respondError(w, "internal server error", http.StatusInternalServerError)
	}
}

// userMessage strips the wrapped cause from a kinded error so driver
// internals never leak into response bodies.
func userMessage(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}
