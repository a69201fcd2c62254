package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/StiliyanIliev27/Memora/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestRespondAppErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"not found", apperr.NotFoundf("connection not found"), http.StatusNotFound, "connection not found"},
		{"conflict", apperr.Conflictf("connection already exists"), http.StatusConflict, "connection already exists"},
		{"validation", apperr.Validationf("invalid email"), http.StatusBadRequest, "invalid email"},
		{"forbidden", apperr.Forbiddenf("not a member"), http.StatusForbidden, "not a member"},
		{"unauthorized", apperr.Unauthorizedf("invalid credentials"), http.StatusUnauthorized, "invalid credentials"},
		{"unknown", errors.New("pool exhausted"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondAppError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, decodeErrorBody(t, rec))
		})
	}
}

func TestRespondAppErrorHidesWrappedCause(t *testing.T) {
	cause := errors.New("no rows in result set")
	err := apperr.Wrap(apperr.KindNotFound, "connection not found", cause)

	rec := httptest.NewRecorder()
	respondAppError(rec, err)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "connection not found", decodeErrorBody(t, rec))
	assert.NotContains(t, rec.Body.String(), "no rows")
}

func TestRespondAppErrorKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("loading memory: %w", apperr.NotFoundf("memory not found"))

	rec := httptest.NewRecorder()
	respondAppError(rec, err)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "memory not found", decodeErrorBody(t, rec))
}
