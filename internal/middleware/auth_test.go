package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/StiliyanIliev27/Memora/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedRequest(t *testing.T, header string) *httptest.ResponseRecorder {
	t.Helper()

	userService := services.NewUserService(nil, "test-secret")
	var gotUserID string
	handler := AuthMiddleware(userService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		assert.NotEmpty(t, gotUserID)
	}
	return rec
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	userService := services.NewUserService(nil, "test-secret")
	token, err := userService.GenerateJWT("user-1")
	require.NoError(t, err)

	rec := authedRequest(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.token"},
		{"missing token part", "Bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := authedRequest(t, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthMiddlewareRejectsForeignSecret(t *testing.T) {
	other := services.NewUserService(nil, "other-secret")
	token, err := other.GenerateJWT("user-1")
	require.NoError(t, err)

	rec := authedRequest(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateWebSocketToken(t *testing.T) {
	userService := services.NewUserService(nil, "test-secret")
	token, err := userService.GenerateJWT("user-1")
	require.NoError(t, err)

	userID, err := ValidateWebSocketToken(token, userService)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = ValidateWebSocketToken("", userService)
	assert.Error(t, err)
}

func TestGetUserIDWithoutContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetUserID(req.Context()))
}
