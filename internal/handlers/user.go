package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/StiliyanIliev27/Memora/internal/middleware"
	"github.com/StiliyanIliev27/Memora/internal/models"
	"github.com/StiliyanIliev27/Memora/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// SignUpRequest represents the request body for registration
type SignUpRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	Gender   *string `json:"gender,omitempty"`
}

// AuthResponse is returned by both signup and signin
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// SignUp handles POST /api/v1/auth/signup
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.userService.SignUp(ctx, req.Email, req.Password, req.Name, req.Gender)
	if err != nil {
		log.Error().
			Err(err).
			Str("email", req.Email).
			Msg("Failed to sign up user")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("User signed up")

	respondJSON(w, http.StatusCreated, AuthResponse{User: user, Token: token})
}

// SignInRequest represents the request body for login
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn handles POST /api/v1/auth/signin
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.userService.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		log.Warn().
			Err(err).
			Str("email", req.Email).
			Msg("Failed sign in attempt")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{User: user, Token: token})
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.userService.Profile(ctx, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Msg("Failed to load profile")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdateProfileRequest represents the request body for editing the
// profile. Absent fields are left unchanged.
type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// UpdateMe handles PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpdateProfile(ctx, userID, services.ProfileUpdate{
		Name:      req.Name,
		Gender:    req.Gender,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Msg("Failed to update profile")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Msg("Profile updated")

	respondJSON(w, http.StatusOK, user)
}

// PushTokenRequest represents the request body for registering a device token
type PushTokenRequest struct {
	Token string `json:"token"`
}

// UpdatePushToken handles PUT /api/v1/users/me/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var tok *string
	if req.Token != "" {
		tok = &req.Token
	}

	if err := h.userService.UpdatePushToken(ctx, userID, tok); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Msg("Failed to update push token")
		respondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
