package handlers

import (
	"encoding/json"
	"net/http"

	"tourzen-backend/internal/middleware"
	"tourzen-backend/internal/models"
	"tourzen-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles session-related HTTP requests
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// CreateSessionRequest carries the third-party identity assertion
type CreateSessionRequest struct {
	IDToken string `json:"id_token"`
}

// SessionResponse is the issued session token plus the user it belongs to
type SessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// CreateSession handles POST /api/v1/auth/session
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, user, err := h.authService.ExchangeIdentity(ctx, req.IDToken)
	if err != nil {
		log.Warn().Err(err).Msg("Identity exchange failed")
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("Session created")

	respondJSON(w, http.StatusOK, SessionResponse{Token: token, User: user})
}

// EndSession handles DELETE /api/v1/auth/session
func (h *AuthHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSession(ctx)

	h.authService.EndSession(ctx, session)

	w.WriteHeader(http.StatusNoContent)
}
