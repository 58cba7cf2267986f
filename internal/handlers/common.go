package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"tourzen-backend/internal/apperr"

	"github.com/rs/zerolog/log"
)

// ErrorResponse is the error body clients read the message from
type ErrorResponse struct {
	Message string      `json:"message"`
	Code    apperr.Code `json:"code,omitempty"`
	Details any         `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Message: message})
}

// respondDomainError maps a typed domain error to its HTTP status. Anything
// that is not an apperr is logged and reported as a 500.
func respondDomainError(w http.ResponseWriter, err error) {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		respondJSON(w, domainErr.HTTPStatus(), ErrorResponse{
			Message: domainErr.Message,
			Code:    domainErr.Code,
			Details: domainErr.Details,
		})
		return
	}

	log.Error().Err(err).Msg("Unhandled error")
	respondError(w, "internal error", http.StatusInternalServerError)
}
