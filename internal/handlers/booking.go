package handlers

import (
	"encoding/json"
	"net/http"

	"tourzen-backend/internal/middleware"
	"tourzen-backend/internal/models"
	"tourzen-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookingService *services.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// Create handles POST /api/v1/bookings. An Idempotency-Key header makes the
// request safely retriable.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSession(ctx)

	var input services.BookingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")

	booking, err := h.bookingService.CreateBooking(ctx, session, input, idempotencyKey)
	if err != nil {
		log.Warn().
			Err(err).
			Str("user_id", session.UserID).
			Str("package_id", input.PackageID).
			Msg("Booking creation rejected")
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", session.UserID).
		Str("package_id", booking.PackageID).
		Str("booking_id", booking.ID).
		Msg("Booking created")

	respondJSON(w, http.StatusCreated, booking)
}

// UpdateStatusRequest is the target status for a booking transition
type UpdateStatusRequest struct {
	Status models.BookingStatus `json:"status"`
}

// UpdateStatus handles PATCH /api/v1/bookings/{id}/status. Completed is the
// only reachable target for now; Accepted stays reserved until the workflow
// grows an intermediate step.
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSession(ctx)
	bookingID := chi.URLParam(r, "id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Status != models.StatusCompleted {
		respondError(w, "status must be Completed", http.StatusBadRequest)
		return
	}

	booking, err := h.bookingService.ConfirmBooking(ctx, bookingID, session)
	if err != nil {
		log.Warn().
			Err(err).
			Str("user_id", session.UserID).
			Str("booking_id", bookingID).
			Msg("Booking confirmation rejected")
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", session.UserID).
		Str("booking_id", booking.ID).
		Msg("Booking confirmed")

	respondJSON(w, http.StatusOK, booking)
}

// MyBookings handles GET /api/v1/bookings/my-bookings
func (h *BookingHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSession(ctx)

	bookings, err := h.bookingService.ListBookingsForUser(ctx, session)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, bookings)
}

// GuideBookings handles GET /api/v1/bookings/guide-bookings
func (h *BookingHandler) GuideBookings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSession(ctx)

	bookings, err := h.bookingService.ListBookingsForGuide(ctx, session)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, bookings)
}
