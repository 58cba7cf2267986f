package services

import (
	"context"
	"errors"
	"time"

	"tourzen-backend/internal/apperr"
	"tourzen-backend/internal/models"
	"tourzen-backend/internal/validation"

	"github.com/google/uuid"
)

// BookingStore is the persistence surface the booking service needs.
type BookingStore interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByIdempotencyKey(ctx context.Context, bookerID, key string) (*models.Booking, error)
	CompletePending(ctx context.Context, id string) (bool, error)
	ListByBooker(ctx context.Context, bookerID string) ([]models.Booking, error)
	ListByGuide(ctx context.Context, guideID string) ([]models.Booking, error)
	HasActiveBooking(ctx context.Context, bookerID, packageID string) (bool, error)
}

// Notifier pushes best-effort booking events to connected clients.
type Notifier interface {
	BookingCreated(guideID string, booking models.Booking)
	BookingConfirmed(bookerID string, booking models.Booking)
}

// BookingInput is the client-supplied part of a booking. Everything else is
// snapshotted server-side from the package and the session user.
type BookingInput struct {
	PackageID string `json:"package_id" validate:"required"`
	Notes     string `json:"notes" validate:"omitempty,max=1000"`
}

// BookingService creates bookings and drives their status transitions
type BookingService struct {
	bookings BookingStore
	packages PackageStore
	users    UserStore
	notifier Notifier
	validate *validation.Validator
}

// NewBookingService creates a new booking service
func NewBookingService(bookings BookingStore, packages PackageStore, users UserStore, notifier Notifier) *BookingService {
	return &BookingService{
		bookings: bookings,
		packages: packages,
		users:    users,
		notifier: notifier,
		validate: validation.New(),
	}
}

// CreateBooking books a package for the session user. The booker must not be
// the package owner and must not already hold an active booking for the
// package; the latter is enforced by the insert itself, not by a
// read-then-write check. A non-empty idempotencyKey makes retries safe: the
// same key returns the booking the first attempt created.
func (s *BookingService) CreateBooking(ctx context.Context, session Session, input BookingInput, idempotencyKey string) (*models.Booking, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	pkg, err := s.packages.GetByID(ctx, input.PackageID)
	if err != nil {
		return nil, err
	}

	if pkg.OwnerID == session.UserID {
		return nil, apperr.Forbidden("cannot book own package")
	}

	if idempotencyKey != "" {
		existing, err := s.bookings.GetByIdempotencyKey(ctx, session.UserID, idempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}

	booker, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:               uuid.New().String(),
		PackageID:        pkg.ID,
		BookerID:         booker.ID,
		PackageName:      pkg.TourName,
		PackageImage:     pkg.Image,
		Price:            pkg.Price,
		TouristName:      booker.Name,
		TouristEmail:     booker.Email,
		TouristImage:     booker.Photo,
		SelectedTourDate: pkg.DepartureDate,
		GuideName:        pkg.GuideName,
		GuideContactNo:   pkg.GuideContactNo,
		Notes:            input.Notes,
		Status:           models.StatusPending,
		CreatedAt:        time.Now(),
	}
	if idempotencyKey != "" {
		booking.IdempotencyKey = &idempotencyKey
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		// A concurrent retry with the same key can lose the insert race;
		// the stored booking is the answer either way.
		if idempotencyKey != "" && errors.Is(err, apperr.ErrConflict) {
			if existing, lookupErr := s.bookings.GetByIdempotencyKey(ctx, session.UserID, idempotencyKey); lookupErr == nil {
				return existing, nil
			}
		}
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.BookingCreated(pkg.OwnerID, *booking)
	}

	return booking, nil
}

// ConfirmBooking transitions a booking from Pending to Completed. Only the
// guide of the booked package may confirm.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID string, session Session) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	pkg, err := s.packages.GetByID(ctx, booking.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg.OwnerID != session.UserID {
		return nil, apperr.Forbidden("only the guide can confirm a booking")
	}

	transitioned, err := s.bookings.CompletePending(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		if booking.Status == models.StatusCompleted {
			return nil, apperr.InvalidState("booking already completed")
		}
		return nil, apperr.InvalidState("booking is not pending")
	}

	booking.Status = models.StatusCompleted

	if s.notifier != nil {
		s.notifier.BookingConfirmed(booking.BookerID, *booking)
	}

	return booking, nil
}

// ListBookingsForUser returns the caller's bookings, newest first
func (s *BookingService) ListBookingsForUser(ctx context.Context, session Session) ([]models.Booking, error) {
	return s.bookings.ListByBooker(ctx, session.UserID)
}

// ListBookingsForGuide returns bookings against the caller's packages,
// newest first. Guides need this view to find bookings to confirm.
func (s *BookingService) ListBookingsForGuide(ctx context.Context, session Session) ([]models.Booking, error) {
	return s.bookings.ListByGuide(ctx, session.UserID)
}
