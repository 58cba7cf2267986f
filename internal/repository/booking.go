package repository

import (
	"context"
	"errors"
	"fmt"

	"tourzen-backend/internal/apperr"
	"tourzen-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Unique index names from schema.sql, used to tell a double-booking apart
// from an idempotent retry when an insert hits a unique violation.
const (
	activeBookingIndex = "bookings_active_per_package"
	idempotencyIndex   = "bookings_idempotency_key"
)

const uniqueViolation = "23505"

// BookingRepository handles database operations for bookings
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	id, package_id, booker_id, package_name, package_image, price,
	tourist_name, tourist_email, tourist_image, selected_tour_date,
	guide_name, guide_contact_no, notes, status, idempotency_key, created_at`

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.PackageID, &b.BookerID, &b.PackageName, &b.PackageImage,
		&b.Price, &b.TouristName, &b.TouristEmail, &b.TouristImage,
		&b.SelectedTourDate, &b.GuideName, &b.GuideContactNo, &b.Notes,
		&b.Status, &b.IdempotencyKey, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a booking. The one-active-booking-per-user-per-package
// invariant is the unique index on (booker_id, package_id), so the check and
// the insert are a single atomic statement; two concurrent creates cannot
// both succeed.
func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, package_id, booker_id, package_name, package_image, price,
			tourist_name, tourist_email, tourist_image, selected_tour_date,
			guide_name, guide_contact_no, notes, status, idempotency_key, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.Exec(ctx, query,
		b.ID, b.PackageID, b.BookerID, b.PackageName, b.PackageImage, b.Price,
		b.TouristName, b.TouristEmail, b.TouristImage, b.SelectedTourDate,
		b.GuideName, b.GuideContactNo, b.Notes, b.Status, b.IdempotencyKey,
		b.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			switch pgErr.ConstraintName {
			case activeBookingIndex:
				return apperr.Conflict("already booked")
			case idempotencyIndex:
				return apperr.Conflict("duplicate idempotency key")
			}
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("booking not found")
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// GetByIdempotencyKey retrieves the booking a retried request already created
func (r *BookingRepository) GetByIdempotencyKey(ctx context.Context, bookerID, key string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booker_id = $1 AND idempotency_key = $2`
	b, err := scanBooking(r.db.QueryRow(ctx, query, bookerID, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("booking not found")
		}
		return nil, fmt.Errorf("failed to get booking by idempotency key: %w", err)
	}
	return b, nil
}

// CompletePending transitions a booking from Pending to Completed. The
// status guard is part of the UPDATE, so a double-confirm race resolves to
// exactly one winner. Returns false when the booking was not Pending.
func (r *BookingRepository) CompletePending(ctx context.Context, id string) (bool, error) {
	query := `UPDATE bookings SET status = $1 WHERE id = $2 AND status = $3`
	result, err := r.db.Exec(ctx, query, models.StatusCompleted, id, models.StatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to complete booking: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListByBooker retrieves a user's bookings, newest first
func (r *BookingRepository) ListByBooker(ctx context.Context, bookerID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booker_id = $1
		ORDER BY created_at DESC, id`
	rows, err := r.db.Query(ctx, query, bookerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListByGuide retrieves bookings against the guide's packages, newest first
func (r *BookingRepository) ListByGuide(ctx context.Context, guideID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumnsPrefixed("b") + `
		FROM bookings b
		JOIN packages p ON p.id = b.package_id
		WHERE p.owner_id = $1
		ORDER BY b.created_at DESC, b.id`
	rows, err := r.db.Query(ctx, query, guideID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guide bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// HasActiveBooking reports whether the user already holds an active booking
// for the package. Used for the read-model hint only; createBooking relies
// on the unique index, not on this check.
func (r *BookingRepository) HasActiveBooking(ctx context.Context, bookerID, packageID string) (bool, error) {
	query := `SELECT EXISTS(
		SELECT 1 FROM bookings
		WHERE booker_id = $1 AND package_id = $2 AND status <> $3
	)`
	var exists bool
	err := r.db.QueryRow(ctx, query, bookerID, packageID, models.StatusRejected).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active booking: %w", err)
	}
	return exists, nil
}

func bookingColumnsPrefixed(alias string) string {
	return `
	` + alias + `.id, ` + alias + `.package_id, ` + alias + `.booker_id, ` +
		alias + `.package_name, ` + alias + `.package_image, ` + alias + `.price, ` +
		alias + `.tourist_name, ` + alias + `.tourist_email, ` + alias + `.tourist_image, ` +
		alias + `.selected_tour_date, ` + alias + `.guide_name, ` + alias + `.guide_contact_no, ` +
		alias + `.notes, ` + alias + `.status, ` + alias + `.idempotency_key, ` + alias + `.created_at`
}

func collectBookings(rows pgx.Rows) ([]models.Booking, error) {
	bookings := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}
	return bookings, nil
}
