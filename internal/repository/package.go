package repository

import (
	"context"
	"errors"
	"fmt"

	"tourzen-backend/internal/apperr"
	"tourzen-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PackageRepository handles database operations for tour packages
type PackageRepository struct {
	db *pgxpool.Pool
}

// NewPackageRepository creates a new package repository
func NewPackageRepository(db *pgxpool.Pool) *PackageRepository {
	return &PackageRepository{db: db}
}

// booking_count is always derived by counting bookings at read time, never
// kept as a mutable counter, so concurrent booking creation cannot lose
// updates.
const packageColumns = `
	p.id, p.owner_id, p.tour_name, p.image, p.duration,
	p.departure_location, p.destination, p.price, p.departure_date,
	p.package_details, p.guide_name, p.guide_photo, p.guide_email,
	p.guide_contact_no,
	(SELECT COUNT(*) FROM bookings b WHERE b.package_id = p.id) AS booking_count,
	p.created_at`

func scanPackage(row pgx.Row) (*models.Package, error) {
	var pkg models.Package
	err := row.Scan(
		&pkg.ID, &pkg.OwnerID, &pkg.TourName, &pkg.Image, &pkg.Duration,
		&pkg.DepartureLocation, &pkg.Destination, &pkg.Price, &pkg.DepartureDate,
		&pkg.PackageDetails, &pkg.GuideName, &pkg.GuidePhoto, &pkg.GuideEmail,
		&pkg.GuideContactNo, &pkg.BookingCount, &pkg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// Create creates a new package
func (r *PackageRepository) Create(ctx context.Context, pkg *models.Package) error {
	query := `
		INSERT INTO packages (
			id, owner_id, tour_name, image, duration, departure_location,
			destination, price, departure_date, package_details,
			guide_name, guide_photo, guide_email, guide_contact_no, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Exec(ctx, query,
		pkg.ID, pkg.OwnerID, pkg.TourName, pkg.Image, pkg.Duration,
		pkg.DepartureLocation, pkg.Destination, pkg.Price, pkg.DepartureDate,
		pkg.PackageDetails, pkg.GuideName, pkg.GuidePhoto, pkg.GuideEmail,
		pkg.GuideContactNo, pkg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create package: %w", err)
	}
	return nil
}

// GetByID retrieves a package by ID with its booking count
func (r *PackageRepository) GetByID(ctx context.Context, id string) (*models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages p WHERE p.id = $1`
	pkg, err := scanPackage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("package not found")
		}
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return pkg, nil
}

// Update replaces the mutable fields of a package
func (r *PackageRepository) Update(ctx context.Context, pkg *models.Package) error {
	query := `
		UPDATE packages SET
			tour_name = $1, image = $2, duration = $3, departure_location = $4,
			destination = $5, price = $6, departure_date = $7,
			package_details = $8, guide_name = $9, guide_photo = $10,
			guide_email = $11, guide_contact_no = $12
		WHERE id = $13
	`
	result, err := r.db.Exec(ctx, query,
		pkg.TourName, pkg.Image, pkg.Duration, pkg.DepartureLocation,
		pkg.Destination, pkg.Price, pkg.DepartureDate, pkg.PackageDetails,
		pkg.GuideName, pkg.GuidePhoto, pkg.GuideEmail, pkg.GuideContactNo,
		pkg.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update package: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("package not found")
	}
	return nil
}

// Delete deletes a package by ID. Deleting a missing package is reported,
// not silently ignored.
func (r *PackageRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM packages WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete package: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("package not found")
	}
	return nil
}

// List retrieves packages matching the search filter with pagination.
// The search is a case-insensitive substring match on the tour name.
func (r *PackageRepository) List(ctx context.Context, search, sort string, limit, offset int) ([]models.Package, int, error) {
	countQuery := `SELECT COUNT(*) FROM packages p WHERE ($1 = '' OR p.tour_name ILIKE '%' || $1 || '%')`
	var total int
	if err := r.db.QueryRow(ctx, countQuery, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count packages: %w", err)
	}

	orderBy := "p.created_at DESC, p.id"
	switch sort {
	case "price_asc":
		orderBy = "p.price ASC, p.id"
	case "price_desc":
		orderBy = "p.price DESC, p.id"
	}

	query := `SELECT ` + packageColumns + `
		FROM packages p
		WHERE ($1 = '' OR p.tour_name ILIKE '%' || $1 || '%')
		ORDER BY ` + orderBy + `
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	packages, err := collectPackages(rows)
	if err != nil {
		return nil, 0, err
	}
	return packages, total, nil
}

// ListByOwner retrieves all packages owned by a guide, newest first
func (r *PackageRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Package, error) {
	query := `SELECT ` + packageColumns + `
		FROM packages p
		WHERE p.owner_id = $1
		ORDER BY p.created_at DESC, p.id`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages by owner: %w", err)
	}
	defer rows.Close()

	return collectPackages(rows)
}

// ListFeatured retrieves the most-booked packages for the landing page
func (r *PackageRepository) ListFeatured(ctx context.Context, limit int) ([]models.Package, error) {
	query := `SELECT ` + packageColumns + `
		FROM packages p
		ORDER BY booking_count DESC, p.created_at DESC, p.id
		LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured packages: %w", err)
	}
	defer rows.Close()

	return collectPackages(rows)
}

func collectPackages(rows pgx.Rows) ([]models.Package, error) {
	packages := []models.Package{}
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		packages = append(packages, *pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating packages: %w", err)
	}
	return packages, nil
}
