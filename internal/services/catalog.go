package services

import (
	"context"
	"time"

	"tourzen-backend/internal/apperr"
	"tourzen-backend/internal/models"
	"tourzen-backend/internal/validation"

	"github.com/google/uuid"
)

const (
	defaultPageSize  = 12
	maxPageSize      = 100
	featuredPageSize = 5
)

// PackageStore is the persistence surface the catalog and booking services
// need for packages.
type PackageStore interface {
	Create(ctx context.Context, pkg *models.Package) error
	GetByID(ctx context.Context, id string) (*models.Package, error)
	Update(ctx context.Context, pkg *models.Package) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, search, sort string, limit, offset int) ([]models.Package, int, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Package, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Package, error)
}

// PackageInput is the client-supplied part of a package. Guide identity
// fields are deliberately absent: they are stamped from the session user so
// a client can never submit someone else's identity.
type PackageInput struct {
	TourName          string  `json:"tour_name" validate:"required"`
	Image             string  `json:"image" validate:"required,url"`
	Duration          string  `json:"duration" validate:"required"`
	DepartureLocation string  `json:"departure_location" validate:"required"`
	Destination       string  `json:"destination" validate:"required"`
	Price             float64 `json:"price" validate:"gte=0"`
	DepartureDate     string  `json:"departure_date" validate:"required,datetime=2006-01-02"`
	PackageDetails    string  `json:"package_details" validate:"required"`
	GuideContactNo    string  `json:"guide_contact_no" validate:"omitempty,max=32"`
}

// ListQuery filters and pages the catalog
type ListQuery struct {
	Search string
	Page   int
	Limit  int
	Sort   string
}

// PackageList is one page of the catalog
type PackageList struct {
	Items      []models.Package `json:"items"`
	TotalCount int              `json:"total_count"`
	TotalPages int              `json:"total_pages"`
}

// PackageBookingState is the package detail enriched with the caller's
// relationship to it. The flags are a UX hint; createBooking re-validates
// both server-side.
type PackageBookingState struct {
	Package   models.Package `json:"package"`
	HasBooked bool           `json:"has_booked"`
	IsOwner   bool           `json:"is_owner"`
}

// CatalogService handles tour package CRUD and catalog queries
type CatalogService struct {
	packages PackageStore
	bookings BookingStore
	users    UserStore
	validate *validation.Validator
}

// NewCatalogService creates a new catalog service
func NewCatalogService(packages PackageStore, bookings BookingStore, users UserStore) *CatalogService {
	return &CatalogService{
		packages: packages,
		bookings: bookings,
		users:    users,
		validate: validation.New(),
	}
}

// CreatePackage creates a package owned by the session user
func (s *CatalogService) CreatePackage(ctx context.Context, session Session, input PackageInput) (*models.Package, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}
	departureDate, _ := time.Parse("2006-01-02", input.DepartureDate)

	owner, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	pkg := &models.Package{
		ID:                uuid.New().String(),
		OwnerID:           owner.ID,
		TourName:          input.TourName,
		Image:             input.Image,
		Duration:          input.Duration,
		DepartureLocation: input.DepartureLocation,
		Destination:       input.Destination,
		Price:             input.Price,
		DepartureDate:     departureDate,
		PackageDetails:    input.PackageDetails,
		GuideName:         owner.Name,
		GuidePhoto:        owner.Photo,
		GuideEmail:        owner.Email,
		GuideContactNo:    input.GuideContactNo,
		CreatedAt:         time.Now(),
	}

	if err := s.packages.Create(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// UpdatePackage replaces the mutable fields of a package owned by the caller
func (s *CatalogService) UpdatePackage(ctx context.Context, packageID string, session Session, input PackageInput) (*models.Package, error) {
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if pkg.OwnerID != session.UserID {
		return nil, apperr.Forbidden("only the owner can update a package")
	}

	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}
	departureDate, _ := time.Parse("2006-01-02", input.DepartureDate)

	owner, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	pkg.TourName = input.TourName
	pkg.Image = input.Image
	pkg.Duration = input.Duration
	pkg.DepartureLocation = input.DepartureLocation
	pkg.Destination = input.Destination
	pkg.Price = input.Price
	pkg.DepartureDate = departureDate
	pkg.PackageDetails = input.PackageDetails
	pkg.GuideName = owner.Name
	pkg.GuidePhoto = owner.Photo
	pkg.GuideEmail = owner.Email
	pkg.GuideContactNo = input.GuideContactNo

	if err := s.packages.Update(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// DeletePackage deletes a package owned by the caller
func (s *CatalogService) DeletePackage(ctx context.Context, packageID string, session Session) error {
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		return err
	}
	if pkg.OwnerID != session.UserID {
		return apperr.Forbidden("only the owner can delete a package")
	}
	return s.packages.Delete(ctx, packageID)
}

// ListPackages returns one page of the catalog
func (s *CatalogService) ListPackages(ctx context.Context, query ListQuery) (*PackageList, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultPageSize
	}
	if query.Limit > maxPageSize {
		query.Limit = maxPageSize
	}

	offset := (query.Page - 1) * query.Limit
	items, total, err := s.packages.List(ctx, query.Search, query.Sort, query.Limit, offset)
	if err != nil {
		return nil, err
	}

	totalPages := (total + query.Limit - 1) / query.Limit

	return &PackageList{
		Items:      items,
		TotalCount: total,
		TotalPages: totalPages,
	}, nil
}

// GetPackage returns a package with its booking count
func (s *CatalogService) GetPackage(ctx context.Context, packageID string) (*models.Package, error) {
	return s.packages.GetByID(ctx, packageID)
}

// GetPackageWithBookingState returns the package detail plus the caller's
// relationship to it, used by clients to decide whether to offer booking.
func (s *CatalogService) GetPackageWithBookingState(ctx context.Context, packageID string, session *Session) (*PackageBookingState, error) {
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		return nil, err
	}

	state := &PackageBookingState{Package: *pkg}
	if session == nil {
		return state, nil
	}

	state.IsOwner = pkg.OwnerID == session.UserID
	hasBooked, err := s.bookings.HasActiveBooking(ctx, session.UserID, packageID)
	if err != nil {
		return nil, err
	}
	state.HasBooked = hasBooked

	return state, nil
}

// ListFeatured returns the landing-page subset: the most-booked packages,
// newest first on ties.
func (s *CatalogService) ListFeatured(ctx context.Context) ([]models.Package, error) {
	return s.packages.ListFeatured(ctx, featuredPageSize)
}

// GetMyPackages returns the caller's own packages
func (s *CatalogService) GetMyPackages(ctx context.Context, session Session) ([]models.Package, error) {
	return s.packages.ListByOwner(ctx, session.UserID)
}
