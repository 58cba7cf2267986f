package services_test

import (
	"context"

	"tourzen-backend/internal/apperr"
	"tourzen-backend/internal/models"
	"tourzen-backend/internal/services"
)

type userStoreMock struct {
	upsertFn  func(ctx context.Context, user *models.User) (*models.User, error)
	getByIDFn func(ctx context.Context, id string) (*models.User, error)
}

func (m *userStoreMock) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	return m.upsertFn(ctx, user)
}

func (m *userStoreMock) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.getByIDFn(ctx, id)
}

type packageStoreMock struct {
	createFn       func(ctx context.Context, pkg *models.Package) error
	getByIDFn      func(ctx context.Context, id string) (*models.Package, error)
	updateFn       func(ctx context.Context, pkg *models.Package) error
	deleteFn       func(ctx context.Context, id string) error
	listFn         func(ctx context.Context, search, sort string, limit, offset int) ([]models.Package, int, error)
	listByOwnerFn  func(ctx context.Context, ownerID string) ([]models.Package, error)
	listFeaturedFn func(ctx context.Context, limit int) ([]models.Package, error)
}

func (m *packageStoreMock) Create(ctx context.Context, pkg *models.Package) error {
	return m.createFn(ctx, pkg)
}

func (m *packageStoreMock) GetByID(ctx context.Context, id string) (*models.Package, error) {
	return m.getByIDFn(ctx, id)
}

func (m *packageStoreMock) Update(ctx context.Context, pkg *models.Package) error {
	return m.updateFn(ctx, pkg)
}

func (m *packageStoreMock) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *packageStoreMock) List(ctx context.Context, search, sort string, limit, offset int) ([]models.Package, int, error) {
	return m.listFn(ctx, search, sort, limit, offset)
}

func (m *packageStoreMock) ListByOwner(ctx context.Context, ownerID string) ([]models.Package, error) {
	return m.listByOwnerFn(ctx, ownerID)
}

func (m *packageStoreMock) ListFeatured(ctx context.Context, limit int) ([]models.Package, error) {
	return m.listFeaturedFn(ctx, limit)
}

type bookingStoreMock struct {
	createFn           func(ctx context.Context, b *models.Booking) error
	getByIDFn          func(ctx context.Context, id string) (*models.Booking, error)
	getByIdemKeyFn     func(ctx context.Context, bookerID, key string) (*models.Booking, error)
	completePendingFn  func(ctx context.Context, id string) (bool, error)
	listByBookerFn     func(ctx context.Context, bookerID string) ([]models.Booking, error)
	listByGuideFn      func(ctx context.Context, guideID string) ([]models.Booking, error)
	hasActiveBookingFn func(ctx context.Context, bookerID, packageID string) (bool, error)
}

func (m *bookingStoreMock) Create(ctx context.Context, b *models.Booking) error {
	return m.createFn(ctx, b)
}

func (m *bookingStoreMock) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return m.getByIDFn(ctx, id)
}

func (m *bookingStoreMock) GetByIdempotencyKey(ctx context.Context, bookerID, key string) (*models.Booking, error) {
	if m.getByIdemKeyFn == nil {
		return nil, apperr.NotFound("booking not found")
	}
	return m.getByIdemKeyFn(ctx, bookerID, key)
}

func (m *bookingStoreMock) CompletePending(ctx context.Context, id string) (bool, error) {
	return m.completePendingFn(ctx, id)
}

func (m *bookingStoreMock) ListByBooker(ctx context.Context, bookerID string) ([]models.Booking, error) {
	return m.listByBookerFn(ctx, bookerID)
}

func (m *bookingStoreMock) ListByGuide(ctx context.Context, guideID string) ([]models.Booking, error) {
	return m.listByGuideFn(ctx, guideID)
}

func (m *bookingStoreMock) HasActiveBooking(ctx context.Context, bookerID, packageID string) (bool, error) {
	return m.hasActiveBookingFn(ctx, bookerID, packageID)
}

type notifierMock struct {
	created   []string
	confirmed []string
}

func (m *notifierMock) BookingCreated(guideID string, booking models.Booking) {
	m.created = append(m.created, guideID)
}

func (m *notifierMock) BookingConfirmed(bookerID string, booking models.Booking) {
	m.confirmed = append(m.confirmed, bookerID)
}

var _ services.UserStore = (*userStoreMock)(nil)
var _ services.PackageStore = (*packageStoreMock)(nil)
var _ services.BookingStore = (*bookingStoreMock)(nil)
var _ services.Notifier = (*notifierMock)(nil)
