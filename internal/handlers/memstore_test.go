package handlers_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"tourzen-backend/internal/apperr"
	"tourzen-backend/internal/models"
	"tourzen-backend/internal/services"
)

// memDB is an in-memory stand-in for the Postgres repositories. It enforces
// the same invariants the schema does: unique email, one active booking per
// (booker, package), unique idempotency key, booking_count derived at read.
type memDB struct {
	mu           sync.Mutex
	users        map[string]*models.User
	packages     map[string]*models.Package
	bookings     map[string]*models.Booking
	packageOrder []string
	bookingOrder []string
}

func newMemDB() *memDB {
	return &memDB{
		users:    make(map[string]*models.User),
		packages: make(map[string]*models.Package),
		bookings: make(map[string]*models.Booking),
	}
}

func (db *memDB) bookingCount(packageID string) int {
	count := 0
	for _, b := range db.bookings {
		if b.PackageID == packageID {
			count++
		}
	}
	return count
}

type memUsers struct{ db *memDB }

func (s *memUsers) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.users {
		if existing.Email == user.Email {
			existing.Name = user.Name
			existing.Photo = user.Photo
			stored := *existing
			return &stored, nil
		}
	}
	stored := *user
	s.db.users[user.ID] = &stored
	out := stored
	return &out, nil
}

func (s *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, ok := s.db.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	out := *user
	return &out, nil
}

type memPackages struct{ db *memDB }

func (s *memPackages) Create(ctx context.Context, pkg *models.Package) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stored := *pkg
	s.db.packages[pkg.ID] = &stored
	s.db.packageOrder = append(s.db.packageOrder, pkg.ID)
	return nil
}

func (s *memPackages) GetByID(ctx context.Context, id string) (*models.Package, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	pkg, ok := s.db.packages[id]
	if !ok {
		return nil, apperr.NotFound("package not found")
	}
	out := *pkg
	out.BookingCount = s.db.bookingCount(id)
	return &out, nil
}

func (s *memPackages) Update(ctx context.Context, pkg *models.Package) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.packages[pkg.ID]; !ok {
		return apperr.NotFound("package not found")
	}
	stored := *pkg
	s.db.packages[pkg.ID] = &stored
	return nil
}

func (s *memPackages) Delete(ctx context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.packages[id]; !ok {
		return apperr.NotFound("package not found")
	}
	delete(s.db.packages, id)
	return nil
}

func (s *memPackages) List(ctx context.Context, search, sortKey string, limit, offset int) ([]models.Package, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	matched := []models.Package{}
	// newest first, like the SQL default ordering
	for i := len(s.db.packageOrder) - 1; i >= 0; i-- {
		pkg, ok := s.db.packages[s.db.packageOrder[i]]
		if !ok {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(pkg.TourName), strings.ToLower(search)) {
			continue
		}
		out := *pkg
		out.BookingCount = s.db.bookingCount(pkg.ID)
		matched = append(matched, out)
	}

	switch sortKey {
	case "price_asc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case "price_desc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	}

	total := len(matched)
	if offset >= total {
		return []models.Package{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (s *memPackages) ListByOwner(ctx context.Context, ownerID string) ([]models.Package, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	owned := []models.Package{}
	for i := len(s.db.packageOrder) - 1; i >= 0; i-- {
		pkg, ok := s.db.packages[s.db.packageOrder[i]]
		if !ok || pkg.OwnerID != ownerID {
			continue
		}
		out := *pkg
		out.BookingCount = s.db.bookingCount(pkg.ID)
		owned = append(owned, out)
	}
	return owned, nil
}

func (s *memPackages) ListFeatured(ctx context.Context, limit int) ([]models.Package, error) {
	all, _, err := s.List(ctx, "", "", len(s.db.packages), 0)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].BookingCount > all[j].BookingCount })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

type memBookings struct{ db *memDB }

func (s *memBookings) Create(ctx context.Context, b *models.Booking) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.bookings {
		if existing.BookerID == b.BookerID && existing.PackageID == b.PackageID &&
			existing.Status != models.StatusRejected {
			return apperr.Conflict("already booked")
		}
		if b.IdempotencyKey != nil && existing.IdempotencyKey != nil &&
			existing.BookerID == b.BookerID && *existing.IdempotencyKey == *b.IdempotencyKey {
			return apperr.Conflict("duplicate idempotency key")
		}
	}

	stored := *b
	s.db.bookings[b.ID] = &stored
	s.db.bookingOrder = append(s.db.bookingOrder, b.ID)
	return nil
}

func (s *memBookings) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	b, ok := s.db.bookings[id]
	if !ok {
		return nil, apperr.NotFound("booking not found")
	}
	out := *b
	return &out, nil
}

func (s *memBookings) GetByIdempotencyKey(ctx context.Context, bookerID, key string) (*models.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, b := range s.db.bookings {
		if b.BookerID == bookerID && b.IdempotencyKey != nil && *b.IdempotencyKey == key {
			out := *b
			return &out, nil
		}
	}
	return nil, apperr.NotFound("booking not found")
}

func (s *memBookings) CompletePending(ctx context.Context, id string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	b, ok := s.db.bookings[id]
	if !ok || b.Status != models.StatusPending {
		return false, nil
	}
	b.Status = models.StatusCompleted
	return true, nil
}

func (s *memBookings) ListByBooker(ctx context.Context, bookerID string) ([]models.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	bookings := []models.Booking{}
	for i := len(s.db.bookingOrder) - 1; i >= 0; i-- {
		b := s.db.bookings[s.db.bookingOrder[i]]
		if b != nil && b.BookerID == bookerID {
			bookings = append(bookings, *b)
		}
	}
	return bookings, nil
}

func (s *memBookings) ListByGuide(ctx context.Context, guideID string) ([]models.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	bookings := []models.Booking{}
	for i := len(s.db.bookingOrder) - 1; i >= 0; i-- {
		b := s.db.bookings[s.db.bookingOrder[i]]
		if b == nil {
			continue
		}
		pkg, ok := s.db.packages[b.PackageID]
		if ok && pkg.OwnerID == guideID {
			bookings = append(bookings, *b)
		}
	}
	return bookings, nil
}

func (s *memBookings) HasActiveBooking(ctx context.Context, bookerID, packageID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, b := range s.db.bookings {
		if b.BookerID == bookerID && b.PackageID == packageID && b.Status != models.StatusRejected {
			return true, nil
		}
	}
	return false, nil
}

var _ services.UserStore = (*memUsers)(nil)
var _ services.PackageStore = (*memPackages)(nil)
var _ services.BookingStore = (*memBookings)(nil)
