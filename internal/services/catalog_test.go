package services_test

import (
	"context"
	"testing"
	"time"

	"tourzen-backend/internal/apperr"
	"tourzen-backend/internal/models"
	"tourzen-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() services.PackageInput {
	return services.PackageInput{
		TourName:          "African Safari Trek",
		Image:             "https://img.example.com/safari.jpg",
		Duration:          "5 Days, 4 Nights",
		DepartureLocation: "Nairobi",
		Destination:       "Masai Mara",
		Price:             500,
		DepartureDate:     "2026-09-15",
		PackageDetails:    "Big five game drives.",
	}
}

func testGuide() *models.User {
	return &models.User{
		ID:    "guide-1",
		Email: "grace@example.com",
		Name:  "Grace Guide",
		Photo: "https://img.example.com/grace.jpg",
	}
}

func TestCreatePackage(t *testing.T) {
	ctx := context.Background()
	session := services.Session{UserID: "guide-1", Email: "grace@example.com"}

	t.Run("stamps guide identity from the session user", func(t *testing.T) {
		var stored *models.Package
		packages := &packageStoreMock{
			createFn: func(ctx context.Context, pkg *models.Package) error {
				stored = pkg
				return nil
			},
		}
		users := &userStoreMock{
			getByIDFn: func(ctx context.Context, id string) (*models.User, error) {
				assert.Equal(t, "guide-1", id)
				return testGuide(), nil
			},
		}
		svc := services.NewCatalogService(packages, &bookingStoreMock{}, users)

		pkg, err := svc.CreatePackage(ctx, session, validInput())

		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "guide-1", pkg.OwnerID)
		assert.Equal(t, "Grace Guide", pkg.GuideName)
		assert.Equal(t, "grace@example.com", pkg.GuideEmail)
		assert.Equal(t, "https://img.example.com/grace.jpg", pkg.GuidePhoto)
		assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), pkg.DepartureDate)
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		svc := services.NewCatalogService(&packageStoreMock{}, &bookingStoreMock{}, &userStoreMock{})

		input := validInput()
		input.Price = -1
		_, err := svc.CreatePackage(ctx, session, input)

		require.ErrorIs(t, err, apperr.ErrValidation)
		var domainErr *apperr.Error
		require.ErrorAs(t, err, &domainErr)
		details, ok := domainErr.Details.(map[string]string)
		require.True(t, ok)
		assert.Contains(t, details, "price")
	})

	t.Run("missing required fields are reported by name", func(t *testing.T) {
		svc := services.NewCatalogService(&packageStoreMock{}, &bookingStoreMock{}, &userStoreMock{})

		_, err := svc.CreatePackage(ctx, session, services.PackageInput{Price: 10})

		require.ErrorIs(t, err, apperr.ErrValidation)
		var domainErr *apperr.Error
		require.ErrorAs(t, err, &domainErr)
		details, ok := domainErr.Details.(map[string]string)
		require.True(t, ok)
		assert.Contains(t, details, "tour_name")
		assert.Contains(t, details, "departure_date")
	})

	t.Run("malformed date is rejected", func(t *testing.T) {
		svc := services.NewCatalogService(&packageStoreMock{}, &bookingStoreMock{}, &userStoreMock{})

		input := validInput()
		input.DepartureDate = "15/09/2026"
		_, err := svc.CreatePackage(ctx, session, input)

		require.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestUpdatePackage(t *testing.T) {
	ctx := context.Background()

	ownedPackage := func() *models.Package {
		return &models.Package{ID: "pkg-1", OwnerID: "guide-1", TourName: "Old Name"}
	}

	t.Run("owner updates fields", func(t *testing.T) {
		var updated *models.Package
		packages := &packageStoreMock{
			getByIDFn: func(ctx context.Context, id string) (*models.Package, error) {
				return ownedPackage(), nil
			},
			updateFn: func(ctx context.Context, pkg *models.Package) error {
				updated = pkg
				return nil
			},
		}
		users := &userStoreMock{
			getByIDFn: func(ctx context.Context, id string) (*models.User, error) {
				return testGuide(), nil
			},
		}
		svc := services.NewCatalogService(packages, &bookingStoreMock{}, users)

		pkg, err := svc.UpdatePackage(ctx, "pkg-1", services.Session{UserID: "guide-1"}, validInput())

		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "African Safari Trek", pkg.TourName)
		assert.Equal(t, "Grace Guide", pkg.GuideName)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		packages := &packageStoreMock{
			getByIDFn: func(ctx context.Context, id string) (*models.Package, error) {
				return ownedPackage(), nil
			},
		}
		svc := services.NewCatalogService(packages, &bookingStoreMock{}, &userStoreMock{})

		_, err := svc.UpdatePackage(ctx, "pkg-1", services.Session{UserID: "intruder"}, validInput())

		require.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("missing package", func(t *testing.T) {
		packages := &packageStoreMock{
			getByIDFn: func(ctx context.Context, id string) (*models.Package, error) {
				return nil, apperr.NotFound("package not found")
			},
		}
		svc := services.NewCatalogService(packages, &bookingStoreMock{}, &userStoreMock{})

		_, err := svc.UpdatePackage(ctx, "missing", services.Session{UserID: "guide-1"}, validInput())

		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestDeletePackage(t *testing.T) {
	ctx := context.Background()

	t.Run("non-owner is forbidden", func(t *testing.T) {
		packages := &packageStoreMock{
			getByIDFn: func(ctx context.Context, id string) (*models.Package, error) {
				return &models.Package{ID: "pkg-1", OwnerID: "guide-1"}, nil
			},
		}
		svc := services.NewCatalogService(packages, &bookingStoreMock{}, &userStoreMock{})

		err := svc.DeletePackage(ctx, "pkg-1", services.Session{UserID: "intruder"})

		require.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("deleting a missing package is not silent", func(t *testing.T) {
		packages := &packageStoreMock{
			getByIDFn: func(ctx context.Context, id string) (*models.Package, error) {
				return nil, apperr.NotFound("package not found")
			},
		}
		svc := services.NewCatalogService(packages, &bookingStoreMock{}, &userStoreMock{})

		err := svc.DeletePackage(ctx, "missing", services.Session{UserID: "guide-1"})

		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestListPackages(t *testing.T) {
	ctx := context.Background()

	t.Run("pagination is 1-indexed and reports total pages", func(t *testing.T) {
		packages := &packageStoreMock{
			listFn: func(ctx context.Context, search, sort string, limit, offset int) ([]models.Package, int, error) {
				assert.Equal(t, 10, limit)
				assert.Equal(t, 10, offset)
				// 15 total, page 2 of limit 10 holds the last 5
				return make([]models.Package, 5), 15, nil
			},
		}
		svc := services.NewCatalogService(packages, &bookingStoreMock{}, &userStoreMock{})

		list, err := svc.ListPackages(ctx, services.ListQuery{Page: 2, Limit: 10})

		require.NoError(t, err)
		assert.Len(t, list.Items, 5)
		assert.Equal(t, 15, list.TotalCount)
		assert.Equal(t, 2, list.TotalPages)
	})

	t.Run("defaults and clamps", func(t *testing.T) {
		var gotLimit, gotOffset int
		packages := &packageStoreMock{
			listFn: func(ctx context.Context, search, sort string, limit, offset int) ([]models.Package, int, error) {
				gotLimit, gotOffset = limit, offset
				return nil, 0, nil
			},
		}
		svc := services.NewCatalogService(packages, &bookingStoreMock{}, &userStoreMock{})

		_, err := svc.ListPackages(ctx, services.ListQuery{Page: 0, Limit: 0})
		require.NoError(t, err)
		assert.Equal(t, 12, gotLimit)
		assert.Equal(t, 0, gotOffset)

		_, err = svc.ListPackages(ctx, services.ListQuery{Page: 1, Limit: 1000})
		require.NoError(t, err)
		assert.Equal(t, 100, gotLimit)
	})

	t.Run("no matches is an empty list", func(t *testing.T) {
		packages := &packageStoreMock{
			listFn: func(ctx context.Context, search, sort string, limit, offset int) ([]models.Package, int, error) {
				return []models.Package{}, 0, nil
			},
		}
		svc := services.NewCatalogService(packages, &bookingStoreMock{}, &userStoreMock{})

		list, err := svc.ListPackages(ctx, services.ListQuery{Search: "nowhere"})

		require.NoError(t, err)
		assert.Empty(t, list.Items)
		assert.Equal(t, 0, list.TotalPages)
	})
}

func TestGetPackageWithBookingState(t *testing.T) {
	ctx := context.Background()

	pkg := &models.Package{ID: "pkg-1", OwnerID: "guide-1", BookingCount: 3}
	packages := &packageStoreMock{
		getByIDFn: func(ctx context.Context, id string) (*models.Package, error) {
			return pkg, nil
		},
	}

	t.Run("anonymous caller gets bare flags", func(t *testing.T) {
		svc := services.NewCatalogService(packages, &bookingStoreMock{}, &userStoreMock{})

		state, err := svc.GetPackageWithBookingState(ctx, "pkg-1", nil)

		require.NoError(t, err)
		assert.False(t, state.HasBooked)
		assert.False(t, state.IsOwner)
		assert.Equal(t, 3, state.Package.BookingCount)
	})

	t.Run("owner and booker flags", func(t *testing.T) {
		bookings := &bookingStoreMock{
			hasActiveBookingFn: func(ctx context.Context, bookerID, packageID string) (bool, error) {
				return bookerID == "tourist-1", nil
			},
		}
		svc := services.NewCatalogService(packages, bookings, &userStoreMock{})

		state, err := svc.GetPackageWithBookingState(ctx, "pkg-1", &services.Session{UserID: "guide-1"})
		require.NoError(t, err)
		assert.True(t, state.IsOwner)

		state, err = svc.GetPackageWithBookingState(ctx, "pkg-1", &services.Session{UserID: "tourist-1"})
		require.NoError(t, err)
		assert.True(t, state.HasBooked)
		assert.False(t, state.IsOwner)
	})
}

func TestFeaturedAndMyPackages(t *testing.T) {
	ctx := context.Background()

	packages := &packageStoreMock{
		listFeaturedFn: func(ctx context.Context, limit int) ([]models.Package, error) {
			assert.Equal(t, 5, limit)
			return []models.Package{{ID: "pkg-1"}}, nil
		},
		listByOwnerFn: func(ctx context.Context, ownerID string) ([]models.Package, error) {
			assert.Equal(t, "guide-1", ownerID)
			return []models.Package{{ID: "pkg-1"}, {ID: "pkg-2"}}, nil
		},
	}
	svc := services.NewCatalogService(packages, &bookingStoreMock{}, &userStoreMock{})

	featured, err := svc.ListFeatured(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, 1)

	mine, err := svc.GetMyPackages(ctx, services.Session{UserID: "guide-1"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
