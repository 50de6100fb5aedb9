package repositories

import (
	"context"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
)

// HealthPackageRepository defines the interface for health package catalogue reads
type HealthPackageRepository interface {
	List(ctx context.Context, activeOnly bool) ([]*entities.HealthPackage, error)
	GetByID(ctx context.Context, id int64) (*entities.HealthPackage, error)
	ListTests(ctx context.Context, packageID int64) ([]entities.HealthPackageTest, error)
}

// HealthPackageBookingRepository defines the interface for package bookings
type HealthPackageBookingRepository interface {
	// Create inserts a booking. A duplicate confirmation number fails with a conflict error.
	Create(ctx context.Context, booking *entities.HealthPackageBooking) error
	GetByID(ctx context.Context, id int64) (*entities.HealthPackageBooking, error)
	List(ctx context.Context, filter PackageBookingFilter) ([]*entities.HealthPackageBooking, error)
	Update(ctx context.Context, booking *entities.HealthPackageBooking) error
}

// PackageBookingFilter defines filters for listing package bookings
type PackageBookingFilter struct {
	Status entities.PackageBookingStatus
	Pagination
}
