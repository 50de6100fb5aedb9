package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

// PackageBookingRequest is the payload of a health package booking
type PackageBookingRequest struct {
	PatientName   string
	PatientEmail  string
	PatientPhone  string
	PatientAge    *int
	PatientGender string
	PreferredDate string
	PreferredTime string
	Notes         string
}

// PackageBookingUpdate carries the mutable fields of a booking. Nil fields
// are left unchanged.
type PackageBookingUpdate struct {
	Status        *entities.PackageBookingStatus
	PaymentStatus *entities.PaymentStatus
	Notes         *string
}

// HealthPackageService exposes the package catalogue and bookings
type HealthPackageService struct {
	packageRepo repositories.HealthPackageRepository
	bookingRepo repositories.HealthPackageBookingRepository
	newCode     func() (string, error)
}

// NewHealthPackageService creates a new health package service
func NewHealthPackageService(
	packageRepo repositories.HealthPackageRepository,
	bookingRepo repositories.HealthPackageBookingRepository,
) *HealthPackageService {
	return &HealthPackageService{
		packageRepo: packageRepo,
		bookingRepo: bookingRepo,
		newCode:     NewConfirmationNumber,
	}
}

// ListPackages lists active packages
func (s *HealthPackageService) ListPackages(ctx context.Context) ([]*entities.HealthPackage, error) {
	return s.packageRepo.List(ctx, true)
}

// GetPackage returns a package with its tests
func (s *HealthPackageService) GetPackage(ctx context.Context, id int64) (*entities.HealthPackage, error) {
	pkg, err := s.packageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tests, err := s.packageRepo.ListTests(ctx, id)
	if err != nil {
		return nil, err
	}
	pkg.Tests = tests
	return pkg, nil
}

// BookPackage books an active package. The total is the package price and
// the booking starts confirmed with payment pending.
func (s *HealthPackageService) BookPackage(ctx context.Context, packageID int64, req *PackageBookingRequest) (*entities.HealthPackageBooking, error) {
	preferred, err := time.Parse(DateLayout, req.PreferredDate)
	if err != nil {
		return nil, apperrors.NewValidationError("preferred_date must be in the format YYYY-MM-DD")
	}
	if req.PreferredTime != "" {
		if _, err := entities.ParseClockTime(req.PreferredTime); err != nil {
			return nil, apperrors.NewValidationError("preferred_time must be in the format HH:MM")
		}
	}

	pkg, err := s.packageRepo.GetByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("health package with id %d not found", packageID))
	}

	booking := &entities.HealthPackageBooking{
		PackageID:     pkg.ID,
		PackageName:   pkg.Name,
		PatientName:   req.PatientName,
		PatientEmail:  req.PatientEmail,
		PatientPhone:  req.PatientPhone,
		PatientAge:    req.PatientAge,
		PatientGender: req.PatientGender,
		PreferredDate: preferred,
		PreferredTime: req.PreferredTime,
		TotalAmount:   pkg.Price,
		Status:        entities.PackageBookingStatusConfirmed,
		PaymentStatus: entities.PaymentStatusPending,
		Notes:         req.Notes,
	}

	err = insertWithConfirmation(s.newCode, func(code string) error {
		booking.ConfirmationNumber = code
		return s.bookingRepo.Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("booking_id", booking.ID).
		Int64("package_id", pkg.ID).
		Msg("health package booked")
	return booking, nil
}

// GetBooking retrieves a booking by ID
func (s *HealthPackageService) GetBooking(ctx context.Context, id int64) (*entities.HealthPackageBooking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

// ListBookings lists bookings, newest first
func (s *HealthPackageService) ListBookings(ctx context.Context, filter repositories.PackageBookingFilter) ([]*entities.HealthPackageBooking, error) {
	return s.bookingRepo.List(ctx, filter)
}

// UpdateBooking applies the non-nil fields of update
func (s *HealthPackageService) UpdateBooking(ctx context.Context, id int64, update *PackageBookingUpdate) (*entities.HealthPackageBooking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Status != nil {
		booking.Status = *update.Status
	}
	if update.PaymentStatus != nil {
		booking.PaymentStatus = *update.PaymentStatus
	}
	if update.Notes != nil {
		booking.Notes = *update.Notes
	}
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}
