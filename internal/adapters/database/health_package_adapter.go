package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

var healthPackageColumns = []interface{}{
	"id", "name", "description", "price", "original_price", "duration_hours",
	"age_group", "gender_specific", "fasting_required", "home_collection_available",
	"lab_visit_required", "report_delivery_days", "is_active", "image_url", "created_at",
}

// HealthPackageAdapter implements the HealthPackageRepository interface
type HealthPackageAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewHealthPackageAdapter creates a new health package adapter
func NewHealthPackageAdapter(client *postgres.Client) repositories.HealthPackageRepository {
	return &HealthPackageAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func scanHealthPackage(row rowScanner) (*entities.HealthPackage, error) {
	p := &entities.HealthPackage{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.OriginalPrice, &p.DurationHours,
		&p.AgeGroup, &p.GenderSpecific, &p.FastingRequired, &p.HomeCollectionAvailable,
		&p.LabVisitRequired, &p.ReportDeliveryDays, &p.IsActive, &p.ImageURL, &p.CreatedAt,
	)
	return p, err
}

func (a *HealthPackageAdapter) List(ctx context.Context, activeOnly bool) ([]*entities.HealthPackage, error) {
	ds := a.db.Select(healthPackageColumns...).From("health_packages")
	if activeOnly {
		ds = ds.Where(goqu.Ex{"is_active": true})
	}

	query, args, err := ds.Order(goqu.I("price").Asc(), goqu.I("id").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list health packages", err)
	}
	defer rows.Close()

	packages := make([]*entities.HealthPackage, 0)
	for rows.Next() {
		pkg, err := scanHealthPackage(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan health package", err)
		}
		packages = append(packages, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate health packages", err)
	}
	return packages, nil
}

func (a *HealthPackageAdapter) GetByID(ctx context.Context, id int64) (*entities.HealthPackage, error) {
	query, args, err := a.db.Select(healthPackageColumns...).
		From("health_packages").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	pkg, err := scanHealthPackage(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("health package with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get health package", err)
	}
	return pkg, nil
}

func (a *HealthPackageAdapter) ListTests(ctx context.Context, packageID int64) ([]entities.HealthPackageTest, error) {
	query, args, err := a.db.Select(
		"id", "package_id", "test_name", "test_category", "test_description", "is_optional",
	).From("health_package_tests").
		Where(goqu.Ex{"package_id": packageID}).
		Order(goqu.I("is_optional").Asc(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list package tests", err)
	}
	defer rows.Close()

	tests := make([]entities.HealthPackageTest, 0)
	for rows.Next() {
		var t entities.HealthPackageTest
		if err := rows.Scan(&t.ID, &t.PackageID, &t.TestName, &t.TestCategory, &t.TestDescription, &t.IsOptional); err != nil {
			return nil, apperrors.NewInternalError("failed to scan package test", err)
		}
		tests = append(tests, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate package tests", err)
	}
	return tests, nil
}

// HealthPackageBookingAdapter implements the HealthPackageBookingRepository interface
type HealthPackageBookingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewHealthPackageBookingAdapter creates a new package booking adapter
func NewHealthPackageBookingAdapter(client *postgres.Client) repositories.HealthPackageBookingRepository {
	return &HealthPackageBookingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

const packageBookingConfirmationKey = "health_package_bookings_confirmation_number_key"

func (a *HealthPackageBookingAdapter) selectBookings() *goqu.SelectDataset {
	return a.db.Select(
		goqu.I("b.id"), goqu.I("b.package_id"), goqu.I("p.name"), goqu.I("b.patient_name"),
		goqu.I("b.patient_email"), goqu.I("b.patient_phone"), goqu.I("b.patient_age"),
		goqu.I("b.patient_gender"), goqu.I("b.preferred_date"), goqu.I("b.preferred_time"),
		goqu.I("b.total_amount"), goqu.I("b.status"), goqu.I("b.confirmation_number"),
		goqu.I("b.payment_status"), goqu.I("b.notes"), goqu.I("b.booking_date"), goqu.I("b.updated_at"),
	).From(goqu.T("health_package_bookings").As("b")).
		Join(goqu.T("health_packages").As("p"), goqu.On(goqu.Ex{"p.id": goqu.I("b.package_id")}))
}

func scanPackageBooking(row rowScanner) (*entities.HealthPackageBooking, error) {
	b := &entities.HealthPackageBooking{}
	err := row.Scan(
		&b.ID, &b.PackageID, &b.PackageName, &b.PatientName,
		&b.PatientEmail, &b.PatientPhone, &b.PatientAge,
		&b.PatientGender, &b.PreferredDate, &b.PreferredTime,
		&b.TotalAmount, &b.Status, &b.ConfirmationNumber,
		&b.PaymentStatus, &b.Notes, &b.BookingDate, &b.UpdatedAt,
	)
	return b, err
}

func (a *HealthPackageBookingAdapter) Create(ctx context.Context, booking *entities.HealthPackageBooking) error {
	now := time.Now().UTC()
	booking.BookingDate = now
	booking.UpdatedAt = now

	query, args, err := a.db.Insert("health_package_bookings").Rows(goqu.Record{
		"package_id":          booking.PackageID,
		"patient_name":        booking.PatientName,
		"patient_email":       booking.PatientEmail,
		"patient_phone":       booking.PatientPhone,
		"patient_age":         booking.PatientAge,
		"patient_gender":      booking.PatientGender,
		"preferred_date":      booking.PreferredDate.Format("2006-01-02"),
		"preferred_time":      booking.PreferredTime,
		"total_amount":        booking.TotalAmount,
		"status":              booking.Status,
		"confirmation_number": booking.ConfirmationNumber,
		"payment_status":      booking.PaymentStatus,
		"notes":               booking.Notes,
		"booking_date":        booking.BookingDate,
		"updated_at":          booking.UpdatedAt,
	}).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&booking.ID); err != nil {
		if isUniqueViolation(err, packageBookingConfirmationKey) {
			return repositories.ErrDuplicateConfirmationNumber
		}
		return mapWriteError(err, "package booking")
	}
	return nil
}

func (a *HealthPackageBookingAdapter) GetByID(ctx context.Context, id int64) (*entities.HealthPackageBooking, error) {
	query, args, err := a.selectBookings().Where(goqu.Ex{"b.id": id}).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	booking, err := scanPackageBooking(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("package booking with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get package booking", err)
	}
	return booking, nil
}

func (a *HealthPackageBookingAdapter) List(ctx context.Context, filter repositories.PackageBookingFilter) ([]*entities.HealthPackageBooking, error) {
	page := filter.Pagination.Normalize()

	ds := a.selectBookings()
	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"b.status": filter.Status})
	}

	query, args, err := ds.Order(goqu.I("b.booking_date").Desc(), goqu.I("b.id").Desc()).
		Limit(uint(page.Limit)).
		Offset(uint(page.Offset)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list package bookings", err)
	}
	defer rows.Close()

	bookings := make([]*entities.HealthPackageBooking, 0)
	for rows.Next() {
		booking, err := scanPackageBooking(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan package booking", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate package bookings", err)
	}
	return bookings, nil
}

// Update writes the mutable booking state: status, payment status and notes
func (a *HealthPackageBookingAdapter) Update(ctx context.Context, booking *entities.HealthPackageBooking) error {
	booking.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update("health_package_bookings").Set(goqu.Record{
		"status":         booking.Status,
		"payment_status": booking.PaymentStatus,
		"notes":          booking.Notes,
		"updated_at":     booking.UpdatedAt,
	}).Where(goqu.Ex{"id": booking.ID}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError(err, "package booking")
	}
	return expectAffected(result, "package booking", booking.ID)
}
