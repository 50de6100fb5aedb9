package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

var doctorColumns = []interface{}{
	"id", "name", "specialization", "speciality_id", "qualification",
	"experience_years", "phone", "email", "image_url", "is_available",
	"created_at", "updated_at",
}

// DoctorAdapter implements the DoctorRepository interface
type DoctorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDoctorAdapter creates a new doctor adapter
func NewDoctorAdapter(client *postgres.Client) repositories.DoctorRepository {
	return &DoctorAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func scanDoctor(row rowScanner) (*entities.Doctor, error) {
	d := &entities.Doctor{}
	err := row.Scan(
		&d.ID, &d.Name, &d.Specialization, &d.SpecialityID, &d.Qualification,
		&d.ExperienceYears, &d.Phone, &d.Email, &d.ImageURL, &d.IsAvailable,
		&d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// Create inserts a doctor and fills in its generated id and timestamps
func (a *DoctorAdapter) Create(ctx context.Context, doctor *entities.Doctor) error {
	now := time.Now().UTC()
	doctor.CreatedAt = now
	doctor.UpdatedAt = now

	query, args, err := a.db.Insert("doctors").Rows(goqu.Record{
		"name":             doctor.Name,
		"specialization":   doctor.Specialization,
		"speciality_id":    doctor.SpecialityID,
		"qualification":    doctor.Qualification,
		"experience_years": doctor.ExperienceYears,
		"phone":            doctor.Phone,
		"email":            doctor.Email,
		"image_url":        doctor.ImageURL,
		"is_available":     doctor.IsAvailable,
		"created_at":       doctor.CreatedAt,
		"updated_at":       doctor.UpdatedAt,
	}).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&doctor.ID); err != nil {
		return mapWriteError(err, "doctor")
	}
	return nil
}

// GetByID retrieves a doctor by ID
func (a *DoctorAdapter) GetByID(ctx context.Context, id int64) (*entities.Doctor, error) {
	query, args, err := a.db.Select(doctorColumns...).
		From("doctors").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	doctor, err := scanDoctor(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get doctor", err)
	}
	return doctor, nil
}

// Update overwrites the mutable doctor fields
func (a *DoctorAdapter) Update(ctx context.Context, doctor *entities.Doctor) error {
	doctor.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update("doctors").Set(goqu.Record{
		"name":             doctor.Name,
		"specialization":   doctor.Specialization,
		"speciality_id":    doctor.SpecialityID,
		"qualification":    doctor.Qualification,
		"experience_years": doctor.ExperienceYears,
		"phone":            doctor.Phone,
		"email":            doctor.Email,
		"image_url":        doctor.ImageURL,
		"is_available":     doctor.IsAvailable,
		"updated_at":       doctor.UpdatedAt,
	}).Where(goqu.Ex{"id": doctor.ID}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError(err, "doctor")
	}
	return expectAffected(result, "doctor", doctor.ID)
}

// List retrieves doctors ordered by name
func (a *DoctorAdapter) List(ctx context.Context, filter repositories.DoctorFilter) ([]*entities.Doctor, error) {
	page := filter.Pagination.Normalize()

	ds := a.db.Select(doctorColumns...).From("doctors")
	if filter.SpecialityID != nil {
		ds = ds.Where(goqu.Ex{"speciality_id": *filter.SpecialityID})
	}
	if filter.AvailableOnly {
		ds = ds.Where(goqu.Ex{"is_available": true})
	}

	query, args, err := ds.Order(goqu.I("name").Asc(), goqu.I("id").Asc()).
		Limit(uint(page.Limit)).
		Offset(uint(page.Offset)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list doctors", err)
	}
	defer rows.Close()

	doctors := make([]*entities.Doctor, 0)
	for rows.Next() {
		doctor, err := scanDoctor(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan doctor", err)
		}
		doctors = append(doctors, doctor)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate doctors", err)
	}
	return doctors, nil
}

// SpecialityAdapter implements the SpecialityRepository interface
type SpecialityAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSpecialityAdapter creates a new speciality adapter
func NewSpecialityAdapter(client *postgres.Client) repositories.SpecialityRepository {
	return &SpecialityAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var specialityColumns = []interface{}{"id", "name", "description", "icon", "is_active", "created_at"}

func scanSpeciality(row rowScanner) (*entities.Speciality, error) {
	s := &entities.Speciality{}
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Icon, &s.IsActive, &s.CreatedAt)
	return s, err
}

func (a *SpecialityAdapter) Create(ctx context.Context, speciality *entities.Speciality) error {
	speciality.CreatedAt = time.Now().UTC()

	query, args, err := a.db.Insert("specialities").Rows(goqu.Record{
		"name":        speciality.Name,
		"description": speciality.Description,
		"icon":        speciality.Icon,
		"is_active":   speciality.IsActive,
		"created_at":  speciality.CreatedAt,
	}).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&speciality.ID); err != nil {
		return mapWriteError(err, "speciality")
	}
	return nil
}

func (a *SpecialityAdapter) GetByID(ctx context.Context, id int64) (*entities.Speciality, error) {
	query, args, err := a.db.Select(specialityColumns...).
		From("specialities").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	speciality, err := scanSpeciality(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("speciality with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get speciality", err)
	}
	return speciality, nil
}

func (a *SpecialityAdapter) List(ctx context.Context, activeOnly bool) ([]*entities.Speciality, error) {
	ds := a.db.Select(specialityColumns...).From("specialities")
	if activeOnly {
		ds = ds.Where(goqu.Ex{"is_active": true})
	}

	query, args, err := ds.Order(goqu.I("name").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list specialities", err)
	}
	defer rows.Close()

	specialities := make([]*entities.Speciality, 0)
	for rows.Next() {
		speciality, err := scanSpeciality(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan speciality", err)
		}
		specialities = append(specialities, speciality)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate specialities", err)
	}
	return specialities, nil
}

// Delete removes a speciality. Doctors still referencing it make this a conflict.
func (a *SpecialityAdapter) Delete(ctx context.Context, id int64) error {
	query, args, err := a.db.Delete("specialities").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if pqErr, ok := pqError(err); ok && pqErr.Code == pqForeignKeyViolation {
			return apperrors.NewConflictError("speciality is still assigned to doctors")
		}
		return apperrors.NewInternalError("failed to delete speciality", err)
	}
	return expectAffected(result, "speciality", id)
}
