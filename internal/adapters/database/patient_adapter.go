package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

var patientColumns = []interface{}{
	"id", "first_name", "last_name", "email", "phone", "address", "city",
	"state", "postal_code", "date_of_birth", "gender", "emergency_contact_name",
	"emergency_contact_phone", "medical_history", "allergies",
	"current_medications", "created_at", "updated_at",
}

// PatientAdapter implements the PatientRepository interface
type PatientAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPatientAdapter creates a new patient adapter
func NewPatientAdapter(client *postgres.Client) repositories.PatientRepository {
	return &PatientAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func scanPatient(row rowScanner) (*entities.Patient, error) {
	p := &entities.Patient{}
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.Address, &p.City,
		&p.State, &p.PostalCode, &p.DateOfBirth, &p.Gender, &p.EmergencyContactName,
		&p.EmergencyContactPhone, &p.MedicalHistory, &p.Allergies,
		&p.CurrentMedications, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func patientRecord(p *entities.Patient) goqu.Record {
	var dob interface{}
	if p.DateOfBirth != nil {
		dob = p.DateOfBirth.Format("2006-01-02")
	}
	return goqu.Record{
		"first_name":              p.FirstName,
		"last_name":               p.LastName,
		"email":                   p.Email,
		"phone":                   p.Phone,
		"address":                 p.Address,
		"city":                    p.City,
		"state":                   p.State,
		"postal_code":             p.PostalCode,
		"date_of_birth":           dob,
		"gender":                  p.Gender,
		"emergency_contact_name":  p.EmergencyContactName,
		"emergency_contact_phone": p.EmergencyContactPhone,
		"medical_history":         p.MedicalHistory,
		"allergies":               p.Allergies,
		"current_medications":     p.CurrentMedications,
		"updated_at":              p.UpdatedAt,
	}
}

func mapPatientWriteError(err error) error {
	if isUniqueViolation(err, "") {
		return apperrors.NewConflictError("a patient with this email already exists")
	}
	return mapWriteError(err, "patient")
}

func (a *PatientAdapter) Create(ctx context.Context, patient *entities.Patient) error {
	now := time.Now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	record := patientRecord(patient)
	record["created_at"] = patient.CreatedAt

	query, args, err := a.db.Insert("patients").Rows(record).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&patient.ID); err != nil {
		return mapPatientWriteError(err)
	}
	return nil
}

func (a *PatientAdapter) GetByID(ctx context.Context, id int64) (*entities.Patient, error) {
	query, args, err := a.db.Select(patientColumns...).
		From("patients").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	patient, err := scanPatient(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("patient with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get patient", err)
	}
	return patient, nil
}

func (a *PatientAdapter) Update(ctx context.Context, patient *entities.Patient) error {
	patient.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update("patients").
		Set(patientRecord(patient)).
		Where(goqu.Ex{"id": patient.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapPatientWriteError(err)
	}
	return expectAffected(result, "patient", patient.ID)
}

func (a *PatientAdapter) List(ctx context.Context, page repositories.Pagination) ([]*entities.Patient, error) {
	return a.list(ctx, nil, page)
}

// Search matches term against full name, email and phone, case-insensitively
func (a *PatientAdapter) Search(ctx context.Context, term string, page repositories.Pagination) ([]*entities.Patient, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return a.List(ctx, page)
	}

	pattern := containsPattern(term)
	where := goqu.Or(
		goqu.L(`"first_name" || ' ' || "last_name"`).ILike(pattern),
		goqu.C("email").ILike(pattern),
		goqu.C("phone").ILike(pattern),
	)
	return a.list(ctx, where, page)
}

func (a *PatientAdapter) list(ctx context.Context, where exp.Expression, page repositories.Pagination) ([]*entities.Patient, error) {
	page = page.Normalize()

	ds := a.db.Select(patientColumns...).From("patients")
	if where != nil {
		ds = ds.Where(where)
	}

	query, args, err := ds.Order(goqu.I("last_name").Asc(), goqu.I("first_name").Asc(), goqu.I("id").Asc()).
		Limit(uint(page.Limit)).
		Offset(uint(page.Offset)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list patients", err)
	}
	defer rows.Close()

	patients := make([]*entities.Patient, 0)
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan patient", err)
		}
		patients = append(patients, patient)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate patients", err)
	}
	return patients, nil
}
