package services

import (
	"context"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
)

// PatientService manages patient records
type PatientService struct {
	repo repositories.PatientRepository
}

// NewPatientService creates a new patient service
func NewPatientService(repo repositories.PatientRepository) *PatientService {
	return &PatientService{repo: repo}
}

// CreatePatient stores a new patient. A duplicate email is a conflict.
func (s *PatientService) CreatePatient(ctx context.Context, patient *entities.Patient) error {
	normalizePatient(patient)
	return s.repo.Create(ctx, patient)
}

// GetPatient retrieves a patient by ID
func (s *PatientService) GetPatient(ctx context.Context, id int64) (*entities.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdatePatient replaces a patient record
func (s *PatientService) UpdatePatient(ctx context.Context, patient *entities.Patient) error {
	normalizePatient(patient)
	return s.repo.Update(ctx, patient)
}

// ListPatients lists patients by name
func (s *PatientService) ListPatients(ctx context.Context, page repositories.Pagination) ([]*entities.Patient, error) {
	return s.repo.List(ctx, page)
}

// SearchPatients finds patients by name, email or phone
func (s *PatientService) SearchPatients(ctx context.Context, term string, page repositories.Pagination) ([]*entities.Patient, error) {
	return s.repo.Search(ctx, term, page)
}

// normalizePatient stores an empty email as NULL so the unique index only
// covers real addresses.
func normalizePatient(p *entities.Patient) {
	if p.Email != nil && *p.Email == "" {
		p.Email = nil
	}
}
