package entities

import (
	"time"
)

// Speciality represents a medical speciality doctors are grouped under
type Speciality struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Icon        string    `json:"icon,omitempty" db:"icon"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Doctor represents a practitioner patients can book
type Doctor struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Specialization  string    `json:"specialization" db:"specialization"`
	SpecialityID    *int64    `json:"speciality_id,omitempty" db:"speciality_id"`
	Qualification   string    `json:"qualification,omitempty" db:"qualification"`
	ExperienceYears int       `json:"experience_years" db:"experience_years"`
	Phone           string    `json:"phone,omitempty" db:"phone"`
	Email           string    `json:"email,omitempty" db:"email"`
	ImageURL        string    `json:"image_url,omitempty" db:"image_url"`
	IsAvailable     bool      `json:"is_available" db:"is_available"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// DoctorContext is the doctor snapshot handed to the chat pipeline
type DoctorContext struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Specialization  string `json:"specialization"`
	Qualification   string `json:"qualification,omitempty"`
	ExperienceYears int    `json:"experience_years"`
}

// Context returns the chat snapshot of the doctor.
func (d *Doctor) Context() *DoctorContext {
	if d == nil {
		return nil
	}
	return &DoctorContext{
		ID:              d.ID,
		Name:            d.Name,
		Specialization:  d.Specialization,
		Qualification:   d.Qualification,
		ExperienceYears: d.ExperienceYears,
	}
}
