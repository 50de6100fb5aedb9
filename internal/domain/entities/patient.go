package entities

import (
	"encoding/json"
	"strings"
	"time"
)

// Patient represents a registered patient
type Patient struct {
	ID                    int64      `json:"id" db:"id"`
	FirstName             string     `json:"first_name" db:"first_name"`
	LastName              string     `json:"last_name" db:"last_name"`
	Email                 *string    `json:"email,omitempty" db:"email"`
	Phone                 string     `json:"phone" db:"phone"`
	Address               string     `json:"address,omitempty" db:"address"`
	City                  string     `json:"city,omitempty" db:"city"`
	State                 string     `json:"state,omitempty" db:"state"`
	PostalCode            string     `json:"postal_code,omitempty" db:"postal_code"`
	DateOfBirth           *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Gender                string     `json:"gender,omitempty" db:"gender"`
	EmergencyContactName  string     `json:"emergency_contact_name,omitempty" db:"emergency_contact_name"`
	EmergencyContactPhone string     `json:"emergency_contact_phone,omitempty" db:"emergency_contact_phone"`
	MedicalHistory        string     `json:"medical_history,omitempty" db:"medical_history"`
	Allergies             string     `json:"allergies,omitempty" db:"allergies"`
	CurrentMedications    string     `json:"current_medications,omitempty" db:"current_medications"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// AgeAt returns the patient's age in whole years at the given instant,
// or nil when the date of birth is unknown.
func (p *Patient) AgeAt(now time.Time) *int {
	if p.DateOfBirth == nil {
		return nil
	}
	dob := *p.DateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return &age
}

// MarshalJSON adds the derived full_name and age fields.
func (p Patient) MarshalJSON() ([]byte, error) {
	type plain Patient
	return json.Marshal(struct {
		plain
		FullName string `json:"full_name"`
		Age      *int   `json:"age,omitempty"`
	}{
		plain:    plain(p),
		FullName: p.FullName(),
		Age:      p.AgeAt(time.Now()),
	})
}

// PatientContext is the patient snapshot handed to the chat pipeline
type PatientContext struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Age                *int   `json:"age,omitempty"`
	Gender             string `json:"gender,omitempty"`
	MedicalHistory     string `json:"medical_history,omitempty"`
	Allergies          string `json:"allergies,omitempty"`
	CurrentMedications string `json:"current_medications,omitempty"`
}

// Context returns the chat snapshot of the patient.
func (p *Patient) Context(now time.Time) *PatientContext {
	if p == nil {
		return nil
	}
	return &PatientContext{
		ID:                 p.ID,
		Name:               p.FullName(),
		Age:                p.AgeAt(now),
		Gender:             p.Gender,
		MedicalHistory:     p.MedicalHistory,
		Allergies:          p.Allergies,
		CurrentMedications: p.CurrentMedications,
	}
}
