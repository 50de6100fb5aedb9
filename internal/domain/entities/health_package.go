package entities

import (
	"time"
)

// HealthPackage is a bundle of diagnostic tests sold at a fixed price
type HealthPackage struct {
	ID                      int64               `json:"id" db:"id"`
	Name                    string              `json:"name" db:"name"`
	Description             string              `json:"description,omitempty" db:"description"`
	Price                   float64             `json:"price" db:"price"`
	OriginalPrice           *float64            `json:"original_price,omitempty" db:"original_price"`
	DurationHours           *int                `json:"duration_hours,omitempty" db:"duration_hours"`
	AgeGroup                string              `json:"age_group,omitempty" db:"age_group"`
	GenderSpecific          string              `json:"gender_specific,omitempty" db:"gender_specific"`
	FastingRequired         bool                `json:"fasting_required" db:"fasting_required"`
	HomeCollectionAvailable bool                `json:"home_collection_available" db:"home_collection_available"`
	LabVisitRequired        bool                `json:"lab_visit_required" db:"lab_visit_required"`
	ReportDeliveryDays      int                 `json:"report_delivery_days" db:"report_delivery_days"`
	IsActive                bool                `json:"is_active" db:"is_active"`
	ImageURL                string              `json:"image_url,omitempty" db:"image_url"`
	CreatedAt               time.Time           `json:"created_at" db:"created_at"`
	Tests                   []HealthPackageTest `json:"tests,omitempty" db:"-"`
}

// HealthPackageTest is one test included in a package
type HealthPackageTest struct {
	ID              int64  `json:"id" db:"id"`
	PackageID       int64  `json:"package_id" db:"package_id"`
	TestName        string `json:"test_name" db:"test_name"`
	TestCategory    string `json:"test_category,omitempty" db:"test_category"`
	TestDescription string `json:"test_description,omitempty" db:"test_description"`
	IsOptional      bool   `json:"is_optional" db:"is_optional"`
}

// PackageBookingStatus is the fulfilment state of a package booking
type PackageBookingStatus string

const (
	PackageBookingStatusConfirmed PackageBookingStatus = "confirmed"
	PackageBookingStatusCompleted PackageBookingStatus = "completed"
	PackageBookingStatusCancelled PackageBookingStatus = "cancelled"
)

// PaymentStatus is the payment state of a package booking
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// HealthPackageBooking is a patient's order for a package
type HealthPackageBooking struct {
	ID                 int64                `json:"id" db:"id"`
	PackageID          int64                `json:"package_id" db:"package_id"`
	PackageName        string               `json:"package_name,omitempty" db:"-"`
	PatientName        string               `json:"patient_name" db:"patient_name"`
	PatientEmail       string               `json:"patient_email" db:"patient_email"`
	PatientPhone       string               `json:"patient_phone" db:"patient_phone"`
	PatientAge         *int                 `json:"patient_age,omitempty" db:"patient_age"`
	PatientGender      string               `json:"patient_gender,omitempty" db:"patient_gender"`
	PreferredDate      time.Time            `json:"preferred_date" db:"preferred_date"`
	PreferredTime      string               `json:"preferred_time,omitempty" db:"preferred_time"`
	TotalAmount        float64              `json:"total_amount" db:"total_amount"`
	Status             PackageBookingStatus `json:"status" db:"status"`
	ConfirmationNumber string               `json:"confirmation_number" db:"confirmation_number"`
	PaymentStatus      PaymentStatus        `json:"payment_status" db:"payment_status"`
	Notes              string               `json:"notes,omitempty" db:"notes"`
	BookingDate        time.Time            `json:"booking_date" db:"booking_date"`
	UpdatedAt          time.Time            `json:"updated_at" db:"updated_at"`
}
