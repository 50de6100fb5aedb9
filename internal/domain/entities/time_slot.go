package entities

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultSlotDurationMinutes is used when a definition is created without one.
const DefaultSlotDurationMinutes = 30

// ClockTime is a time of day, stored as the offset from midnight.
type ClockTime time.Duration

// ParseClockTime parses "HH:MM" or "HH:MM:SS".
func ParseClockTime(s string) (ClockTime, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return clockFromTime(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
}

// NewClockTime builds a ClockTime from hour and minute.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func clockFromTime(t time.Time) ClockTime {
	return ClockTime(time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second)
}

// Duration returns the offset from midnight.
func (c ClockTime) Duration() time.Duration {
	return time.Duration(c)
}

// String formats the time as HH:MM.
func (c ClockTime) String() string {
	d := time.Duration(c)
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

// On combines the time of day with the calendar date of day.
func (c ClockTime) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, day.Location()).Add(time.Duration(c))
}

// MarshalJSON encodes the time as "HH:MM".
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts "HH:MM" or "HH:MM:SS".
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan implements sql.Scanner for TIME columns.
func (c *ClockTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*c = clockFromTime(v)
		return nil
	case []byte:
		return c.scanString(string(v))
	case string:
		return c.scanString(v)
	case nil:
		return errors.New("clock time cannot be null")
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", src)
	}
}

func (c *ClockTime) scanString(s string) error {
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer.
func (c ClockTime) Value() (driver.Value, error) {
	d := time.Duration(c)
	return fmt.Sprintf("%02d:%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute), int(d%time.Minute/time.Second)), nil
}

// TimeSlotDefinition is a doctor's recurring weekly availability on one weekday
type TimeSlotDefinition struct {
	ID                  int64     `json:"id" db:"id"`
	DoctorID            int64     `json:"doctor_id" db:"doctor_id"`
	DayOfWeek           int       `json:"day_of_week" db:"day_of_week"`
	StartTime           ClockTime `json:"start_time" db:"start_time"`
	EndTime             ClockTime `json:"end_time" db:"end_time"`
	SlotDurationMinutes int       `json:"slot_duration_minutes" db:"slot_duration_minutes"`
	IsAvailable         bool      `json:"is_available" db:"is_available"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// SlotDuration returns the step between generated slots.
func (d *TimeSlotDefinition) SlotDuration() time.Duration {
	return time.Duration(d.SlotDurationMinutes) * time.Minute
}

// Validate checks the invariants every stored definition must satisfy.
func (d *TimeSlotDefinition) Validate() error {
	if d.DayOfWeek < 0 || d.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week must be between 0 (Monday) and 6 (Sunday), got %d", d.DayOfWeek)
	}
	if d.StartTime >= d.EndTime {
		return fmt.Errorf("start_time %s must be before end_time %s", d.StartTime, d.EndTime)
	}
	if d.SlotDurationMinutes <= 0 {
		return errors.New("slot_duration_minutes must be positive")
	}
	if d.SlotDuration() > d.EndTime.Duration()-d.StartTime.Duration() {
		return fmt.Errorf("slot_duration_minutes %d exceeds the %s-%s window", d.SlotDurationMinutes, d.StartTime, d.EndTime)
	}
	return nil
}

// WeekdayIndex converts a Go weekday to the Monday=0 convention used by definitions.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// AvailableSlot is a generated bookable time point. It is never persisted.
type AvailableSlot struct {
	Time        string `json:"time"`
	IsAvailable bool   `json:"is_available"`
	SlotID      int64  `json:"slot_id"`
}

// DoctorAvailability is the computed slot list for one doctor on one date
type DoctorAvailability struct {
	DoctorID       int64           `json:"doctor_id"`
	DoctorName     string          `json:"doctor_name"`
	Date           string          `json:"date"`
	DayOfWeek      int             `json:"day_of_week"`
	AvailableSlots []AvailableSlot `json:"available_slots"`
}
