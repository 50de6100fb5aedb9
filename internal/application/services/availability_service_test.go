package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/application/services"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func mondayMorning(id int64) *entities.TimeSlotDefinition {
	return &entities.TimeSlotDefinition{
		ID:                  id,
		DoctorID:            7,
		DayOfWeek:           0,
		StartTime:           entities.NewClockTime(9, 0),
		EndTime:             entities.NewClockTime(10, 0),
		SlotDurationMinutes: 30,
		IsAvailable:         true,
	}
}

func newAvailabilityFixture(slots []*entities.TimeSlotDefinition, appointments ...*entities.Appointment) (*services.AvailabilityService, *fakeAppointmentRepo) {
	doctors := newFakeDoctorRepo(&entities.Doctor{ID: 7, Name: "Dr. Okafor", IsAvailable: true})
	appointmentRepo := newFakeAppointmentRepo(appointments...)
	return services.NewAvailabilityService(doctors, &fakeTimeSlotRepo{slots: slots}, appointmentRepo), appointmentRepo
}

func TestComputeSlots(t *testing.T) {
	t.Run("end boundary is exclusive", func(t *testing.T) {
		slots := services.ComputeSlots([]*entities.TimeSlotDefinition{mondayMorning(1)}, monday, nil)

		require.Len(t, slots, 2)
		assert.Equal(t, "09:00", slots[0].Time)
		assert.Equal(t, "09:30", slots[1].Time)
		assert.True(t, slots[0].IsAvailable)
		assert.Equal(t, int64(1), slots[1].SlotID)
	})

	t.Run("occupied instants are flagged", func(t *testing.T) {
		slots := services.ComputeSlots([]*entities.TimeSlotDefinition{mondayMorning(1)}, monday, map[string]bool{"09:30:00": true})

		require.Len(t, slots, 2)
		assert.True(t, slots[0].IsAvailable)
		assert.False(t, slots[1].IsAvailable)
	})

	t.Run("a partial trailing step is still generated", func(t *testing.T) {
		def := mondayMorning(1)
		def.EndTime = entities.NewClockTime(10, 15)

		slots := services.ComputeSlots([]*entities.TimeSlotDefinition{def}, monday, nil)
		require.Len(t, slots, 3)
		assert.Equal(t, "10:00", slots[2].Time)
	})

	t.Run("definitions that cannot be walked are skipped", func(t *testing.T) {
		zero := mondayMorning(2)
		zero.SlotDurationMinutes = 0
		inverted := mondayMorning(3)
		inverted.StartTime, inverted.EndTime = inverted.EndTime, inverted.StartTime

		slots := services.ComputeSlots([]*entities.TimeSlotDefinition{zero, inverted, mondayMorning(4)}, monday, nil)
		require.Len(t, slots, 2)
		assert.Equal(t, int64(4), slots[0].SlotID)
	})

	t.Run("definitions keep their order", func(t *testing.T) {
		afternoon := mondayMorning(5)
		afternoon.StartTime = entities.NewClockTime(14, 0)
		afternoon.EndTime = entities.NewClockTime(15, 0)
		afternoon.SlotDurationMinutes = 60

		slots := services.ComputeSlots([]*entities.TimeSlotDefinition{mondayMorning(1), afternoon}, monday, nil)
		require.Len(t, slots, 3)
		assert.Equal(t, "14:00", slots[2].Time)
		assert.Equal(t, int64(5), slots[2].SlotID)
	})
}

func TestAvailabilityService_GetAvailableSlots(t *testing.T) {
	t.Run("booked slot is unavailable", func(t *testing.T) {
		service, appointments := newAvailabilityFixture(
			[]*entities.TimeSlotDefinition{mondayMorning(1)},
			&entities.Appointment{ID: 1, DoctorID: 7, AppointmentDate: monday.Add(9 * time.Hour), Status: entities.AppointmentStatusScheduled, ConfirmationNumber: "AAAA1111"},
			&entities.Appointment{ID: 2, DoctorID: 7, AppointmentDate: monday.Add(9*time.Hour + 30*time.Minute), Status: entities.AppointmentStatusCancelled, ConfirmationNumber: "BBBB2222"},
		)

		availability, err := service.GetAvailableSlots(context.Background(), 7, "2026-03-02")
		require.NoError(t, err)

		assert.Equal(t, "Dr. Okafor", availability.DoctorName)
		assert.Equal(t, 0, availability.DayOfWeek)
		require.Len(t, availability.AvailableSlots, 2)
		assert.False(t, availability.AvailableSlots[0].IsAvailable)
		assert.True(t, availability.AvailableSlots[1].IsAvailable, "cancelled appointments free their slot")
		assert.Equal(t, monday, appointments.occupyingFrom)
		assert.Equal(t, monday.AddDate(0, 0, 1), appointments.occupyingTo)
	})

	t.Run("no definitions yields an empty list", func(t *testing.T) {
		service, _ := newAvailabilityFixture(nil)

		availability, err := service.GetAvailableSlots(context.Background(), 7, "2026-03-03")
		require.NoError(t, err)
		assert.Equal(t, 1, availability.DayOfWeek)
		assert.NotNil(t, availability.AvailableSlots)
		assert.Empty(t, availability.AvailableSlots)
	})

	t.Run("invalid date", func(t *testing.T) {
		service, _ := newAvailabilityFixture(nil)

		_, err := service.GetAvailableSlots(context.Background(), 7, "02/03/2026")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("unknown doctor", func(t *testing.T) {
		service, _ := newAvailabilityFixture(nil)

		_, err := service.GetAvailableSlots(context.Background(), 99, "2026-03-02")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestAvailabilityService_FollowsBookings(t *testing.T) {
	ctx := context.Background()
	booking := newAppointmentFixture(nil)
	availability := services.NewAvailabilityService(
		newFakeDoctorRepo(&entities.Doctor{ID: 7, Name: "Dr. Okafor", IsAvailable: true}),
		&fakeTimeSlotRepo{slots: []*entities.TimeSlotDefinition{mondayMorning(1)}},
		booking.appointments,
	)

	slotFree := func() bool {
		t.Helper()
		result, err := availability.GetAvailableSlots(ctx, 7, "2026-03-02")
		require.NoError(t, err)
		require.Len(t, result.AvailableSlots, 2)
		require.Equal(t, "09:00", result.AvailableSlots[0].Time)
		return result.AvailableSlots[0].IsAvailable
	}

	require.True(t, slotFree())

	confirmation, err := booking.service.BookAppointment(ctx, bookingRequest(7, "2026-03-02 09:00"))
	require.NoError(t, err)
	assert.False(t, slotFree(), "booked slot shows as taken")

	_, err = booking.service.UpdateStatus(ctx, confirmation.AppointmentID, entities.AppointmentStatusCancelled)
	require.NoError(t, err)
	assert.True(t, slotFree(), "cancelled booking frees the slot")
}

func TestAvailabilityService_RepeatableWithoutWrites(t *testing.T) {
	afternoon := mondayMorning(2)
	afternoon.StartTime = entities.NewClockTime(14, 0)
	afternoon.EndTime = entities.NewClockTime(15, 30)
	service, _ := newAvailabilityFixture(
		[]*entities.TimeSlotDefinition{mondayMorning(1), afternoon},
		&entities.Appointment{ID: 1, DoctorID: 7, AppointmentDate: monday.Add(14*time.Hour + 30*time.Minute), Status: entities.AppointmentStatusConfirmed, ConfirmationNumber: "CCCC3333"},
	)

	first, err := service.GetAvailableSlots(context.Background(), 7, "2026-03-02")
	require.NoError(t, err)
	second, err := service.GetAvailableSlots(context.Background(), 7, "2026-03-02")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first.AvailableSlots, 5)
	assert.False(t, first.AvailableSlots[3].IsAvailable)
}
