package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/application/services"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

func newDoctorFixture() (*services.DoctorService, *fakeEventBus, *fakeTimeSlotRepo) {
	cardiology := int64(3)
	doctors := newFakeDoctorRepo(
		&entities.Doctor{ID: 7, Name: "Dr. Okafor", SpecialityID: &cardiology, IsAvailable: true},
		&entities.Doctor{ID: 8, Name: "Dr. Bello", IsAvailable: false},
	)
	specialities := newFakeSpecialityRepo(&entities.Speciality{ID: cardiology, Name: "Cardiology", IsActive: true})
	slots := &fakeTimeSlotRepo{}
	bus := newFakeEventBus()
	return services.NewDoctorService(doctors, specialities, slots, bus), bus, slots
}

func TestDoctorService_Doctors(t *testing.T) {
	ctx := context.Background()

	t.Run("available filter", func(t *testing.T) {
		service, _, _ := newDoctorFixture()

		doctors, err := service.ListDoctors(ctx, repositories.DoctorFilter{AvailableOnly: true})
		require.NoError(t, err)
		require.Len(t, doctors, 1)
		assert.Equal(t, int64(7), doctors[0].ID)
	})

	t.Run("update announces the profile change", func(t *testing.T) {
		service, bus, _ := newDoctorFixture()

		doctor, err := service.GetDoctor(ctx, 8)
		require.NoError(t, err)
		doctor.IsAvailable = true
		require.NoError(t, service.UpdateDoctor(ctx, doctor))

		events := bus.eventsOn(providers.EventChannelDoctorUpdates)
		require.Len(t, events, 1)
		assert.Equal(t, entities.DoctorEventTypeProfileUpdated, events[0].EventType)
		assert.Equal(t, true, events[0].ChangedFields["is_available"])
	})

	t.Run("unknown speciality is rejected", func(t *testing.T) {
		service, bus, _ := newDoctorFixture()

		err := service.CreateDoctor(ctx, &entities.Doctor{Name: "Dr. New", SpecialityID: ptr(int64(42))})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Empty(t, bus.eventsOn(providers.EventChannelDoctorUpdates))
	})

	t.Run("speciality doctors", func(t *testing.T) {
		service, _, _ := newDoctorFixture()

		doctors, err := service.ListSpecialityDoctors(ctx, 3, repositories.Pagination{})
		require.NoError(t, err)
		require.Len(t, doctors, 1)

		_, err = service.ListSpecialityDoctors(ctx, 99, repositories.Pagination{})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestDoctorService_TimeSlots(t *testing.T) {
	ctx := context.Background()

	t.Run("duration defaults to thirty minutes", func(t *testing.T) {
		service, bus, _ := newDoctorFixture()

		slot := &entities.TimeSlotDefinition{DoctorID: 7, DayOfWeek: 2, StartTime: entities.NewClockTime(9, 0), EndTime: entities.NewClockTime(12, 0), IsAvailable: true}
		require.NoError(t, service.CreateTimeSlot(ctx, slot))
		assert.Equal(t, 30, slot.SlotDurationMinutes)

		events := bus.eventsOn(providers.GetDoctorChannel(7))
		require.Len(t, events, 1)
		assert.Equal(t, entities.DoctorEventTypeScheduleUpdated, events[0].EventType)
	})

	t.Run("invalid window", func(t *testing.T) {
		service, _, slots := newDoctorFixture()

		err := service.CreateTimeSlot(ctx, &entities.TimeSlotDefinition{DoctorID: 7, DayOfWeek: 2, StartTime: entities.NewClockTime(12, 0), EndTime: entities.NewClockTime(9, 0)})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Empty(t, slots.slots)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		service, _, _ := newDoctorFixture()

		err := service.CreateTimeSlot(ctx, &entities.TimeSlotDefinition{DoctorID: 99, DayOfWeek: 2, StartTime: entities.NewClockTime(9, 0), EndTime: entities.NewClockTime(10, 0)})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		service, _, _ := newDoctorFixture()
		slot := &entities.TimeSlotDefinition{DoctorID: 7, DayOfWeek: 2, StartTime: entities.NewClockTime(9, 0), EndTime: entities.NewClockTime(10, 0)}
		require.NoError(t, service.CreateTimeSlot(ctx, slot))

		require.NoError(t, service.DeleteTimeSlot(ctx, slot.ID))
		remaining, err := service.ListTimeSlots(ctx, 7)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})
}
