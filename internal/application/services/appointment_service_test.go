package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/application/services"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

// MockEventBus records publishes through testify/mock.
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.DoctorEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.DoctorEvent, error) {
	args := m.Called(ctx, channel)
	return nil, args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	return m.Called(ctx, channel).Error(0)
}

func (m *MockEventBus) Close() error {
	return m.Called().Error(0)
}

type appointmentFixture struct {
	service      *services.AppointmentService
	appointments *fakeAppointmentRepo
	bus          *fakeEventBus
	registry     *prometheus.Registry
}

func newAppointmentFixture(bus providers.EventBus) appointmentFixture {
	cardiology := int64(3)
	doctors := newFakeDoctorRepo(
		&entities.Doctor{ID: 7, Name: "Dr. Okafor", Specialization: "Heart", SpecialityID: &cardiology, IsAvailable: true},
		&entities.Doctor{ID: 8, Name: "Dr. Bello", Specialization: "General Practice", IsAvailable: true},
	)
	specialities := newFakeSpecialityRepo(&entities.Speciality{ID: cardiology, Name: "Cardiology", IsActive: true})
	patients := newFakePatientRepo(&entities.Patient{ID: 1, FirstName: "Amaka", LastName: "Obi"})
	appointments := newFakeAppointmentRepo()
	registry := prometheus.NewRegistry()

	f := appointmentFixture{appointments: appointments, registry: registry}
	if bus == nil {
		f.bus = newFakeEventBus()
		bus = f.bus
	}
	f.service = services.NewAppointmentService(appointments, doctors, specialities, patients, bus, observability.NewChatMetrics(registry))
	return f
}

func bookingCount(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "healthcare_appointment_booking_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func bookingRequest(doctorID int64, at string) *entities.AppointmentBookingRequest {
	return &entities.AppointmentBookingRequest{PatientID: 1, DoctorID: doctorID, AppointmentDate: at, Notes: "follow-up"}
}

func TestAppointmentService_BookAppointment(t *testing.T) {
	ctx := context.Background()

	t.Run("books and announces the slot", func(t *testing.T) {
		f := newAppointmentFixture(nil)

		confirmation, err := f.service.BookAppointment(ctx, bookingRequest(7, "2026-03-02 09:30"))
		require.NoError(t, err)

		assert.Regexp(t, `^[A-Z0-9]{8}$`, confirmation.ConfirmationNumber)
		assert.Equal(t, "Dr. Okafor", confirmation.DoctorName)
		assert.Equal(t, "Cardiology", confirmation.Speciality)
		assert.Equal(t, "2026-03-02 09:30", confirmation.AppointmentDate)
		assert.Equal(t, entities.AppointmentStatusScheduled, confirmation.Status)

		stored, err := f.appointments.GetByID(ctx, confirmation.AppointmentID)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC), stored.AppointmentDate)

		doctorEvents := f.bus.eventsOn(providers.GetDoctorChannel(7))
		require.Len(t, doctorEvents, 1)
		assert.Equal(t, entities.DoctorEventTypeSlotBooked, doctorEvents[0].EventType)
		assert.Equal(t, "2026-03-02", doctorEvents[0].Date)
		assert.Equal(t, "09:30", doctorEvents[0].Time)
		assert.Len(t, f.bus.eventsOn(providers.EventChannelDoctorUpdates), 1)
		assert.Equal(t, 1.0, bookingCount(t, f.registry, "booked"))
	})

	t.Run("speciality falls back to the free-text specialization", func(t *testing.T) {
		f := newAppointmentFixture(nil)

		confirmation, err := f.service.BookAppointment(ctx, bookingRequest(8, "2026-03-02 10:00"))
		require.NoError(t, err)
		assert.Equal(t, "General Practice", confirmation.Speciality)
	})

	t.Run("second booking of the same slot conflicts", func(t *testing.T) {
		f := newAppointmentFixture(nil)

		_, err := f.service.BookAppointment(ctx, bookingRequest(7, "2026-03-02 09:30"))
		require.NoError(t, err)
		_, err = f.service.BookAppointment(ctx, bookingRequest(7, "2026-03-02 09:30"))

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
		assert.Equal(t, 1.0, bookingCount(t, f.registry, "conflict"))
		assert.Len(t, f.bus.eventsOn(providers.GetDoctorChannel(7)), 1)
	})

	t.Run("concurrent bookings yield exactly one success", func(t *testing.T) {
		f := newAppointmentFixture(nil)

		var wg sync.WaitGroup
		results := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.service.BookAppointment(ctx, bookingRequest(7, "2026-03-02 11:00"))
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		var booked, conflicts int
		for err := range results {
			switch {
			case err == nil:
				booked++
			case apperrors.IsType(err, apperrors.ErrorTypeConflict):
				conflicts++
			}
		}
		assert.Equal(t, 1, booked)
		assert.Equal(t, 7, conflicts)
	})

	t.Run("invalid date format", func(t *testing.T) {
		f := newAppointmentFixture(nil)

		_, err := f.service.BookAppointment(ctx, bookingRequest(7, "2026-03-02T09:30:00Z"))
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("unknown doctor or patient", func(t *testing.T) {
		f := newAppointmentFixture(nil)

		_, err := f.service.BookAppointment(ctx, bookingRequest(99, "2026-03-02 09:30"))
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

		req := bookingRequest(7, "2026-03-02 09:30")
		req.PatientID = 404
		_, err = f.service.BookAppointment(ctx, req)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("publish failures do not fail the booking", func(t *testing.T) {
		bus := new(MockEventBus)
		bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis unavailable"))
		f := newAppointmentFixture(bus)

		_, err := f.service.BookAppointment(ctx, bookingRequest(7, "2026-03-02 09:30"))
		require.NoError(t, err)
		bus.AssertNumberOfCalls(t, "Publish", 2)
	})
}

func TestAppointmentService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("cancelling releases the slot", func(t *testing.T) {
		f := newAppointmentFixture(nil)
		booked, err := f.service.BookAppointment(ctx, bookingRequest(7, "2026-03-02 09:30"))
		require.NoError(t, err)

		updated, err := f.service.UpdateStatus(ctx, booked.AppointmentID, entities.AppointmentStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusCancelled, updated.Status)

		events := f.bus.eventsOn(providers.GetDoctorChannel(7))
		require.Len(t, events, 2)
		assert.Equal(t, entities.DoctorEventTypeSlotReleased, events[1].EventType)

		_, err = f.service.BookAppointment(ctx, bookingRequest(7, "2026-03-02 09:30"))
		assert.NoError(t, err, "a cancelled slot can be booked again")
	})

	t.Run("confirming keeps the slot without a new event", func(t *testing.T) {
		f := newAppointmentFixture(nil)
		booked, err := f.service.BookAppointment(ctx, bookingRequest(7, "2026-03-02 09:30"))
		require.NoError(t, err)

		_, err = f.service.UpdateStatus(ctx, booked.AppointmentID, entities.AppointmentStatusConfirmed)
		require.NoError(t, err)
		assert.Len(t, f.bus.eventsOn(providers.GetDoctorChannel(7)), 1)
	})

	t.Run("restoring a taken slot conflicts", func(t *testing.T) {
		f := newAppointmentFixture(nil)
		first, err := f.service.BookAppointment(ctx, bookingRequest(7, "2026-03-02 09:30"))
		require.NoError(t, err)
		_, err = f.service.UpdateStatus(ctx, first.AppointmentID, entities.AppointmentStatusCancelled)
		require.NoError(t, err)
		_, err = f.service.BookAppointment(ctx, bookingRequest(7, "2026-03-02 09:30"))
		require.NoError(t, err)

		_, err = f.service.UpdateStatus(ctx, first.AppointmentID, entities.AppointmentStatusScheduled)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newAppointmentFixture(nil)

		_, err := f.service.UpdateStatus(ctx, 1, entities.AppointmentStatus("rescheduled"))
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestAppointmentService_ListPatientAppointments(t *testing.T) {
	ctx := context.Background()
	f := newAppointmentFixture(nil)
	_, err := f.service.BookAppointment(ctx, bookingRequest(7, "2026-03-02 09:30"))
	require.NoError(t, err)

	list, err := f.service.ListPatientAppointments(ctx, 1, repositories.AppointmentFilter{Status: entities.AppointmentStatusScheduled})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.service.ListPatientAppointments(ctx, 1, repositories.AppointmentFilter{Status: "unknown"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = f.service.ListPatientAppointments(ctx, 404, repositories.AppointmentFilter{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
