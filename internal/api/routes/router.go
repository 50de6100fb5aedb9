package routes

import (
	"net/http"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/api/handlers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/api/middleware"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/observability"
)

// Handlers groups every HTTP handler served by the API.
type Handlers struct {
	Chat          *handlers.ChatHandler
	Doctors       *handlers.DoctorHandler
	Specialities  *handlers.SpecialityHandler
	Appointments  *handlers.AppointmentHandler
	Patients      *handlers.PatientHandler
	Packages      *handlers.HealthPackageHandler
	Callbacks     *handlers.CallbackHandler
	Questionnaire *handlers.QuestionnaireHandler
	Stream        *handlers.SSEHandler
	Health        *handlers.HealthHandler

	// Metrics serves the Prometheus scrape endpoint; optional.
	Metrics http.Handler
}

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux
	h   Handlers

	allowedOrigins  []string
	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router. cacheMiddleware may be nil when Redis is
// disabled.
func NewRouter(h Handlers, allowedOrigins []string, cacheMiddleware *middleware.CacheMiddleware, metrics *observability.Metrics) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		h:               h,
		allowedOrigins:  allowedOrigins,
		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.h.Health.Health)
	if r.h.Metrics != nil {
		r.mux.Handle("GET /metrics", r.h.Metrics)
	}

	// Chat
	r.mux.HandleFunc("POST /api/chat", r.h.Chat.Chat)
	r.mux.HandleFunc("GET /api/chat/sessions/{id}", r.h.Chat.GetSession)

	// Specialities
	r.mux.HandleFunc("GET /api/specialities", r.h.Specialities.ListSpecialities)
	r.mux.HandleFunc("POST /api/specialities", r.h.Specialities.CreateSpeciality)
	r.mux.HandleFunc("GET /api/specialities/{id}", r.h.Specialities.GetSpeciality)
	r.mux.HandleFunc("DELETE /api/specialities/{id}", r.h.Specialities.DeleteSpeciality)
	r.mux.HandleFunc("GET /api/specialities/{id}/doctors", r.h.Specialities.ListSpecialityDoctors)

	// Doctors and their weekly schedule
	r.mux.HandleFunc("GET /api/doctors", r.h.Doctors.ListDoctors)
	r.mux.HandleFunc("POST /api/doctors", r.h.Doctors.CreateDoctor)
	r.mux.HandleFunc("GET /api/doctors/{id}", r.h.Doctors.GetDoctor)
	r.mux.HandleFunc("PUT /api/doctors/{id}", r.h.Doctors.UpdateDoctor)
	r.mux.HandleFunc("GET /api/doctors/{id}/time-slots", r.h.Doctors.ListTimeSlots)
	r.mux.HandleFunc("POST /api/doctors/{id}/time-slots", r.h.Doctors.CreateTimeSlot)
	r.mux.HandleFunc("DELETE /api/time-slots/{id}", r.h.Doctors.DeleteTimeSlot)
	r.mux.HandleFunc("GET /api/doctors/{id}/available-slots/{date}", r.h.Doctors.GetAvailableSlots)

	// Appointments
	r.mux.HandleFunc("POST /api/appointments/book", r.h.Appointments.BookAppointment)
	r.mux.HandleFunc("GET /api/appointments/{id}", r.h.Appointments.GetAppointment)
	r.mux.HandleFunc("PATCH /api/appointments/{id}/status", r.h.Appointments.UpdateStatus)
	r.mux.HandleFunc("GET /api/patients/{id}/appointments", r.h.Appointments.ListPatientAppointments)

	// Live slot updates
	r.mux.HandleFunc("GET /api/stream/doctors/{id}/slots", r.h.Stream.StreamDoctorSlots)
	r.mux.HandleFunc("GET /api/stream/stats", r.h.Stream.StreamStats)

	// Patients
	r.mux.HandleFunc("GET /api/patients", r.h.Patients.ListPatients)
	r.mux.HandleFunc("POST /api/patients", r.h.Patients.CreatePatient)
	r.mux.HandleFunc("GET /api/patients/search", r.h.Patients.SearchPatients)
	r.mux.HandleFunc("GET /api/patients/{id}", r.h.Patients.GetPatient)
	r.mux.HandleFunc("PUT /api/patients/{id}", r.h.Patients.UpdatePatient)

	// Health packages
	r.mux.HandleFunc("GET /api/health-packages", r.h.Packages.ListPackages)
	r.mux.HandleFunc("GET /api/health-packages/{id}", r.h.Packages.GetPackage)
	r.mux.HandleFunc("POST /api/health-packages/{id}/bookings", r.h.Packages.BookPackage)
	r.mux.HandleFunc("GET /api/health-package-bookings", r.h.Packages.ListBookings)
	r.mux.HandleFunc("GET /api/health-package-bookings/{id}", r.h.Packages.GetBooking)
	r.mux.HandleFunc("PATCH /api/health-package-bookings/{id}", r.h.Packages.UpdateBooking)

	// Callback requests
	r.mux.HandleFunc("POST /api/callback-requests", r.h.Callbacks.CreateCallback)
	r.mux.HandleFunc("GET /api/callback-requests", r.h.Callbacks.ListCallbacks)
	r.mux.HandleFunc("PATCH /api/callback-requests/{id}", r.h.Callbacks.UpdateCallback)

	// Questionnaires
	r.mux.HandleFunc("GET /api/questionnaires", r.h.Questionnaire.ListQuestionnaires)
	r.mux.HandleFunc("POST /api/questionnaires", r.h.Questionnaire.CreateQuestionnaire)
	r.mux.HandleFunc("GET /api/questionnaires/categories", r.h.Questionnaire.ListCategories)
	r.mux.HandleFunc("GET /api/questionnaires/{id}", r.h.Questionnaire.GetQuestionnaire)
	r.mux.HandleFunc("PUT /api/questionnaires/{id}", r.h.Questionnaire.UpdateQuestionnaire)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics, r.mux)(handler)
	handler = middleware.LoggingMiddleware(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
