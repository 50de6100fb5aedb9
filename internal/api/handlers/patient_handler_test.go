package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/api/handlers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

type MockPatientService struct {
	mock.Mock
}

func (m *MockPatientService) CreatePatient(ctx context.Context, patient *entities.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *MockPatientService) GetPatient(ctx context.Context, id int64) (*entities.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Patient), args.Error(1)
}

func (m *MockPatientService) UpdatePatient(ctx context.Context, patient *entities.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *MockPatientService) ListPatients(ctx context.Context, page repositories.Pagination) ([]*entities.Patient, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]*entities.Patient), args.Error(1)
}

func (m *MockPatientService) SearchPatients(ctx context.Context, term string, page repositories.Pagination) ([]*entities.Patient, error) {
	args := m.Called(ctx, term, page)
	return args.Get(0).([]*entities.Patient), args.Error(1)
}

func TestPatientHandler_CreatePatient(t *testing.T) {
	t.Run("parses the date of birth and email", func(t *testing.T) {
		service := new(MockPatientService)
		handler := handlers.NewPatientHandler(service)

		service.On("CreatePatient", mock.Anything, mock.MatchedBy(func(p *entities.Patient) bool {
			return p.FirstName == "Amaka" && p.Email != nil && *p.Email == "amaka@example.com" &&
				p.DateOfBirth != nil && p.DateOfBirth.Year() == 1990
		})).Return(nil)

		body := `{"first_name":" Amaka ","last_name":"Eze","email":"amaka@example.com","phone":"08012345678","date_of_birth":"1990-04-02","gender":"female"}`
		req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.CreatePatient(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		var got map[string]interface{}
		decodeJSON(t, w, &got)
		assert.Equal(t, "Amaka Eze", got["full_name"])
		assert.NotNil(t, got["age"])
		service.AssertExpectations(t)
	})

	t.Run("stores a blank email as absent", func(t *testing.T) {
		service := new(MockPatientService)
		handler := handlers.NewPatientHandler(service)

		service.On("CreatePatient", mock.Anything, mock.MatchedBy(func(p *entities.Patient) bool {
			return p.Email == nil
		})).Return(nil)

		body := `{"first_name":"Amaka","last_name":"Eze","email":"","phone":"08012345678"}`
		req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.CreatePatient(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		service.AssertExpectations(t)
	})

	t.Run("rejects bad dates and genders", func(t *testing.T) {
		handler := handlers.NewPatientHandler(new(MockPatientService))

		body := `{"first_name":"Amaka","last_name":"Eze","phone":"08012345678","date_of_birth":"02/04/1990","gender":"unknown"}`
		req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.CreatePatient(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		msg := errorMessage(t, w)
		assert.Contains(t, msg, "date_of_birth must match the layout 2006-01-02")
		assert.Contains(t, msg, "gender must be one of [male, female, other]")
	})

	t.Run("maps a duplicate email to 409", func(t *testing.T) {
		service := new(MockPatientService)
		handler := handlers.NewPatientHandler(service)
		service.On("CreatePatient", mock.Anything, mock.Anything).
			Return(apperrors.NewConflictError("a patient with this email already exists"))

		body := `{"first_name":"Amaka","last_name":"Eze","email":"amaka@example.com","phone":"08012345678"}`
		req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.CreatePatient(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestPatientHandler_SearchPatients(t *testing.T) {
	t.Run("searches by trimmed term", func(t *testing.T) {
		service := new(MockPatientService)
		handler := handlers.NewPatientHandler(service)
		service.On("SearchPatients", mock.Anything, "eze", mock.Anything).
			Return([]*entities.Patient{{ID: 1, FirstName: "Amaka", LastName: "Eze"}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/patients/search?q=+eze+", nil)
		w := httptest.NewRecorder()
		handler.SearchPatients(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		service.AssertExpectations(t)
	})

	t.Run("requires a term", func(t *testing.T) {
		handler := handlers.NewPatientHandler(new(MockPatientService))

		req := httptest.NewRequest(http.MethodGet, "/api/patients/search?q=", nil)
		w := httptest.NewRecorder()
		handler.SearchPatients(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPatientHandler_UpdatePatient(t *testing.T) {
	service := new(MockPatientService)
	handler := handlers.NewPatientHandler(service)
	service.On("UpdatePatient", mock.Anything, mock.MatchedBy(func(p *entities.Patient) bool {
		return p.ID == 2
	})).Return(apperrors.NewNotFoundError("patient with id 2 not found"))

	body := `{"first_name":"Amaka","last_name":"Eze","phone":"08012345678"}`
	req := httptest.NewRequest(http.MethodPut, "/api/patients/2", strings.NewReader(body))
	req.SetPathValue("id", "2")
	w := httptest.NewRecorder()
	handler.UpdatePatient(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
