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

type chatFixture struct {
	service  *services.ChatService
	sessions *fakeSessionRepo
}

func newChatFixture(historyLimit int) chatFixture {
	dob := time.Date(1980, 5, 17, 0, 0, 0, 0, time.UTC)
	patients := newFakePatientRepo(&entities.Patient{
		ID:          1,
		FirstName:   "Amaka",
		LastName:    "Obi",
		DateOfBirth: &dob,
		Allergies:   "penicillin",
	})
	doctors := newFakeDoctorRepo(&entities.Doctor{ID: 7, Name: "Dr. Okafor", Specialization: "Cardiology"})
	sessions := newFakeSessionRepo()
	pipeline := services.NewChatPipeline(nil, seededQuestionnaires(), 0.7, nil)

	return chatFixture{
		service:  services.NewChatService(pipeline, patients, doctors, sessions, historyLimit),
		sessions: sessions,
	}
}

func TestChatService_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("new session with resolved context", func(t *testing.T) {
		f := newChatFixture(50)

		resp, err := f.service.Handle(ctx, &entities.ChatRequest{Message: "hello", PatientID: ptr(int64(1)), DoctorID: ptr(int64(7))})
		require.NoError(t, err)

		require.NotNil(t, resp.PatientContext)
		assert.Equal(t, "Amaka Obi", resp.PatientContext.Name)
		require.NotNil(t, resp.DoctorContext)
		assert.Equal(t, "Dr. Okafor", resp.DoctorContext.Name)
		assert.NotNil(t, resp.RetrievedDocuments)
		assert.Empty(t, resp.RetrievedDocuments)
		assert.True(t, resp.FallbackMode)
		require.NotNil(t, resp.CurrentQuestion)

		require.NotNil(t, resp.SessionID)
		session, err := f.service.GetSession(ctx, *resp.SessionID)
		require.NoError(t, err)
		require.Len(t, session.SessionData, 2)
		assert.Equal(t, "user", session.SessionData[0].Role)
		assert.Equal(t, "assistant", session.SessionData[1].Role)
		assert.Equal(t, int64(1), *session.PatientID)
		require.NotNil(t, session.CurrentQuestionnaireID)
		assert.Equal(t, int64(1), *session.CurrentQuestionnaireID)
	})

	t.Run("unknown patient is dropped from the context", func(t *testing.T) {
		f := newChatFixture(50)

		resp, err := f.service.Handle(ctx, &entities.ChatRequest{Message: "my chest pain is 9/10", PatientID: ptr(int64(404))})
		require.NoError(t, err)
		assert.Nil(t, resp.PatientContext)

		session, err := f.service.GetSession(ctx, *resp.SessionID)
		require.NoError(t, err)
		assert.Nil(t, session.PatientID)
		assert.Nil(t, session.CurrentQuestionnaireID)
	})

	t.Run("existing session keeps a bounded history", func(t *testing.T) {
		f := newChatFixture(4)

		first, err := f.service.Handle(ctx, &entities.ChatRequest{Message: "hello"})
		require.NoError(t, err)
		for _, msg := range []string{"my arm hurts", "it is 5/10"} {
			_, err := f.service.Handle(ctx, &entities.ChatRequest{Message: msg, SessionID: first.SessionID})
			require.NoError(t, err)
		}

		session, err := f.service.GetSession(ctx, *first.SessionID)
		require.NoError(t, err)
		require.Len(t, session.SessionData, 4)
		assert.Equal(t, "my arm hurts", session.SessionData[0].Content)
		assert.Equal(t, 3, f.sessions.updates)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newChatFixture(50)

		_, err := f.service.Handle(ctx, &entities.ChatRequest{Message: "hello", SessionID: ptr(int64(42))})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}
