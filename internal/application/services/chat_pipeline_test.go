package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/application/services"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
)

func seededQuestionnaires() *fakeQuestionnaireRepo {
	return &fakeQuestionnaireRepo{questionnaires: []*entities.Questionnaire{
		{
			ID:               1,
			TriggerKeywords:  "hello,hi,hey",
			Question:         "Hello! How can I help you today?",
			ResponseTemplate: "I can help with {user_choice}.",
			Category:         entities.QuestionnaireCategoryGeneral,
			Priority:         5,
			IsActive:         true,
		},
		{
			ID:               2,
			TriggerKeywords:  "pain,hurt",
			Question:         "On a scale of 1 to 10, how bad is the pain?",
			ResponseTemplate: "Pain level: {pain_level}. I recommend {recommendation}.",
			Category:         entities.QuestionnaireCategorySymptoms,
			Priority:         1,
			IsActive:         true,
		},
	}}
}

func pipelineWith(completion *entities.Completion, err error, repo *fakeQuestionnaireRepo) *services.ChatPipeline {
	provider := &stubProvider{name: "openai", completion: completion, err: err}
	completions := services.NewCompletionService([]providers.CompletionProvider{provider}, time.Second, 0.7, nil)
	return services.NewChatPipeline(completions, repo, 0.7, nil)
}

func TestChatPipeline_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("confident answer is returned as is", func(t *testing.T) {
		pipeline := pipelineWith(&entities.Completion{Text: "Stay hydrated. [CONFIDENCE: 0.9]"}, nil, seededQuestionnaires())

		result, err := pipeline.Resolve(ctx, &entities.ChatQuery{Message: "I have a mild headache"})
		require.NoError(t, err)
		assert.Equal(t, "Stay hydrated.", result.Response)
		assert.False(t, result.FallbackMode)
		require.NotNil(t, result.AIConfidence)
		assert.InDelta(t, 0.9, *result.AIConfidence, 1e-9)
		assert.Equal(t, entities.FallbackReasonNone, result.FallbackReason)
		assert.Equal(t, "openai", result.Provider)
	})

	t.Run("confidence equal to the threshold is accepted", func(t *testing.T) {
		pipeline := pipelineWith(&entities.Completion{Text: "Answer [CONFIDENCE: 0.7]"}, nil, seededQuestionnaires())

		result, err := pipeline.Resolve(ctx, &entities.ChatQuery{Message: "question"})
		require.NoError(t, err)
		assert.False(t, result.FallbackMode)
	})

	t.Run("low confidence renders the matched template", func(t *testing.T) {
		pipeline := pipelineWith(&entities.Completion{Text: "Maybe. [CONFIDENCE: 0.3]"}, nil, seededQuestionnaires())

		result, err := pipeline.Resolve(ctx, &entities.ChatQuery{Message: "my knee pain is 7/10"})
		require.NoError(t, err)
		assert.True(t, result.FallbackMode)
		assert.Equal(t, "Pain level: 7. I recommend seeing a doctor today.", result.Response)
		assert.Nil(t, result.CurrentQuestion)
		require.NotNil(t, result.AIConfidence)
		assert.InDelta(t, 0.3, *result.AIConfidence, 1e-9)
		assert.Equal(t, entities.FallbackReasonLowConfidence, result.FallbackReason)
	})

	t.Run("provider failure reports zero confidence", func(t *testing.T) {
		pipeline := pipelineWith(nil, errors.New("connection refused"), seededQuestionnaires())

		result, err := pipeline.Resolve(ctx, &entities.ChatQuery{Message: "my back hurts"})
		require.NoError(t, err)
		assert.True(t, result.FallbackMode)
		require.NotNil(t, result.AIConfidence)
		assert.Zero(t, *result.AIConfidence)
		assert.Equal(t, entities.FallbackReasonProviderError, result.FallbackReason)
	})

	t.Run("greeting asks the questionnaire question", func(t *testing.T) {
		pipeline := services.NewChatPipeline(nil, seededQuestionnaires(), 0.7, nil)

		result, err := pipeline.Resolve(ctx, &entities.ChatQuery{Message: "Hello"})
		require.NoError(t, err)
		assert.Equal(t, "Hello! How can I help you today?", result.Response)
		require.NotNil(t, result.CurrentQuestion)
		assert.Equal(t, result.Response, *result.CurrentQuestion)
		require.NotNil(t, result.CurrentQuestionnaireID)
		assert.Equal(t, int64(1), *result.CurrentQuestionnaireID)
		assert.Equal(t, entities.FallbackReasonNoProvider, result.FallbackReason)
	})

	t.Run("unmatched message uses the general template", func(t *testing.T) {
		pipeline := services.NewChatPipeline(nil, seededQuestionnaires(), 0.7, nil)

		result, err := pipeline.Resolve(ctx, &entities.ChatQuery{Message: "What are your opening times?"})
		require.NoError(t, err)
		assert.Equal(t, "I can help with {user_choice}.", result.Response)
		require.NotNil(t, result.CurrentQuestion)
		assert.Equal(t, "Hello! How can I help you today?", *result.CurrentQuestion)
		require.NotNil(t, result.CurrentQuestionnaireID)
		assert.Equal(t, int64(1), *result.CurrentQuestionnaireID)
		assert.True(t, result.FallbackMode)
	})

	t.Run("no questionnaires configured", func(t *testing.T) {
		pipeline := services.NewChatPipeline(nil, &fakeQuestionnaireRepo{}, 0.7, nil)

		result, err := pipeline.Resolve(ctx, &entities.ChatQuery{Message: "anything"})
		require.NoError(t, err)
		assert.Equal(t, services.AdminSetupMessage, result.Response)
		assert.True(t, result.FallbackMode)
	})

	t.Run("questionnaire lookup failure is returned", func(t *testing.T) {
		pipeline := services.NewChatPipeline(nil, &fakeQuestionnaireRepo{err: errors.New("db down")}, 0.7, nil)

		_, err := pipeline.Resolve(ctx, &entities.ChatQuery{Message: "anything"})
		assert.Error(t, err)
	})
}
