package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/observability"
)

// AdminSetupMessage is returned when no questionnaire is configured at all.
const AdminSetupMessage = "I'm your healthcare assistant. Please contact the administrator to set up questionnaires."

// CompletionGenerator produces a scored AI answer for a prompt.
type CompletionGenerator interface {
	HasProviders() bool
	GenerateWithConfidence(ctx context.Context, prompt *entities.Prompt) (*ScoredCompletion, error)
}

// ChatPipeline answers a chat query from the AI provider when it is
// confident enough and from the questionnaire set otherwise. Provider
// failures never reach the caller; only repository errors do.
type ChatPipeline struct {
	completions    CompletionGenerator
	questionnaires repositories.QuestionnaireRepository
	threshold      float64
	metrics        *observability.ChatMetrics
}

// NewChatPipeline creates a new chat pipeline
func NewChatPipeline(
	completions CompletionGenerator,
	questionnaires repositories.QuestionnaireRepository,
	threshold float64,
	metrics *observability.ChatMetrics,
) *ChatPipeline {
	return &ChatPipeline{
		completions:    completions,
		questionnaires: questionnaires,
		threshold:      threshold,
		metrics:        metrics,
	}
}

// Resolve runs the AI attempt and, when it is rejected or fails, the
// questionnaire fallback.
func (p *ChatPipeline) Resolve(ctx context.Context, query *entities.ChatQuery) (*entities.PipelineResult, error) {
	ctx, span := observability.StartSpan(ctx, "ChatPipeline.Resolve")
	defer span.End()
	logger := observability.LoggerFromContext(ctx)

	reason := entities.FallbackReasonNoProvider
	confidence := 0.0

	if p.completions != nil && p.completions.HasProviders() {
		scored, err := p.completions.GenerateWithConfidence(ctx, BuildPrompt(query))
		if err != nil {
			logger.Warn().Err(err).Msg("all completion providers failed")
			reason = entities.FallbackReasonProviderError
		} else {
			confidence = scored.Confidence
			p.metrics.ObserveConfidence(confidence)
			if confidence >= p.threshold {
				p.metrics.ObserveResponse("ai")
				return &entities.PipelineResult{
					Response:     scored.Text,
					AIConfidence: &confidence,
					Provider:     scored.Provider,
				}, nil
			}
			reason = entities.FallbackReasonLowConfidence
		}
	}

	logger.Info().
		Str("reason", string(reason)).
		Float64("confidence", confidence).
		Msg("answering from questionnaires")

	result, err := p.fallback(ctx, query.Message, confidence)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	result.FallbackReason = reason
	p.metrics.ObserveFallback(string(reason))
	p.metrics.ObserveResponse("fallback")
	return result, nil
}

func (p *ChatPipeline) fallback(ctx context.Context, message string, confidence float64) (*entities.PipelineResult, error) {
	questionnaires, err := p.questionnaires.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	result := &entities.PipelineResult{
		FallbackMode: true,
		AIConfidence: &confidence,
	}

	if match := FindMatch(message, questionnaires); match != nil {
		log.Debug().Int64("questionnaire_id", match.ID).Msg("questionnaire matched")

		substantive := IsSubstantive(message, GreetingKeywords(questionnaires), HealthKeywords(questionnaires))
		if match.Question != "" && !substantive {
			question := match.Question
			id := match.ID
			result.Response = question
			result.CurrentQuestion = &question
			result.CurrentQuestionnaireID = &id
			return result, nil
		}
		result.Response = RenderTemplate(match.ResponseTemplate, message)
		return result, nil
	}

	// Unmatched messages get the general template as stored.
	if general := DefaultGeneralQuestionnaire(questionnaires); general != nil {
		result.Response = general.ResponseTemplate
		if general.Question != "" {
			question := general.Question
			id := general.ID
			result.CurrentQuestion = &question
			result.CurrentQuestionnaireID = &id
		}
		return result, nil
	}

	result.Response = AdminSetupMessage
	return result, nil
}
