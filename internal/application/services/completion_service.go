package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/observability"
)

// ErrNoProviders is returned when no completion provider is configured.
var ErrNoProviders = errors.New("no completion provider configured")

// ScoredCompletion is a provider answer with its confidence resolved.
type ScoredCompletion struct {
	Text       string
	Confidence float64
	Provider   string
}

// CompletionService tries completion providers in order until one answers.
type CompletionService struct {
	providers         []providers.CompletionProvider
	timeout           time.Duration
	defaultConfidence float64
	metrics           *observability.ChatMetrics
}

// NewCompletionService creates a completion service over an ordered try-list.
// timeout bounds each provider attempt.
func NewCompletionService(
	list []providers.CompletionProvider,
	timeout time.Duration,
	defaultConfidence float64,
	metrics *observability.ChatMetrics,
) *CompletionService {
	return &CompletionService{
		providers:         list,
		timeout:           timeout,
		defaultConfidence: defaultConfidence,
		metrics:           metrics,
	}
}

// HasProviders reports whether any provider is configured.
func (s *CompletionService) HasProviders() bool {
	return len(s.providers) > 0
}

// GenerateWithConfidence returns the first successful completion with its
// confidence: structured when the provider reports it, else the in-band
// marker, else the default. The marker is always stripped from Text.
// When every provider fails the joined provider errors are returned.
func (s *CompletionService) GenerateWithConfidence(ctx context.Context, prompt *entities.Prompt) (*ScoredCompletion, error) {
	if len(s.providers) == 0 {
		return nil, ErrNoProviders
	}

	var errs []error
	for _, provider := range s.providers {
		completion, err := s.attempt(ctx, provider, prompt)
		if err != nil {
			log.Warn().Err(err).Str("provider", provider.Name()).Msg("completion provider failed")
			errs = append(errs, fmt.Errorf("%s: %w", provider.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return s.score(provider.Name(), completion), nil
	}
	return nil, errors.Join(errs...)
}

func (s *CompletionService) attempt(ctx context.Context, provider providers.CompletionProvider, prompt *entities.Prompt) (*entities.Completion, error) {
	attemptCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := provider.Complete(attemptCtx, prompt)
	outcome := "success"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	}
	s.metrics.ObserveProviderLatency(provider.Name(), outcome, time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}
	if completion == nil || completion.Text == "" {
		return nil, providers.ErrEmptyCompletion
	}
	return completion, nil
}

func (s *CompletionService) score(name string, completion *entities.Completion) *ScoredCompletion {
	text, parsed, found := ParseConfidence(completion.Text)
	scored := &ScoredCompletion{
		Text:       text,
		Confidence: s.defaultConfidence,
		Provider:   name,
	}
	if found {
		scored.Confidence = parsed
	}
	return scored
}
