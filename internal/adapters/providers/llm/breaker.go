package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
)

// BreakerSettings tunes the circuit breaker placed in front of each provider.
type BreakerSettings struct {
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial call.
	OpenTimeout time.Duration
}

// DefaultBreakerSettings opens after 5 consecutive failures for 30 seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second}
}

// BreakerProvider short-circuits a provider that keeps failing so the chat
// pipeline falls back without waiting on the provider timeout every time.
type BreakerProvider struct {
	next    providers.CompletionProvider
	breaker *gobreaker.CircuitBreaker
}

var _ providers.CompletionProvider = (*BreakerProvider)(nil)

// WithBreaker wraps next in a circuit breaker.
func WithBreaker(next providers.CompletionProvider, settings BreakerSettings) *BreakerProvider {
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = DefaultBreakerSettings().ConsecutiveFailures
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = DefaultBreakerSettings().OpenTimeout
	}

	threshold := settings.ConsecutiveFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("completion provider circuit breaker state changed")
		},
	})

	return &BreakerProvider{next: next, breaker: cb}
}

func (p *BreakerProvider) Name() string {
	return p.next.Name()
}

// Complete runs the wrapped provider unless the breaker is open, in which
// case gobreaker.ErrOpenState is returned immediately.
func (p *BreakerProvider) Complete(ctx context.Context, prompt *entities.Prompt) (*entities.Completion, error) {
	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.next.Complete(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}
	return result.(*entities.Completion), nil
}

// State reports the breaker state for health output.
func (p *BreakerProvider) State() string {
	return p.breaker.State().String()
}
