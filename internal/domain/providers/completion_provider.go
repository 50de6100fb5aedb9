package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
)

var (
	// ErrProviderUnauthorized is returned when a provider rejects its credentials.
	ErrProviderUnauthorized = errors.New("completion provider unauthorized")

	// ErrEmptyCompletion is returned when a provider answers without text.
	ErrEmptyCompletion = errors.New("completion provider returned no text")
)

// CompletionProvider generates text for a prompt. Variants exist per vendor;
// unconfigured vendors are never constructed.
type CompletionProvider interface {
	// Name identifies the provider in logs and metrics
	Name() string

	// Complete returns the generated text, or an error on any auth, quota,
	// network or decoding failure
	Complete(ctx context.Context, prompt *entities.Prompt) (*entities.Completion, error)
}
