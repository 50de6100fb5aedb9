package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/clients/openai"
	"github.com/zatekoja/healthcare-chatbot/backend/pkg/config"
)

// BuildProviders constructs the configured completion providers in the
// order of cfg.Chat.ProviderOrder, each behind a circuit breaker.
// Providers without credentials are skipped, so the result may be empty.
// The returned closer releases provider clients.
func BuildProviders(ctx context.Context, cfg *config.Config) ([]providers.CompletionProvider, io.Closer, error) {
	if cfg == nil {
		return nil, nil, errors.New("config is required")
	}

	var (
		built   []providers.CompletionProvider
		closers closerList
	)

	for _, name := range cfg.Chat.ProviderOrder {
		var (
			provider providers.CompletionProvider
			err      error
		)

		switch name {
		case config.ProviderOpenAI:
			if cfg.OpenAI.APIKey == "" {
				log.Info().Str("provider", name).Msg("completion provider not configured, skipping")
				continue
			}
			provider, err = openai.NewClient(&cfg.OpenAI)
		case config.ProviderGemini:
			if cfg.Gemini.APIKey == "" {
				log.Info().Str("provider", name).Msg("completion provider not configured, skipping")
				continue
			}
			var gemini *GeminiProvider
			gemini, err = NewGeminiProvider(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
			if err == nil {
				closers = append(closers, gemini)
				provider = gemini
			}
		case config.ProviderBedrock:
			if !cfg.Bedrock.Enabled {
				log.Info().Str("provider", name).Msg("completion provider not configured, skipping")
				continue
			}
			provider, err = newBedrockFromConfig(ctx, cfg.Bedrock)
		default:
			err = fmt.Errorf("unknown completion provider %q", name)
		}

		if err != nil {
			_ = closers.Close()
			return nil, nil, fmt.Errorf("failed to build %s provider: %w", name, err)
		}

		built = append(built, WithBreaker(provider, DefaultBreakerSettings()))
		log.Info().Str("provider", name).Msg("completion provider enabled")
	}

	return built, closers, nil
}

func newBedrockFromConfig(ctx context.Context, cfg config.BedrockConfig) (*BedrockProvider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewBedrockProvider(bedrockruntime.NewFromConfig(awsCfg), cfg.ModelID)
}

type closerList []io.Closer

func (l closerList) Close() error {
	var errs []error
	for _, c := range l {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
