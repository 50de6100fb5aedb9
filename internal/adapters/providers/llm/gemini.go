package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
	"google.golang.org/api/option"
)

const (
	// GeminiProviderName identifies the Gemini provider in logs and metrics.
	GeminiProviderName = "gemini"

	defaultGeminiModel = "gemini-1.5-flash"
)

// GeminiProvider implements providers.CompletionProvider using Google's Gemini API.
type GeminiProvider struct {
	client  *genai.Client
	modelID string
}

var _ providers.CompletionProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini provider. An empty api key is an error.
func NewGeminiProvider(ctx context.Context, apiKey, modelID string) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, modelID: modelID}, nil
}

func (p *GeminiProvider) Name() string {
	return GeminiProviderName
}

// Complete sends the prompt as a single user turn with a system instruction.
func (p *GeminiProvider) Complete(ctx context.Context, prompt *entities.Prompt) (*entities.Completion, error) {
	if prompt == nil {
		return nil, errors.New("prompt is required")
	}

	model := p.client.GenerativeModel(p.modelID)
	if prompt.Temperature > 0 {
		model.SetTemperature(float32(prompt.Temperature))
	}
	if prompt.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(prompt.MaxTokens))
	}
	if strings.TrimSpace(prompt.System) != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(prompt.System))
	}

	resp, err := model.StartChat().SendMessage(ctx, genai.Text(prompt.User))
	if err != nil {
		return nil, fmt.Errorf("gemini completion failed: %w", err)
	}

	text, err := geminiText(resp)
	if err != nil {
		return nil, err
	}

	return &entities.Completion{
		Text:     text,
		Provider: GeminiProviderName,
		Model:    p.modelID,
	}, nil
}

// Close releases resources held by the Gemini client.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates: %w", providers.ErrEmptyCompletion)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("gemini: %w", providers.ErrEmptyCompletion)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("gemini: %w", providers.ErrEmptyCompletion)
	}
	return text, nil
}
