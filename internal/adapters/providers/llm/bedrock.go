package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
)

// BedrockProviderName identifies the Bedrock provider in logs and metrics.
const BedrockProviderName = "bedrock"

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockProvider implements providers.CompletionProvider using the Bedrock Converse API.
type BedrockProvider struct {
	api     bedrockConverseAPI
	modelID string
}

var _ providers.CompletionProvider = (*BedrockProvider)(nil)

// NewBedrockProvider wraps a Converse client for one model.
func NewBedrockProvider(api bedrockConverseAPI, modelID string) (*BedrockProvider, error) {
	if api == nil {
		return nil, errors.New("bedrock converse client is required")
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("bedrock model id is required")
	}
	return &BedrockProvider{api: api, modelID: modelID}, nil
}

func (p *BedrockProvider) Name() string {
	return BedrockProviderName
}

func (p *BedrockProvider) Complete(ctx context.Context, prompt *entities.Prompt) (*entities.Completion, error) {
	if prompt == nil {
		return nil, errors.New("prompt is required")
	}

	var system []brtypes.SystemContentBlock
	if strings.TrimSpace(prompt.System) != "" {
		system = append(system, &brtypes.SystemContentBlockMemberText{Value: prompt.System})
	}

	var inference *brtypes.InferenceConfiguration
	if prompt.MaxTokens > 0 || prompt.Temperature > 0 {
		inference = &brtypes.InferenceConfiguration{}
		if prompt.MaxTokens > 0 {
			inference.MaxTokens = aws.Int32(int32(prompt.MaxTokens))
		}
		if prompt.Temperature > 0 {
			inference.Temperature = aws.Float32(float32(prompt.Temperature))
		}
	}

	out, err := p.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(p.modelID),
		System:  system,
		Messages: []brtypes.Message{{
			Role: brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{
				&brtypes.ContentBlockMemberText{Value: prompt.User},
			},
		}},
		InferenceConfig: inference,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock converse failed: %w", err)
	}

	text, err := bedrockText(out)
	if err != nil {
		return nil, err
	}

	return &entities.Completion{
		Text:     text,
		Provider: BedrockProviderName,
		Model:    p.modelID,
	}, nil
}

func bedrockText(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil {
		return "", fmt.Errorf("bedrock response is nil: %w", providers.ErrEmptyCompletion)
	}
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("bedrock response did not include a message: %w", providers.ErrEmptyCompletion)
	}

	var b strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*brtypes.ContentBlockMemberText); ok {
			b.WriteString(text.Value)
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("bedrock: %w", providers.ErrEmptyCompletion)
	}
	return text, nil
}
