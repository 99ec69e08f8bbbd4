package provider

import (
	"context"
	"encoding/json"

	"github.com/ZaguanLabs/sitelai"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider translates with an OpenAI-compatible chat completion API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate translates one text or markup span.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: buildUserMessage(req)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", &sitelai.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &sitelai.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return parseTranslation(resp.Choices[0].Message.Content)
}

// buildUserMessage wraps the payload in JSON so leading markup or quotes
// cannot be mistaken for instructions.
func buildUserMessage(req TranslateRequest) string {
	data, _ := json.Marshal(map[string]string{
		"format": string(formatOf(req)),
		"text":   req.Text,
	})
	return string(data)
}

func formatOf(req TranslateRequest) sitelai.TextFormat {
	if req.Format == "" {
		return sitelai.FormatText
	}
	return req.Format
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
