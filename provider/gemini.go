package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/sitelai"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when GeminiConfig.Model is empty.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider translates with Google's Gemini models.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
}

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey      string  // Gemini API key; empty selects Vertex AI
	Project     string  // GCP project for Vertex AI
	Location    string  // GCP location for Vertex AI
	Model       string  // Model to use (default: DefaultGeminiModel)
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom endpoint (optional)
}

// NewGeminiProvider creates a Gemini provider. The Gemini API backend is
// used when an API key is given, Vertex AI otherwise.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	config := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.APIKey == "" {
		if cfg.Project == "" || cfg.Location == "" {
			return nil, fmt.Errorf("gemini: an API key or a project and location are required")
		}
		config.Backend = genai.BackendVertexAI
		config.Project = cfg.Project
		config.Location = cfg.Location
	}
	if cfg.BaseURL != "" {
		config.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &GeminiProvider{
		client:      client,
		model:       model,
		temperature: temperature,
	}, nil
}

// Translate translates one text or markup span.
func (p *GeminiProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	temperature := p.temperature
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(buildUserMessage(req)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buildSystemPrompt(req), genai.RoleUser),
		Temperature:       &temperature,
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return "", &sitelai.ProviderError{
			Message:   "Gemini API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &sitelai.ProviderError{
			Message:   "no response from Gemini",
			Retryable: true,
		}
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}

	return parseTranslation(b.String())
}

// Verify GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)
