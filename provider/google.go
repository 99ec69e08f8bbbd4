package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZaguanLabs/sitelai"
)

// Google Translate endpoints.
const (
	GoogleV2URL  = "https://translation.googleapis.com/language/translate/v2"
	GoogleGtxURL = "https://translate.googleapis.com/translate_a/single"
)

// GoogleProvider translates with Google Translate. With an API key it
// calls the v2 REST API; without one it uses the public gtx endpoint,
// which has no markup mode and is meant for small sites and testing.
type GoogleProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// GoogleConfig holds configuration for the Google Translate provider.
type GoogleConfig struct {
	APIKey     string        // Cloud Translation API key (optional)
	BaseURL    string        // Endpoint override (optional)
	Timeout    time.Duration // HTTP timeout (default: 30s)
	HTTPClient *http.Client  // Custom client (optional)
}

// NewGoogleProvider creates a new Google Translate provider.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = GoogleGtxURL
		if cfg.APIKey != "" {
			baseURL = GoogleV2URL
		}
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &GoogleProvider{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  client,
	}
}

// Translate translates one text or markup span.
func (p *GoogleProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	httpReq, err := p.newRequest(ctx, req)
	if err != nil {
		return "", &sitelai.ProviderError{Message: "failed to build Google Translate request", Cause: err}
	}
	httpReq.Header.Set("User-Agent", sitelai.UserAgent())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", &sitelai.ProviderError{
			Message:   "Google Translate request failed",
			Cause:     err,
			Retryable: ctx.Err() == nil && isRetryableError(err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", &sitelai.ProviderError{Message: "failed to read Google Translate response", Cause: err, Retryable: true}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &sitelai.ProviderError{
			Message:   fmt.Sprintf("Google Translate returned %s", resp.Status),
			Cause:     fmt.Errorf("%s", strings.TrimSpace(string(body))),
			Retryable: retryableStatus(resp.StatusCode),
		}
	}

	return parseGoogleResponse(body)
}

func (p *GoogleProvider) newRequest(ctx context.Context, req TranslateRequest) (*http.Request, error) {
	source := sitelai.BaseLang(req.SourceLang)
	if req.SourceLang == "" {
		source = "auto"
	}
	target := sitelai.ToHTMLLang(req.TargetLang)

	if p.apiKey != "" {
		form := url.Values{
			"q":      {req.Text},
			"target": {target},
			"format": {string(formatOf(req))},
		}
		if source != "auto" {
			form.Set("source", source)
		}

		u := p.baseURL + "?key=" + url.QueryEscape(p.apiKey)
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return httpReq, nil
	}

	query := url.Values{
		"client": {"gtx"},
		"sl":     {source},
		"tl":     {target},
		"dt":     {"t"},
		"q":      {req.Text},
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+query.Encode(), nil)
}

// parseGoogleResponse normalizes the response shapes seen from Google
// Translate endpoints and client libraries:
//
//	{"text": "..."}
//	{"data": {"translations": [{"translatedText": "..."}]}}
//	[[["Hola ", "Hello ", ...], ["mundo", "world", ...]], ...]
func parseGoogleResponse(body []byte) (string, error) {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return "", &sitelai.ProviderError{Message: "invalid response from Google Translate", Cause: err}
	}

	switch v := value.(type) {
	case map[string]any:
		if text, ok := v["text"].(string); ok {
			return text, nil
		}
		if data, ok := v["data"].(map[string]any); ok {
			if list, ok := data["translations"].([]any); ok && len(list) > 0 {
				if item, ok := list[0].(map[string]any); ok {
					if text, ok := item["translatedText"].(string); ok {
						return text, nil
					}
				}
			}
		}

	case []any:
		if len(v) > 0 {
			if segments, ok := v[0].([]any); ok {
				var b strings.Builder
				for _, seg := range segments {
					parts, ok := seg.([]any)
					if !ok || len(parts) == 0 {
						continue
					}
					if text, ok := parts[0].(string); ok {
						b.WriteString(text)
					}
				}
				if b.Len() > 0 {
					return b.String(), nil
				}
			}
		}
	}

	return "", &sitelai.ProviderError{Message: "unrecognized response from Google Translate"}
}

// Verify GoogleProvider implements Provider
var _ Provider = (*GoogleProvider)(nil)
