package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a mock translation provider for tests and dry runs.
// It is safe for concurrent use.
type MockProvider struct {
	mu sync.Mutex

	Translations map[string]string // Map of source text to translation
	Failures     map[string]error  // Source texts that fail with the given error
	Echo         bool              // Return the source text unchanged
	callCount    int
	requests     []TranslateRequest
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":                "Hola",
			"World":                "Mundo",
			"Hello World":          "Hola Mundo",
			"Welcome to our site.": "Bienvenido a nuestro sitio.",
		},
		Failures: map[string]error{},
	}
}

// NewEchoProvider returns a mock that records requests and returns each
// text unchanged.
func NewEchoProvider() *MockProvider {
	return &MockProvider{Echo: true}
}

// Translate returns the mock translation. Unknown texts come back in
// brackets.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.requests = append(m.requests, req)

	if err, ok := m.Failures[req.Text]; ok {
		return "", err
	}
	if m.Echo {
		return req.Text, nil
	}
	if translation, ok := m.Translations[req.Text]; ok {
		return translation, nil
	}
	return fmt.Sprintf("[%s]", req.Text), nil
}

// CallCount returns the number of Translate calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Requests returns a copy of the requests received so far.
func (m *MockProvider) Requests() []TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TranslateRequest(nil), m.requests...)
}

// Reset clears the call count and request log.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.requests = nil
}

// Verify MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)
