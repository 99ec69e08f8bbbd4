package sitelai

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider is a simple concurrency-safe provider for testing
type mockProvider struct {
	mu           sync.Mutex
	translations map[string]string
	fail         map[string]error
	requests     []TranslateRequest
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		translations: map[string]string{
			"Hello":       "hola",
			"Hello World": "Hola Mundo",
			"A dog":       "Un perro",
			"Tom & Jerry": "Tom & Jerry",
			"Quote":       `la "cita" <b>`,
		},
		fail: map[string]error{},
	}
}

func (m *mockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if err, ok := m.fail[req.Text]; ok {
		return "", err
	}
	if translation, ok := m.translations[req.Text]; ok {
		return translation, nil
	}
	return "[" + req.Text + "]", nil
}

func (m *mockProvider) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.requests))
	for i, r := range m.requests {
		out[i] = r.Text
	}
	return out
}

// mockCache is a simple mock cache for testing
type mockCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]string)}
}

func (c *mockCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.data[key]
	return val, ok
}

func (c *mockCache) Set(key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func newTestDispatcher(p Provider, c TranslationCache) *ServiceDispatcher {
	return NewDispatcher(p, c, TranslateRequest{SourceLang: "en", TargetLang: "es"})
}

func TestDispatch_BlankInputSkipsProvider(t *testing.T) {
	p := newMockProvider()
	d := newTestDispatcher(p, nil)

	for _, in := range []string{"", "   ", "\n\t  \n"} {
		out, err := d.Dispatch(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}

	assert.Empty(t, p.texts())
	assert.Equal(t, 0, d.Stats().Dispatched)
}

func TestDispatch_PreservesWhitespace(t *testing.T) {
	p := newMockProvider()
	d := newTestDispatcher(p, nil)

	out, err := d.Dispatch(context.Background(), "\n  Hello World \t")
	require.NoError(t, err)

	assert.Equal(t, "\n  Hola Mundo \t", out)
	assert.Equal(t, []string{"Hello World"}, p.texts(), "whitespace must not reach the provider")
}

func TestDispatch_CapitalizesWhenSourceIsCapitalized(t *testing.T) {
	p := newMockProvider()
	d := newTestDispatcher(p, nil)

	out, err := d.Dispatch(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hola", out)

	p.translations["hello"] = "hola"
	out, err = d.Dispatch(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hola", out)
}

func TestDispatch_CapitalizesNonASCIIFirstRune(t *testing.T) {
	p := newMockProvider()
	p.translations["Open"] = "ábrelo"
	d := newTestDispatcher(p, nil)

	out, err := d.Dispatch(context.Background(), "Open")
	require.NoError(t, err)
	assert.Equal(t, "Ábrelo", out)
}

// The text-mode result escapes <, > and " but leaves & untouched. This pins
// the current behavior; the serializer does escape & in text nodes.
func TestDispatch_EscapingLeavesAmpersand(t *testing.T) {
	p := newMockProvider()
	d := newTestDispatcher(p, nil)

	out, err := d.Dispatch(context.Background(), "Quote")
	require.NoError(t, err)
	assert.Equal(t, "La &quot;cita&quot; &lt;b&gt;", out)

	out, err = d.Dispatch(context.Background(), "Tom & Jerry")
	require.NoError(t, err)
	assert.Equal(t, "Tom & Jerry", out)
}

func TestDispatchPlain_DoesNotEscape(t *testing.T) {
	p := newMockProvider()
	d := newTestDispatcher(p, newMockCache())

	out, err := d.DispatchPlain(context.Background(), " Quote ")
	require.NoError(t, err)
	assert.Equal(t, ` La "cita" <b> `, out)

	// Shares the text-mode cache entry with Dispatch.
	escaped, err := d.Dispatch(context.Background(), "Quote")
	require.NoError(t, err)
	assert.Equal(t, "La &quot;cita&quot; &lt;b&gt;", escaped)
	assert.Len(t, p.texts(), 1)
}

func TestDispatchHTML_ReturnsMarkupUnescaped(t *testing.T) {
	p := newMockProvider()
	p.translations[`Hello <b>World</b>`] = `Hola <b>Mundo</b>`
	d := newTestDispatcher(p, nil)

	out, err := d.DispatchHTML(context.Background(), ` Hello <b>World</b> `)
	require.NoError(t, err)
	assert.Equal(t, ` Hola <b>Mundo</b> `, out)

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Equal(t, FormatHTML, p.requests[0].Format)
	assert.Equal(t, "en", p.requests[0].SourceLang)
	assert.Equal(t, "es", p.requests[0].TargetLang)
}

func TestDispatch_FailureIsNotRetried(t *testing.T) {
	p := newMockProvider()
	p.fail["Hello"] = &ProviderError{Message: "unavailable", Retryable: true}
	d := newTestDispatcher(p, nil)

	_, err := d.Dispatch(context.Background(), "Hello")
	require.Error(t, err)

	var pe *ProviderError
	assert.True(t, errors.As(err, &pe))
	assert.Len(t, p.texts(), 1)
	assert.Equal(t, 1, d.Stats().Failed)
}

func TestDispatch_EmptyTranslationIsFailure(t *testing.T) {
	p := newMockProvider()
	p.translations["Hello"] = ""
	d := newTestDispatcher(p, nil)

	_, err := d.Dispatch(context.Background(), "Hello")
	assert.ErrorIs(t, err, ErrEmptyTranslation)
}

func TestDispatch_UsesCache(t *testing.T) {
	p := newMockProvider()
	c := newMockCache()
	d := newTestDispatcher(p, c)

	first, err := d.Dispatch(context.Background(), "A dog")
	require.NoError(t, err)
	second, err := d.Dispatch(context.Background(), "  A dog  ")
	require.NoError(t, err)

	assert.Equal(t, "Un perro", first)
	assert.Equal(t, "  Un perro  ", second)
	assert.Len(t, p.texts(), 1)
	assert.Equal(t, DispatchStats{Dispatched: 1, Cached: 1}, d.Stats())

	// Markup and text translations are cached separately.
	_, err = d.DispatchHTML(context.Background(), "A dog")
	require.NoError(t, err)
	assert.Len(t, p.texts(), 2)
}

func TestDispatch_NoProvider(t *testing.T) {
	d := newTestDispatcher(nil, nil)

	_, err := d.Dispatch(context.Background(), "Hello")
	var pe *ProviderError
	assert.ErrorAs(t, err, &pe)
}

func TestDispatch_Concurrent(t *testing.T) {
	p := newMockProvider()
	d := newTestDispatcher(p, newMockCache())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := d.Dispatch(context.Background(), "Hello World")
			assert.NoError(t, err)
			assert.Equal(t, "Hola Mundo", out)
		}()
	}
	wg.Wait()

	stats := d.Stats()
	assert.Equal(t, 50, stats.Dispatched+stats.Cached)
}
