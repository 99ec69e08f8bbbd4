package provider

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider(t *testing.T) {
	m := NewMockProvider()

	out, err := m.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "es_ES"})
	require.NoError(t, err)
	assert.Equal(t, "Hola", out)

	out, err = m.Translate(context.Background(), TranslateRequest{Text: "Unknown text"})
	require.NoError(t, err)
	assert.Equal(t, "[Unknown text]", out)

	assert.Equal(t, 2, m.CallCount())
	assert.Equal(t, "es_ES", m.Requests()[0].TargetLang)

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	assert.Empty(t, m.Requests())
}

func TestMockProvider_Failures(t *testing.T) {
	m := NewMockProvider()
	boom := errors.New("boom")
	m.Failures["Hello"] = boom

	_, err := m.Translate(context.Background(), TranslateRequest{Text: "Hello"})
	assert.ErrorIs(t, err, boom)
}

func TestEchoProvider(t *testing.T) {
	m := NewEchoProvider()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := m.Translate(context.Background(), TranslateRequest{Text: "<p>same</p>"})
			assert.NoError(t, err)
			assert.Equal(t, "<p>same</p>", out)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, m.CallCount())
}
