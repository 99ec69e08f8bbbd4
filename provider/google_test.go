package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZaguanLabs/sitelai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleProvider_V2(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		got = r
		_, _ = w.Write([]byte(`{"data":{"translations":[{"translatedText":"Hola <b>mundo</b>"}]}}`))
	}))
	defer srv.Close()

	p := NewGoogleProvider(GoogleConfig{APIKey: "secret", BaseURL: srv.URL})
	out, err := p.Translate(context.Background(), TranslateRequest{
		Text:       "Hello <b>world</b>",
		SourceLang: "en_US",
		TargetLang: "es",
		Format:     sitelai.FormatHTML,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hola <b>mundo</b>", out)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "secret", got.URL.Query().Get("key"))
	assert.Equal(t, "Hello <b>world</b>", got.PostForm.Get("q"))
	assert.Equal(t, "en", got.PostForm.Get("source"))
	assert.Equal(t, "es", got.PostForm.Get("target"))
	assert.Equal(t, "html", got.PostForm.Get("format"))
}

func TestGoogleProvider_Gtx(t *testing.T) {
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`[[["Hola. ","Hello. ",null,null,10],["Adiós.","Goodbye.",null,null,10]],null,"en"]`))
	}))
	defer srv.Close()

	p := NewGoogleProvider(GoogleConfig{BaseURL: srv.URL})
	out, err := p.Translate(context.Background(), TranslateRequest{Text: "Hello. Goodbye.", SourceLang: "en", TargetLang: "es"})
	require.NoError(t, err)

	assert.Equal(t, "Hola. Adiós.", out)
	assert.Equal(t, []string{"gtx"}, query["client"])
	assert.Equal(t, []string{"es"}, query["tl"])
	assert.Equal(t, []string{"Hello. Goodbye."}, query["q"])
}

func TestGoogleProvider_StatusErrors(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusForbidden, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			_, err := NewGoogleProvider(GoogleConfig{BaseURL: srv.URL}).Translate(context.Background(),
				TranslateRequest{Text: "Hello", TargetLang: "es"})

			var pe *sitelai.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.retryable, pe.Retryable)
		})
	}
}

func TestParseGoogleResponse(t *testing.T) {
	out, err := parseGoogleResponse([]byte(`{"text":"Hola"}`))
	require.NoError(t, err)
	assert.Equal(t, "Hola", out)

	_, err = parseGoogleResponse([]byte(`{"data":{"translations":[]}}`))
	assert.Error(t, err)

	_, err = parseGoogleResponse([]byte(`<html>`))
	assert.Error(t, err)
}

func TestNewGoogleProvider_Endpoints(t *testing.T) {
	assert.Equal(t, GoogleGtxURL, NewGoogleProvider(GoogleConfig{}).baseURL)
	assert.Equal(t, GoogleV2URL, NewGoogleProvider(GoogleConfig{APIKey: "k"}).baseURL)
}
