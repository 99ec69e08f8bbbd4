package sitelai

import (
	"context"
	"log/slog"
	"time"
)

// Translator is the main translation engine. One Translator serves one
// target language; create one per language and share the provider and cache.
type Translator struct {
	targetLang       string
	sourceLang       string
	provider         Provider
	cache            TranslationCache
	excludedTerms    []string
	context          string
	glossary         map[string]string
	style            TranslationStyle
	defaultTranslate bool
	processors       map[string]ContentProcessor
	logger           *slog.Logger
}

// Provider is the interface for translation backends. Implementations
// return the translated text for a single request.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Text          string
	SourceLang    string
	TargetLang    string
	Format        TextFormat
	ExcludedTerms []string
	Context       string
	Glossary      map[string]string
	Style         TranslationStyle
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// ContentProcessor is the interface for content processing.
type ContentProcessor interface {
	Process(ctx context.Context, content string, job Job) (*ProcessedContent, error)
	ContentType() string
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithSourceLang sets the source language.
func WithSourceLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.sourceLang = lang
	}
}

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithExcludedTerms sets terms that should not be translated.
func WithExcludedTerms(terms []string) TranslatorOption {
	return func(t *Translator) {
		t.excludedTerms = terms
	}
}

// WithContext sets the global translation context.
func WithContext(ctx string) TranslatorOption {
	return func(t *Translator) {
		t.context = ctx
	}
}

// WithGlossary sets preferred translations for specific phrases.
func WithGlossary(glossary map[string]string) TranslatorOption {
	return func(t *Translator) {
		t.glossary = glossary
	}
}

// WithStyle sets the translation style/register.
func WithStyle(style TranslationStyle) TranslatorOption {
	return func(t *Translator) {
		t.style = style
	}
}

// WithDefaultTranslate sets the translate flag of the document root.
// It defaults to false: pages opt in with translate="yes".
func WithDefaultTranslate(translate bool) TranslatorOption {
	return func(t *Translator) {
		t.defaultTranslate = translate
	}
}

// WithLogger sets the logger used for failure warnings.
func WithLogger(logger *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithProcessor registers a content processor.
func WithProcessor(processor ContentProcessor) TranslatorOption {
	return func(t *Translator) {
		t.processors[processor.ContentType()] = processor
	}
}

// NewTranslator creates a new Translator with the given target language and provider.
func NewTranslator(targetLang string, provider Provider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		targetLang: targetLang,
		sourceLang: "en",
		provider:   provider,
		style:      StyleNeutral,
		processors: make(map[string]ContentProcessor),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Process translates content of the specified type.
func (t *Translator) Process(ctx context.Context, content string, contentType string) (*ProcessedContent, error) {
	return t.ProcessDocument(ctx, "", content, contentType)
}

// ProcessHTML is a convenience method for processing HTML content.
func (t *Translator) ProcessHTML(ctx context.Context, html string) (*ProcessedContent, error) {
	return t.ProcessDocument(ctx, "", html, "html")
}

// ProcessDocument translates content and names it in logs and failures.
// Node-level failures do not produce an error: they are reported through
// ProcessedContent.Failures once every pending translation has settled.
func (t *Translator) ProcessDocument(ctx context.Context, name, content, contentType string) (*ProcessedContent, error) {
	if name == "" {
		name = contentType
	}

	// Skip if source == target
	if t.IsSourceLang() {
		return &ProcessedContent{Content: content, Document: name}, nil
	}

	processor, ok := t.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	dispatcher := t.NewDispatcher()
	start := time.Now()

	result, err := processor.Process(ctx, content, Job{
		Document:   name,
		SourceLang: t.sourceLang,
		TargetLang: t.targetLang,
		Translate:  t.defaultTranslate,
		Dispatcher: dispatcher,
	})
	if err != nil {
		return nil, err
	}

	stats := dispatcher.Stats()
	result.Document = name
	result.Dispatched = stats.Dispatched
	result.Cached = stats.Cached

	for _, f := range result.Failures {
		t.logger.WarnContext(ctx, "translation failed, keeping original content",
			slog.String("document", name),
			slog.String("lang", t.targetLang),
			slog.String("node", f.Node),
			slog.Any("error", f.Err),
		)
	}
	t.logger.DebugContext(ctx, "document translated",
		slog.String("document", name),
		slog.String("lang", t.targetLang),
		slog.Int("spans", result.Spans),
		slog.Int("dispatched", result.Dispatched),
		slog.Int("cached", result.Cached),
		slog.Int("failures", len(result.Failures)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return result, nil
}

// TranslateText translates a single plain-text value, such as a front
// matter field, with the same whitespace and casing rules as attribute
// values. The result is not HTML-escaped.
func (t *Translator) TranslateText(ctx context.Context, text string) (string, error) {
	if t.IsSourceLang() {
		return text, nil
	}
	return t.NewDispatcher().DispatchPlain(ctx, text)
}

// NewDispatcher returns a dispatcher bound to this translator's language
// pair, provider, cache and prompt settings.
func (t *Translator) NewDispatcher() *ServiceDispatcher {
	return NewDispatcher(t.provider, t.cache, TranslateRequest{
		SourceLang:    t.sourceLang,
		TargetLang:    t.targetLang,
		ExcludedTerms: t.excludedTerms,
		Context:       t.context,
		Glossary:      t.glossary,
		Style:         t.style,
	})
}

// TargetLang returns the target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// SourceLang returns the source language.
func (t *Translator) SourceLang() string {
	return t.sourceLang
}

// IsSourceLang checks if the target language matches the source language.
// When true, translation can be bypassed.
func (t *Translator) IsSourceLang() bool {
	return SameLanguage(t.targetLang, t.sourceLang)
}

// IsRTL returns true if the target language uses right-to-left text direction.
func (t *Translator) IsRTL() bool {
	return IsRTL(t.targetLang)
}

// Glossary returns the glossary of preferred translations.
func (t *Translator) Glossary() map[string]string {
	return t.glossary
}

// Style returns the translation style.
func (t *Translator) Style() TranslationStyle {
	return t.style
}
