package sitelai

import (
	"errors"
	"fmt"
	"strings"
)

// TranslationStyle controls the tone and formality of translations for
// providers that accept instructions (LLM backends).
type TranslationStyle string

const (
	// StyleFormal uses formal, professional language suitable for official documents.
	StyleFormal TranslationStyle = "formal"
	// StyleNeutral uses a neutral, professional tone suitable for general content.
	StyleNeutral TranslationStyle = "neutral"
	// StyleCasual uses casual, conversational language suitable for blogs/social media.
	StyleCasual TranslationStyle = "casual"
	// StyleMarketing uses persuasive, engaging language for promotional content.
	StyleMarketing TranslationStyle = "marketing"
	// StyleTechnical uses precise, technical language for documentation.
	StyleTechnical TranslationStyle = "technical"
)

// TextFormat tells the provider how to treat the payload.
type TextFormat string

const (
	// FormatText is plain text: attribute values, front matter fields.
	FormatText TextFormat = "text"
	// FormatHTML is a flattened markup span whose tags must survive.
	FormatHTML TextFormat = "html"
)

// Job is the per-document input handed to a ContentProcessor.
type Job struct {
	Document   string     // Name used in logs and failures (path, "stdin", ...)
	SourceLang string     // Source language code (e.g. "en")
	TargetLang string     // Target language code as used in data-*-<lang> attributes
	Translate  bool       // Default translate flag of the document root
	Dispatcher Dispatcher // Translation capability for this document
}

// ProcessedContent is the result of a translation operation.
type ProcessedContent struct {
	Content    string     // Translated content
	Document   string     // Document name from the job
	Dispatched int        // Number of provider calls made
	Cached     int        // Number of cache hits
	Spans      int        // Number of spans and attributes dispatched
	Failures   []*Failure // Node-local failures; the content holds the original text there
}

// Partial reports whether any node fell back to its original content.
func (p *ProcessedContent) Partial() bool {
	return len(p.Failures) > 0
}

// Err returns a *PartialError aggregating all failures, or nil.
func (p *ProcessedContent) Err() error {
	if !p.Partial() {
		return nil
	}
	return &PartialError{Document: p.Document, Failures: p.Failures}
}

// Failure records a span or attribute that could not be translated.
type Failure struct {
	Node   string // Element path, e.g. "div > p" or "img[alt]"
	Source string // Text that was sent
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Node, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// PartialError reports that a document was only partially translated.
type PartialError struct {
	Document string
	Failures []*Failure
}

func (e *PartialError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("%s: %d node(s) not translated: %s", e.Document, len(e.Failures), strings.Join(msgs, "; "))
}

func (e *PartialError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// IsPartial reports whether err is or wraps a *PartialError.
func IsPartial(err error) bool {
	var pe *PartialError
	return errors.As(err, &pe)
}

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
	"yi": true, // Yiddish
}
