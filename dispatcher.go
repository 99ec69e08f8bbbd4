package sitelai

import (
	"context"
	"strings"
	"sync/atomic"
	"unicode"
	"unicode/utf8"
)

// Dispatcher turns source strings into translated strings for one language pair.
// Implementations must be safe for concurrent use.
type Dispatcher interface {
	// Dispatch translates plain text. The result is escaped for embedding
	// in HTML text or a double-quoted attribute value.
	Dispatch(ctx context.Context, text string) (string, error)

	// DispatchHTML translates a markup span. The result is markup.
	DispatchHTML(ctx context.Context, markup string) (string, error)
}

// DispatchStats counts what a dispatcher did.
type DispatchStats struct {
	Dispatched int // Provider calls
	Cached     int // Cache hits
	Failed     int // Provider failures
}

// ServiceDispatcher wraps a Provider with whitespace preservation,
// first-letter casing, result escaping and an optional cache.
// It never retries; wrap the provider in a RetryableProvider for that.
type ServiceDispatcher struct {
	provider Provider
	cache    TranslationCache
	template TranslateRequest

	dispatched atomic.Int64
	cached     atomic.Int64
	failed     atomic.Int64
}

// NewDispatcher creates a dispatcher. template supplies the language pair
// and prompt settings copied into every request; cache may be nil.
func NewDispatcher(provider Provider, cache TranslationCache, template TranslateRequest) *ServiceDispatcher {
	return &ServiceDispatcher{
		provider: provider,
		cache:    cache,
		template: template,
	}
}

// resultEscaper escapes translator output for HTML. Only <, > and " are
// escaped; '&' passes through as returned by the provider.
var resultEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;", `"`, "&quot;")

// Dispatch implements Dispatcher.
func (d *ServiceDispatcher) Dispatch(ctx context.Context, text string) (string, error) {
	out, err := d.dispatch(ctx, text, FormatText)
	if err != nil {
		return "", err
	}
	return resultEscaper.Replace(out), nil
}

// DispatchPlain translates plain text like Dispatch but returns the
// result unescaped, for values that are not embedded in HTML.
func (d *ServiceDispatcher) DispatchPlain(ctx context.Context, text string) (string, error) {
	return d.dispatch(ctx, text, FormatText)
}

// DispatchHTML implements Dispatcher.
func (d *ServiceDispatcher) DispatchHTML(ctx context.Context, markup string) (string, error) {
	return d.dispatch(ctx, markup, FormatHTML)
}

func (d *ServiceDispatcher) dispatch(ctx context.Context, text string, format TextFormat) (string, error) {
	left := strings.TrimLeftFunc(text, unicode.IsSpace)
	if left == "" {
		return text, nil
	}
	leading := text[:len(text)-len(left)]
	core := strings.TrimRightFunc(left, unicode.IsSpace)
	trailing := left[len(core):]

	translated, err := d.translate(ctx, core, format)
	if err != nil {
		d.failed.Add(1)
		return "", err
	}

	if c := core[0]; 'A' <= c && c <= 'Z' {
		translated = upperFirst(translated)
	}

	return leading + translated + trailing, nil
}

func (d *ServiceDispatcher) translate(ctx context.Context, text string, format TextFormat) (string, error) {
	req := d.template
	key := CacheKeyExtended(HashText(text), req.SourceLang, req.TargetLang, format)

	if d.cache != nil {
		if cached, ok := d.cache.Get(key); ok {
			d.cached.Add(1)
			return cached, nil
		}
	}

	if d.provider == nil {
		return "", &ProviderError{Message: "no provider configured"}
	}

	req.Text = text
	req.Format = format

	d.dispatched.Add(1)
	translated, err := d.provider.Translate(ctx, req)
	if err != nil {
		return "", err
	}
	if translated == "" {
		return "", &ProviderError{Message: "translation service returned no text", Cause: ErrEmptyTranslation}
	}

	if d.cache != nil {
		_ = d.cache.Set(key, translated) // Ignore cache set errors
	}

	return translated, nil
}

// Stats returns the counters accumulated so far.
func (d *ServiceDispatcher) Stats() DispatchStats {
	return DispatchStats{
		Dispatched: int(d.dispatched.Load()),
		Cached:     int(d.cached.Load()),
		Failed:     int(d.failed.Load()),
	}
}

// upperFirst upper-cases the first rune only.
func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Verify ServiceDispatcher implements Dispatcher
var _ Dispatcher = (*ServiceDispatcher)(nil)
