package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/sitelai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCall struct {
	format sitelai.TextFormat
	src    string
}

// fakeDispatcher answers from a dictionary and falls back to "ES(src)".
type fakeDispatcher struct {
	mu    sync.Mutex
	dict  map[string]string
	fail  map[string]error
	calls []fakeCall
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{
		dict: map[string]string{},
		fail: map[string]error{},
	}
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, text string) (string, error) {
	return d.do(sitelai.FormatText, text)
}

func (d *fakeDispatcher) DispatchHTML(ctx context.Context, markup string) (string, error) {
	return d.do(sitelai.FormatHTML, markup)
}

func (d *fakeDispatcher) do(format sitelai.TextFormat, src string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls = append(d.calls, fakeCall{format: format, src: src})
	if err, ok := d.fail[src]; ok {
		return "", err
	}
	if out, ok := d.dict[src]; ok {
		return out, nil
	}
	return "ES(" + src + ")", nil
}

func (d *fakeDispatcher) sources() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	for i, c := range d.calls {
		out[i] = c.src
	}
	return out
}

func process(t *testing.T, p *HTMLProcessor, d *fakeDispatcher, content string, translate bool) *sitelai.ProcessedContent {
	t.Helper()
	res, err := p.Process(context.Background(), content, sitelai.Job{
		Document:   "test.html",
		SourceLang: "en",
		TargetLang: "es",
		Translate:  translate,
		Dispatcher: d,
	})
	require.NoError(t, err)
	return res
}

func TestProcess_UntranslatedDocumentIsUnchanged(t *testing.T) {
	inputs := []string{
		"<!DOCTYPE html>\n<html><head><title>Site &amp; more</title>" +
			"<style>p > a { color: red; }</style></head><body>\n<!-- nav -->\n" +
			`<p class="lead" id="x">Hello <b>World</b></p><br><img src="a.png" alt="A dog"><input disabled>` +
			"</body></html>",
		`<script>if (a < b && c) { x = "</p>"; }</script>`,
		`<div/><p>a<br/>b</p>`,
		`<select><option label="One" value="1">One</option></select>`,
		`<p>5 &lt; 6 &amp;&amp; 7 &gt; 3</p>`,
		`<textarea placeholder="Type here">a &lt;b&gt;</textarea>`,
		"",
	}

	for _, in := range inputs {
		d := newFakeDispatcher()
		res := process(t, NewHTMLProcessor(), d, in, false)

		assert.Equal(t, in, res.Content)
		assert.Empty(t, d.sources(), "input %q", in)
	}
}

func TestProcess_TranslateNoContentNeverDispatched(t *testing.T) {
	d := newFakeDispatcher()
	res := process(t, NewHTMLProcessor(), d,
		`<div translate="yes"><p>Hello</p><p translate="no">Secret text <b>inside</b></p></div>`, false)

	assert.Equal(t, []string{"Hello"}, d.sources())
	for _, src := range d.sources() {
		assert.NotContains(t, src, "Secret")
	}
	assert.Contains(t, res.Content, `<p translate="no">Secret text <b>inside</b></p>`)
}

func TestProcess_NestedElementsUseOneCall(t *testing.T) {
	d := newFakeDispatcher()
	d.dict[`Intro <p>Body <span data-sitelai-keep="0"></span> end</p>`] =
		`Introducción <p>Cuerpo <span data-sitelai-keep="0"></span> fin</p>`

	res := process(t, NewHTMLProcessor(), d,
		`<div translate="yes">Intro <p>Body <span translate="no">Brand</span> end</p></div>`, false)

	require.Len(t, d.sources(), 1)
	assert.NotContains(t, d.sources()[0], "Brand")
	assert.Equal(t, sitelai.FormatHTML, d.calls[0].format)
	assert.Equal(t,
		`<div translate="yes">Introducción <p>Cuerpo <span translate="no">Brand</span> fin</p></div>`,
		res.Content)
	assert.False(t, res.Partial())
	assert.Equal(t, 1, res.Spans)
}

func TestProcess_OverrideBeatsOptOut(t *testing.T) {
	d := newFakeDispatcher()
	res := process(t, NewHTMLProcessor(), d,
		`<p translate="no" data-translate-override-es="<b>Hola</b>">Hello</p>`, false)

	assert.Equal(t, `<p translate="no"><b>Hola</b></p>`, res.Content)
	assert.Empty(t, d.sources())
}

func TestProcess_OverrideInsideSpan(t *testing.T) {
	d := newFakeDispatcher()
	d.dict[`Hi <span data-sitelai-keep="0"></span>`] = `Hola <span data-sitelai-keep="0"></span>`

	res := process(t, NewHTMLProcessor(), d,
		`<p translate="yes">Hi <span data-translate-override-es="¡Hola!">Hello</span></p>`, false)

	assert.Equal(t, `<p translate="yes">Hola <span>¡Hola!</span></p>`, res.Content)
	assert.Len(t, d.sources(), 1)
}

func TestProcess_AttributeTranslation(t *testing.T) {
	d := newFakeDispatcher()
	d.dict["A dog"] = "Un perro"

	res := process(t, NewHTMLProcessor(), d, `<img alt="A dog" translate="yes">`, false)

	assert.Equal(t, `<img alt="Un perro" translate="yes">`, res.Content)
	require.Len(t, d.calls, 1)
	assert.Equal(t, fakeCall{format: sitelai.FormatText, src: "A dog"}, d.calls[0])
}

func TestProcess_AttributeUnderOptOutUnchanged(t *testing.T) {
	d := newFakeDispatcher()
	res := process(t, NewHTMLProcessor(), d, `<div translate="no"><img alt="A dog"></div>`, true)

	assert.Equal(t, `<div translate="no"><img alt="A dog"></div>`, res.Content)
	assert.Empty(t, d.sources())
}

func TestProcess_TranslatedAttributeEmittedAsReturned(t *testing.T) {
	d := newFakeDispatcher()
	d.dict["A dog"] = "Un &quot;perro&quot; & gato"

	res := process(t, NewHTMLProcessor(), d, `<img alt="A dog" translate="yes">`, false)

	assert.Equal(t, `<img alt="Un &quot;perro&quot; & gato" translate="yes">`, res.Content)
}

func TestProcess_LanguageAttributeOverride(t *testing.T) {
	d := newFakeDispatcher()
	res := process(t, NewHTMLProcessor(), d,
		`<img alt="A dog" data-alt-es="Un &quot;perrito&quot;" data-alt-fr="Un chien" data-note-es="x" translate="yes">`, false)

	assert.Equal(t,
		`<img alt="Un &quot;perrito&quot;" data-alt-fr="Un chien" translate="yes">`,
		res.Content)
	assert.Empty(t, d.sources(), "override wins over translation")
}

func TestProcess_RegionTaggedTargetLanguage(t *testing.T) {
	d := newFakeDispatcher()
	res, err := NewHTMLProcessor().Process(context.Background(),
		`<p translate="no" data-translate-override-pt-BR="Olá">Hello</p><img alt="x" data-alt-pt-BR="Cão" translate="yes">`,
		sitelai.Job{Document: "test.html", SourceLang: "en", TargetLang: "pt-BR", Dispatcher: d})
	require.NoError(t, err)

	assert.Equal(t, `<p translate="no">Olá</p><img alt="Cão" translate="yes">`, res.Content)
	assert.Empty(t, d.sources())
}

func TestProcess_VoidElementsAndInputRules(t *testing.T) {
	d := newFakeDispatcher()
	res := process(t, NewHTMLProcessor(), d, `<p>Line<br>next</p><img src="x.png">`, false)
	assert.Equal(t, `<p>Line<br>next</p><img src="x.png">`, res.Content)
	assert.NotContains(t, res.Content, "</br>")
	assert.NotContains(t, res.Content, "</img>")

	d = newFakeDispatcher()
	process(t, NewHTMLProcessor(), d, `<input type="button" value="Go" translate="yes">`, false)
	assert.Equal(t, []string{"Go"}, d.sources())

	d = newFakeDispatcher()
	process(t, NewHTMLProcessor(), d, `<input type="RESET" value="Clear" translate="yes">`, false)
	assert.Equal(t, []string{"Clear"}, d.sources(), "conditions compare case-insensitively")

	d = newFakeDispatcher()
	res = process(t, NewHTMLProcessor(), d, `<input type="text" value="Go" translate="yes">`, false)
	assert.Empty(t, d.sources())
	assert.Equal(t, `<input type="text" value="Go" translate="yes">`, res.Content)
}

func TestProcess_BlankAttributeNotDispatched(t *testing.T) {
	d := newFakeDispatcher()
	res := process(t, NewHTMLProcessor(), d, `<img alt="" src="x.png"><img alt="  ">`, true)

	assert.Empty(t, d.sources())
	assert.Equal(t, `<img alt src="x.png"><img alt="  ">`, res.Content)
}

func TestProcess_AttributesInsideSpanAreTranslated(t *testing.T) {
	d := newFakeDispatcher()
	d.dict["A dog"] = "Un perro"

	res := process(t, NewHTMLProcessor(), d, `<p translate="yes">See <img alt="A dog"> here</p>`, false)

	assert.ElementsMatch(t, []string{`See <img alt="A dog"> here`, "A dog"}, d.sources())
	assert.Equal(t, `<p translate="yes">ES(See <img alt="Un perro"> here)</p>`, res.Content)
}

func TestProcess_ReEnabledInsideOptOut(t *testing.T) {
	d := newFakeDispatcher()
	d.dict[`Text <span data-sitelai-keep="0"></span>`] = `Texto <span data-sitelai-keep="0"></span>`
	d.dict["word"] = "palabra"

	res := process(t, NewHTMLProcessor(), d,
		`<p translate="yes">Text <span translate="no">code <em translate="yes">word</em></span></p>`, false)

	assert.ElementsMatch(t, []string{`Text <span data-sitelai-keep="0"></span>`, "word"}, d.sources())
	assert.Equal(t,
		`<p translate="yes">Texto <span translate="no">code <em translate="yes">palabra</em></span></p>`,
		res.Content)
}

func TestProcess_RawTextIsKeptOutOfSpans(t *testing.T) {
	d := newFakeDispatcher()
	d.dict[`Run <span data-sitelai-keep="0"></span> now`] = `Ejecuta <span data-sitelai-keep="0"></span> ya`

	res := process(t, NewHTMLProcessor(), d,
		`<p translate="yes">Run <script>go("<b>")</script> now</p><style>b{}</style>`, false)

	assert.Len(t, d.sources(), 1)
	assert.Equal(t, `<p translate="yes">Ejecuta <script>go("<b>")</script> ya</p><style>b{}</style>`, res.Content)
}

func TestProcess_RootDefaultTranslate(t *testing.T) {
	d := newFakeDispatcher()
	d.dict[`Hello <b>World</b>`] = `Hola <b>Mundo</b>`

	res := process(t, NewHTMLProcessor(), d, `Hello <b>World</b>`, true)

	assert.Equal(t, `Hola <b>Mundo</b>`, res.Content)
	assert.Equal(t, []string{`Hello <b>World</b>`}, d.sources())
}

func TestProcess_FailureIsolation(t *testing.T) {
	boom := errors.New("service unavailable")
	d := newFakeDispatcher()
	d.fail["Broken"] = boom
	d.dict["Fine"] = "Bien"

	res := process(t, NewHTMLProcessor(), d,
		`<div><p translate="yes">Broken</p><p translate="yes">Fine</p></div>`, false)

	assert.Equal(t, `<div><p translate="yes">Broken</p><p translate="yes">Bien</p></div>`, res.Content)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "div > p", res.Failures[0].Node)
	assert.Equal(t, "Broken", res.Failures[0].Source)
	assert.ErrorIs(t, res.Failures[0], boom)

	assert.True(t, res.Partial())
	var pe *sitelai.PartialError
	require.ErrorAs(t, res.Err(), &pe)
	assert.Equal(t, "test.html", pe.Document)
}

func TestProcess_FailedSpanStillRewritesAttributes(t *testing.T) {
	d := newFakeDispatcher()
	d.fail[`Broken <img alt="A dog">`] = errors.New("boom")
	d.dict["A dog"] = "Un perro"

	res := process(t, NewHTMLProcessor(), d, `<p translate="yes">Broken <img alt="A dog"></p>`, false)

	assert.Equal(t, `<p translate="yes">Broken <img alt="Un perro"></p>`, res.Content)
	assert.Len(t, res.Failures, 1)
}

func TestProcess_LostMarkerKeepsOriginal(t *testing.T) {
	d := newFakeDispatcher()
	d.dict[`Body <span data-sitelai-keep="0"></span>`] = "Cuerpo"
	d.dict[`Two <span data-sitelai-keep="0"></span>`] =
		`Dos <span data-sitelai-keep="0"></span><span data-sitelai-keep="0"></span>`

	in := `<p translate="yes">Body <code translate="no">x</code></p><p translate="yes">Two <code translate="no">y</code></p>`
	res := process(t, NewHTMLProcessor(), d, in, false)

	assert.Equal(t, in, res.Content)
	require.Len(t, res.Failures, 2)
	for _, f := range res.Failures {
		assert.ErrorIs(t, f, ErrMarkerLost)
	}
}

func TestProcess_FailuresInDocumentOrder(t *testing.T) {
	d := newFakeDispatcher()
	for i := 0; i < 20; i++ {
		d.fail[fmt.Sprintf("Item %d", i)] = errors.New("boom")
	}

	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, `<li id="i%d">Item %d</li>`, i, i)
	}
	res := process(t, NewHTMLProcessor(), d, "<ul>"+b.String()+"</ul>", true)

	require.Len(t, res.Failures, 20)
	for i, f := range res.Failures {
		assert.Equal(t, fmt.Sprintf("ul > li#i%d", i), f.Node)
	}
}

func TestProcess_ManySpansKeepTheirPositions(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<article translate="yes">`)
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "<p>Paragraph %d</p>", i)
	}
	b.WriteString("</article>")

	d := newFakeDispatcher()
	res := process(t, NewHTMLProcessor(), d, b.String(), false)
	assert.Len(t, d.sources(), 50)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Content))
	require.NoError(t, err)
	doc.Find("article p").Each(func(i int, s *goquery.Selection) {
		assert.Equal(t, fmt.Sprintf("ES(Paragraph %d)", i), s.Text())
	})
	assert.Equal(t, 50, doc.Find("article p").Length())
}

func TestWalk_RenderIsIdempotent(t *testing.T) {
	d := newFakeDispatcher()
	root := Parse(`<div translate="yes"><h1>Title</h1><img alt="A dog"><p>Body <b>bold</b></p></div>`, false, "es")

	res := NewHTMLProcessor().Walk(context.Background(), root, sitelai.Job{TargetLang: "es", Dispatcher: d})
	assert.Empty(t, res.Failures)
	assert.Equal(t, 3, res.Spans)

	first := Render(root)
	second := Render(root)
	assert.Equal(t, first, second)
	assert.Len(t, d.sources(), 3, "rendering does not dispatch")
	assert.Equal(t,
		`<div translate="yes"><h1>ES(Title)</h1><img alt="ES(A dog)"><p>ES(Body <b>bold</b>)</p></div>`,
		first)
}

func TestProcess_DocumentLang(t *testing.T) {
	d := newFakeDispatcher()
	res, err := NewHTMLProcessor(WithDocumentLang(true)).Process(context.Background(),
		`<html lang="en"><body></body></html>`,
		sitelai.Job{TargetLang: "ar", Dispatcher: d})
	require.NoError(t, err)

	assert.Equal(t, `<html lang="ar" dir="rtl"><body></body></html>`, res.Content)
}

func TestProcess_CustomAttrRules(t *testing.T) {
	d := newFakeDispatcher()
	p := NewHTMLProcessor(WithAttrRules(AttrRule{Tag: "a", Attr: "title"}))

	res := process(t, p, d, `<a title="Home" href="/"></a><img alt="A dog">`, true)

	assert.Equal(t, []string{"Home"}, d.sources())
	assert.Equal(t, `<a title="ES(Home)" href="/"></a><img alt="A dog">`, res.Content)
}

func TestProcess_NoDispatcher(t *testing.T) {
	_, err := NewHTMLProcessor().Process(context.Background(), "<p>x</p>", sitelai.Job{TargetLang: "es"})

	var pe *sitelai.ProcessorError
	assert.ErrorAs(t, err, &pe)
}

func TestProcess_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTMLProcessor().Process(ctx, "<p>x</p>", sitelai.Job{TargetLang: "es", Dispatcher: newFakeDispatcher()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTMLProcessor_ContentType(t *testing.T) {
	assert.Equal(t, "html", NewHTMLProcessor().ContentType())
}

func TestAttrRule_Matches(t *testing.T) {
	root := Parse(`<input type="Button" value="Go"><input value="Go">`, false, "es")
	inputs := elements(root)
	rule := AttrRule{Tag: "input", Attr: "value", When: map[string]string{"type": "button"}}

	assert.True(t, rule.Matches(inputs[0], "value"))
	assert.False(t, rule.Matches(inputs[1], "value"), "condition attribute missing")
	assert.False(t, rule.Matches(inputs[0], "type"))
}
