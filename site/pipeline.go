package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ZaguanLabs/sitelai"
	"github.com/ZaguanLabs/sitelai/frontmatter"
	"github.com/ZaguanLabs/sitelai/sink"
)

// ContentType is the processor content type used for page bodies.
const ContentType = "html"

// TranslatorFactory returns the translator for a target language.
type TranslatorFactory func(lang string) (*sitelai.Translator, error)

// Pipeline runs the translation of a site.
type Pipeline struct {
	cfg          *Config
	src          fs.FS
	out          sink.Writer
	translators  TranslatorFactory
	allowPartial bool
	concurrency  int
	langs        []string
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithAllowPartial writes pages even when some nodes kept their source
// text. By default such pages are skipped.
func WithAllowPartial(allow bool) Option {
	return func(p *Pipeline) {
		p.allowPartial = allow
	}
}

// WithConcurrency overrides the configured number of parallel page jobs.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLangs restricts the run to a subset of the configured languages.
func WithLangs(langs ...string) Option {
	return func(p *Pipeline) {
		p.langs = langs
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a pipeline reading pages from src and writing them to out.
func New(cfg *Config, src fs.FS, out sink.Writer, translators TranslatorFactory, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:         cfg,
		src:         src,
		out:         out,
		translators: translators,
		concurrency: cfg.Concurrency,
		langs:       cfg.Langs,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.concurrency <= 0 {
		p.concurrency = DefaultConcurrency
	}
	return p
}

type job struct {
	index int
	lang  string
	page  Page
	tr    *sitelai.Translator
}

// Run translates every page into every language and reports the outcome
// of each job. The returned error is non-nil only when the run could not
// start; per-page errors are in the report.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	if p.out == nil || p.translators == nil {
		return nil, errors.New("site: pipeline needs a writer and a translator factory")
	}
	for _, lang := range p.langs {
		if !contains(p.cfg.Langs, lang) {
			return nil, fmt.Errorf("site: language %q is not configured", lang)
		}
	}

	report := &Report{
		RunID:   uuid.NewString(),
		Started: p.now(),
		Results: make([]Result, len(p.langs)*len(p.cfg.Pages)),
	}
	logger := p.logger.With(slog.String("run_id", report.RunID))
	logger.InfoContext(ctx, "translation run started",
		slog.Any("langs", p.langs),
		slog.Int("pages", len(p.cfg.Pages)),
		slog.Int("concurrency", p.concurrency),
	)

	var jobs []job
	for _, lang := range p.langs {
		tr, err := p.translators(lang)
		if err == nil && tr == nil {
			err = errors.New("no translator")
		}
		for _, page := range p.cfg.Pages {
			i := len(jobs)
			if err != nil {
				report.Results[i] = Result{
					Lang:   lang,
					Src:    page.Src,
					Output: page.Output(lang),
					Status: StatusFailed,
					Err:    fmt.Errorf("creating translator for %s: %w", lang, err),
				}
			}
			jobs = append(jobs, job{index: i, lang: lang, page: page, tr: tr})
		}
		if err != nil {
			logger.ErrorContext(ctx, "translator unavailable",
				slog.String("lang", lang),
				slog.Any("error", err),
			)
		}
	}

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for _, j := range jobs {
		if j.tr == nil {
			continue
		}
		g.Go(func() error {
			res := p.runJob(ctx, j)
			report.Results[j.index] = res
			p.logResult(ctx, logger, res)
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = p.now().Sub(report.Started)
	counts := report.Counts()
	logger.InfoContext(ctx, "translation run finished",
		slog.Int("written", counts[StatusWritten]),
		slog.Int("partial", counts[StatusPartial]),
		slog.Int("skipped", counts[StatusSkipped]),
		slog.Int("failed", counts[StatusFailed]),
		slog.Duration("elapsed", report.Duration),
	)
	return report, nil
}

func (p *Pipeline) runJob(ctx context.Context, j job) Result {
	start := p.now()
	res := Result{
		Lang:   j.lang,
		Src:    j.page.Src,
		Output: j.page.Output(j.lang),
	}
	res.Status, res.Err = p.execute(ctx, j, &res)
	res.Duration = p.now().Sub(start)
	return res
}

func (p *Pipeline) execute(ctx context.Context, j job, res *Result) (Status, error) {
	content, err := p.translatePage(ctx, j, res)
	if err != nil {
		return StatusFailed, err
	}

	if len(res.Failures) > 0 && !p.allowPartial {
		return StatusSkipped, &sitelai.PartialError{Document: res.Output, Failures: res.Failures}
	}

	if err := p.out.Write(ctx, res.Output, []byte(content)); err != nil {
		return StatusFailed, err
	}

	if len(res.Failures) > 0 {
		return StatusPartial, nil
	}
	return StatusWritten, nil
}

// translatePage produces the output document and records the node
// failures in res.
func (p *Pipeline) translatePage(ctx context.Context, j job, res *Result) (string, error) {
	raw, err := fs.ReadFile(p.src, j.page.Src)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", j.page.Src, err)
	}

	source, err := frontmatter.Split(string(raw))
	if err != nil {
		return "", fmt.Errorf("%s: %w", j.page.Src, err)
	}

	translated, err := j.tr.ProcessDocument(ctx, res.Output, source.Body, ContentType)
	if err != nil {
		return "", err
	}
	res.Spans = translated.Spans
	res.Dispatched = translated.Dispatched
	res.Cached = translated.Cached
	res.Failures = append(res.Failures, translated.Failures...)

	pl := j.page.For(j.lang)
	doc := frontmatter.New(translated.Content)

	title := pl.Title
	if title == "" {
		if v, ok := source.Get("title"); ok {
			title = p.translateField(ctx, j.tr, "title", v, res)
		}
	}
	doc.Set("title", title)
	doc.Set("layout", "default."+j.lang)
	doc.Set("permalink", pl.Permalink)
	doc.Set("lang", j.lang)
	doc.Set("lang-ref", j.page.LangRef)
	doc.Set(p.cfg.Source, j.page.Stem())

	for _, name := range p.cfg.Fields {
		v, ok := source.Get(name)
		if !ok {
			continue
		}
		doc.Set(name, p.translateField(ctx, j.tr, name, v, res))
	}

	return doc.Render()
}

// translateField translates a front matter value. On failure the source
// value is kept and the failure recorded.
func (p *Pipeline) translateField(ctx context.Context, tr *sitelai.Translator, name, value string, res *Result) string {
	out, err := tr.TranslateText(ctx, value)
	if err != nil {
		res.Failures = append(res.Failures, &sitelai.Failure{
			Node:   "front matter[" + name + "]",
			Source: value,
			Err:    err,
		})
		return value
	}
	return out
}

func (p *Pipeline) logResult(ctx context.Context, logger *slog.Logger, res Result) {
	attrs := []any{
		slog.String("lang", res.Lang),
		slog.String("src", res.Src),
		slog.String("output", res.Output),
		slog.String("status", string(res.Status)),
		slog.Int("spans", res.Spans),
		slog.Int("failures", len(res.Failures)),
		slog.Duration("elapsed", res.Duration),
	}

	switch res.Status {
	case StatusFailed:
		logger.ErrorContext(ctx, "page failed", append(attrs, slog.Any("error", res.Err))...)
	case StatusSkipped:
		logger.WarnContext(ctx, "page skipped, partially translated", attrs...)
	default:
		logger.InfoContext(ctx, "page written", attrs...)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
