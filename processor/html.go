package processor

import (
	"context"

	"github.com/ZaguanLabs/sitelai"
)

// HTMLProcessor translates HTML pages and fragments in place.
type HTMLProcessor struct {
	rules   []AttrRule
	docLang bool
}

// HTMLOption configures an HTMLProcessor.
type HTMLOption func(*HTMLProcessor)

// WithAttrRules replaces the attribute allow-list.
func WithAttrRules(rules ...AttrRule) HTMLOption {
	return func(p *HTMLProcessor) {
		p.rules = rules
	}
}

// WithDocumentLang controls whether the <html> element gets lang and dir
// attributes for the target language. It is off by default.
func WithDocumentLang(enabled bool) HTMLOption {
	return func(p *HTMLProcessor) {
		p.docLang = enabled
	}
}

// NewHTMLProcessor creates an HTML processor with the default attribute
// allow-list.
func NewHTMLProcessor(opts ...HTMLOption) *HTMLProcessor {
	p := &HTMLProcessor{
		rules: DefaultAttrRules,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WalkResult summarizes the translations scheduled for a tree.
type WalkResult struct {
	Spans    int        // Spans and attribute values dispatched
	Failures []*Failure // In scheduling order
}

// Walk schedules every translation in root through the job's dispatcher
// and returns once all of them have completed. Failures are confined to
// the node that failed; root can then be rendered with Render.
func (p *HTMLProcessor) Walk(ctx context.Context, root *Node, job sitelai.Job) *WalkResult {
	w := &walker{
		ctx:     ctx,
		job:     job,
		rules:   p.rules,
		docLang: p.docLang,
		tr:      &tracker{},
	}
	w.walk(root)

	spans, failures := w.tr.wait()
	return &WalkResult{Spans: spans, Failures: failures}
}

// Process parses content, translates it and serializes the result.
func (p *HTMLProcessor) Process(ctx context.Context, content string, job sitelai.Job) (*sitelai.ProcessedContent, error) {
	if job.Dispatcher == nil {
		return nil, &sitelai.ProcessorError{
			Message:     "no dispatcher for job",
			ContentType: p.ContentType(),
		}
	}

	root := Parse(content, job.Translate, job.TargetLang)
	res := p.Walk(ctx, root, job)

	if err := ctx.Err(); err != nil {
		return nil, &sitelai.ProcessorError{
			Message:     "translation cancelled",
			Cause:       err,
			ContentType: p.ContentType(),
		}
	}

	return &sitelai.ProcessedContent{
		Content:  Render(root),
		Document: job.Document,
		Spans:    res.Spans,
		Failures: res.Failures,
	}, nil
}

// ContentType returns "html".
func (p *HTMLProcessor) ContentType() string {
	return "html"
}

// Verify HTMLProcessor implements ContentProcessor
var _ ContentProcessor = (*HTMLProcessor)(nil)
