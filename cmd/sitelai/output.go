package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ZaguanLabs/sitelai"
	"github.com/ZaguanLabs/sitelai/site"
)

// FailureJSON is a node that kept its source text.
type FailureJSON struct {
	Node   string `json:"node"`
	Source string `json:"source"`
	Error  string `json:"error"`
}

// PageJSON is the JSON output of the page command.
type PageJSON struct {
	Document   string        `json:"document"`
	Lang       string        `json:"lang"`
	Content    string        `json:"content"`
	Spans      int           `json:"spans"`
	Dispatched int           `json:"dispatched"`
	Cached     int           `json:"cached"`
	Failures   []FailureJSON `json:"failures,omitempty"`
	ElapsedMs  int64         `json:"elapsed_ms"`
}

// ResultJSON is one page job of the build command.
type ResultJSON struct {
	Lang       string        `json:"lang"`
	Src        string        `json:"src"`
	Output     string        `json:"output"`
	Status     site.Status   `json:"status"`
	Spans      int           `json:"spans"`
	Dispatched int           `json:"dispatched"`
	Cached     int           `json:"cached"`
	Failures   []FailureJSON `json:"failures,omitempty"`
	Error      string        `json:"error,omitempty"`
	ElapsedMs  int64         `json:"elapsed_ms"`
}

// ReportJSON is the JSON output of the build command.
type ReportJSON struct {
	RunID     string              `json:"run_id"`
	Counts    map[site.Status]int `json:"counts"`
	Results   []ResultJSON        `json:"results"`
	ElapsedMs int64               `json:"elapsed_ms"`
}

// DryRunJSON lists the texts that would be sent for translation.
type DryRunJSON struct {
	Input     string   `json:"input"`
	Langs     []string `json:"langs"`
	SpanCount int      `json:"span_count"`
	Spans     []string `json:"spans"`
}

func newFailuresJSON(failures []*sitelai.Failure) []FailureJSON {
	out := make([]FailureJSON, 0, len(failures))
	for _, f := range failures {
		out = append(out, FailureJSON{Node: f.Node, Source: f.Source, Error: f.Err.Error()})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func newPageJSON(result *sitelai.ProcessedContent, lang, content string, elapsed time.Duration) PageJSON {
	return PageJSON{
		Document:   result.Document,
		Lang:       lang,
		Content:    content,
		Spans:      result.Spans,
		Dispatched: result.Dispatched,
		Cached:     result.Cached,
		Failures:   newFailuresJSON(result.Failures),
		ElapsedMs:  elapsed.Milliseconds(),
	}
}

func newReportJSON(report *site.Report) ReportJSON {
	out := ReportJSON{
		RunID:     report.RunID,
		Counts:    report.Counts(),
		Results:   make([]ResultJSON, 0, len(report.Results)),
		ElapsedMs: report.Duration.Milliseconds(),
	}
	for _, res := range report.Results {
		r := ResultJSON{
			Lang:       res.Lang,
			Src:        res.Src,
			Output:     res.Output,
			Status:     res.Status,
			Spans:      res.Spans,
			Dispatched: res.Dispatched,
			Cached:     res.Cached,
			Failures:   newFailuresJSON(res.Failures),
			ElapsedMs:  res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			r.Error = res.Err.Error()
		}
		out.Results = append(out.Results, r)
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// printDryRun shows the texts that would have been sent for translation.
func (a *app) printDryRun(input string, langs []string, texts []string) error {
	if a.jsonOut {
		return writeJSON(a.stdout, DryRunJSON{
			Input:     input,
			Langs:     langs,
			SpanCount: len(texts),
			Spans:     texts,
		})
	}

	fmt.Fprintf(a.stdout, "Dry run: %s -> %v\n", input, langs)
	fmt.Fprintf(a.stdout, "Found %d translatable spans:\n\n", len(texts))
	for i, text := range texts {
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Fprintf(a.stdout, "%3d. %q\n", i+1, text)
	}
	return nil
}
