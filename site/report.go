package site

import (
	"errors"
	"time"

	"github.com/ZaguanLabs/sitelai"
)

// Status is the outcome of one page job.
type Status string

const (
	// StatusWritten means the page was fully translated and written.
	StatusWritten Status = "written"
	// StatusPartial means the page was written with some nodes left in the
	// source language.
	StatusPartial Status = "partial"
	// StatusSkipped means the page was partially translated and not written.
	StatusSkipped Status = "skipped"
	// StatusFailed means the page could not be read, processed or written.
	StatusFailed Status = "failed"
)

// Result describes one page job.
type Result struct {
	Lang       string
	Src        string
	Output     string
	Status     Status
	Spans      int
	Dispatched int
	Cached     int
	Failures   []*sitelai.Failure
	Err        error
	Duration   time.Duration
}

// Report is the outcome of a pipeline run. Results are ordered by
// language, then by page as listed in the configuration.
type Report struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Results  []Result
}

// Counts returns the number of results per status.
func (r *Report) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}

// Err joins the errors of skipped and failed jobs.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// OK reports whether every page was written.
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if res.Status != StatusWritten && res.Status != StatusPartial {
			return false
		}
	}
	return true
}
