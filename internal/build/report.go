package build

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// Outcome is the typed enumeration of final build result states.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeWarning Outcome = "warning"
	OutcomeFailed  Outcome = "failed"
)

// SkipReason records why a single page was left out of the published site.
type SkipReason struct {
	Page     string
	Category apperrors.ErrorCategory
	Message  string
}

// Report captures metrics about one site generation run.
type Report struct {
	RunID     string
	Start     time.Time
	End       time.Time
	Pages     int // source pages discovered
	Rendered  int // pages that finished the pipeline
	Published int // rendered pages marked public
	Drafts    int // rendered pages held back as non-public
	Skipped   []SkipReason
	Fatal     error // set when the run aborted before completing
}

func NewReport() *Report {
	return &Report{RunID: uuid.NewString(), Start: time.Now()}
}

func (r *Report) Finish() { r.End = time.Now() }

// AddSkip records a per-page failure. The category is lifted off the
// error so consumers can group skips without string matching.
func (r *Report) AddSkip(page string, err error) {
	r.Skipped = append(r.Skipped, SkipReason{
		Page:     page,
		Category: apperrors.GetCategory(err),
		Message:  err.Error(),
	})
}

// Outcome derives the overall run result: fatal errors fail the run,
// skipped pages degrade it to a warning, otherwise success.
func (r *Report) Outcome() Outcome {
	if r.Fatal != nil {
		return OutcomeFailed
	}
	if len(r.Skipped) > 0 {
		return OutcomeWarning
	}
	return OutcomeSuccess
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("pages=%d rendered=%d published=%d drafts=%d skipped=%d duration=%s outcome=%s",
		r.Pages, r.Rendered, r.Published, r.Drafts, len(r.Skipped), dur.Truncate(time.Millisecond), r.Outcome())
}
