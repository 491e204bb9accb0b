// Package review drives AI-powered static review of Salesforce Apex
// source files: it renders a prompt per file, runs it through a
// provider adapter under retry, validates the model's JSON verdict and
// aggregates findings, token usage and cost into a run report.
package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sidhusupreetSFDC/cursor-ai-poc/providers"
)

// Severity levels the verdict schema allows. Blocker is the CI gate.
const (
	SeverityBlocker = "blocker"
	SeverityMajor   = "major"
	SeverityMinor   = "minor"
	SeverityInfo    = "info"
)

// Finding is a single issue the model reported for a file.
type Finding struct {
	Line       int    `json:"line"`
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// verdict is the JSON document the model must answer with.
type verdict struct {
	Summary  string    `json:"summary"`
	Findings []Finding `json:"findings"`
}

// FileReview is the outcome for one reviewed file. A file whose review
// exhausted its retries carries Failed plus the final error text and
// nothing else.
type FileReview struct {
	Path     string          `json:"path"`
	Summary  string          `json:"summary,omitempty"`
	Findings []Finding       `json:"findings,omitempty"`
	Attempts int             `json:"attempts"`
	Usage    providers.Usage `json:"usage"`
	CostUSD  decimal.Decimal `json:"cost_usd"`
	Failed   bool            `json:"failed,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Report aggregates one review run across all requested files.
type Report struct {
	ID           uuid.UUID       `json:"id"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
	Provider     providers.Name  `json:"provider"`
	Model        string          `json:"model"`
	Files        []FileReview    `json:"files"`
	TotalUsage   providers.Usage `json:"total_usage"`
	TotalCostUSD decimal.Decimal `json:"total_cost_usd"`
}

// Duration is the wall-clock time the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// FailedFiles counts files whose review did not produce a verdict.
func (r *Report) FailedFiles() int {
	n := 0
	for _, f := range r.Files {
		if f.Failed {
			n++
		}
	}
	return n
}

// TotalFindings counts findings across all reviewed files.
func (r *Report) TotalFindings() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Findings)
	}
	return n
}

// HasSeverity reports whether any finding carries the given severity.
func (r *Report) HasSeverity(severity string) bool {
	for _, f := range r.Files {
		for _, fd := range f.Findings {
			if fd.Severity == severity {
				return true
			}
		}
	}
	return false
}
