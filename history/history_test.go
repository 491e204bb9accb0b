package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sidhusupreetSFDC/cursor-ai-poc/providers"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/review"
)

func testReport(started time.Time) *review.Report {
	return &review.Report{
		ID:         uuid.New(),
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
		Provider:   providers.Anthropic,
		Model:      "claude-sonnet-4-20250514",
		Files: []review.FileReview{
			{
				Path:    "classes/AccountHandler.cls",
				Summary: "One blocking issue.",
				Findings: []review.Finding{{
					Line:     7,
					Severity: review.SeverityBlocker,
					Category: "security",
					Message:  "Dynamic SOQL from user input",
				}},
				Attempts: 1,
				Usage:    providers.Usage{InputTokens: 900, OutputTokens: 150},
				CostUSD:  decimal.RequireFromString("0.0049"),
			},
			{
				Path:     "classes/Broken.cls",
				Attempts: 3,
				Failed:   true,
				Error:    "openai: transport_error: request failed",
			},
		},
		TotalUsage:   providers.Usage{InputTokens: 900, OutputTokens: 150},
		TotalCostUSD: decimal.RequireFromString("0.0049"),
	}
}

func TestStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	if err := store.Initialize(); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}
	// Schema creation must be idempotent.
	if err := store.Initialize(); err != nil {
		t.Fatalf("second initialize failed: %v", err)
	}

	report := testReport(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))

	t.Run("SaveAndGetRun", func(t *testing.T) {
		if err := store.SaveReport(report); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		got, err := store.GetRun(report.ID.String())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got == nil {
			t.Fatal("expected run, got nil")
		}

		if got.ID != report.ID.String() {
			t.Errorf("id = %s, want %s", got.ID, report.ID)
		}
		if got.Provider != "anthropic" {
			t.Errorf("provider = %s, want anthropic", got.Provider)
		}
		if got.Files != 2 || got.FailedFiles != 1 || got.Findings != 1 {
			t.Errorf("counts = %d/%d/%d, want 2/1/1", got.Files, got.FailedFiles, got.Findings)
		}
		if got.InputTokens != 900 || got.OutputTokens != 150 {
			t.Errorf("tokens = %d/%d, want 900/150", got.InputTokens, got.OutputTokens)
		}
		if !got.CostUSD.Equal(decimal.RequireFromString("0.0049")) {
			t.Errorf("cost = %s, want 0.0049", got.CostUSD)
		}
		if !got.StartedAt.Equal(report.StartedAt) {
			t.Errorf("started_at = %v, want %v", got.StartedAt, report.StartedAt)
		}

		if len(got.FileReviews) != 2 {
			t.Fatalf("file reviews = %d, want 2", len(got.FileReviews))
		}
		if got.FileReviews[0].Path != "classes/AccountHandler.cls" {
			t.Errorf("first path = %s", got.FileReviews[0].Path)
		}
		if len(got.FileReviews[0].Findings) != 1 {
			t.Errorf("findings = %d, want 1", len(got.FileReviews[0].Findings))
		}
		if !got.FileReviews[1].Failed {
			t.Error("second file should be failed")
		}
	})

	t.Run("GetRunMissing", func(t *testing.T) {
		got, err := store.GetRun("no-such-run")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil, got %+v", got)
		}
	})

	t.Run("ListRunsNewestFirst", func(t *testing.T) {
		later := testReport(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))
		if err := store.SaveReport(later); err != nil {
			t.Fatalf("failed to save second report: %v", err)
		}

		runs, err := store.ListRuns(10, 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("runs = %d, want 2", len(runs))
		}
		if runs[0].ID != later.ID.String() {
			t.Errorf("first run = %s, want newest %s", runs[0].ID, later.ID)
		}

		limited, err := store.ListRuns(1, 0)
		if err != nil {
			t.Fatalf("failed to list limited runs: %v", err)
		}
		if len(limited) != 1 {
			t.Fatalf("limited runs = %d, want 1", len(limited))
		}

		offset, err := store.ListRuns(1, 1)
		if err != nil {
			t.Fatalf("failed to list offset runs: %v", err)
		}
		if len(offset) != 1 || offset[0].ID != report.ID.String() {
			t.Errorf("offset run = %+v, want %s", offset, report.ID)
		}
	})
}
