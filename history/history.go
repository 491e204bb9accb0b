// Package history keeps a local SQLite ledger of past review runs so
// CI jobs and developers can look up what a run cost and what it
// found without re-running it.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/sidhusupreetSFDC/cursor-ai-poc/review"
)

// Run is the summary row for one review run.
type Run struct {
	ID           string          `json:"id"`
	Provider     string          `json:"provider"`
	Model        string          `json:"model"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
	Files        int             `json:"files"`
	FailedFiles  int             `json:"failed_files"`
	Findings     int             `json:"findings"`
	InputTokens  int             `json:"input_tokens"`
	OutputTokens int             `json:"output_tokens"`
	CostUSD      decimal.Decimal `json:"cost_usd"`
}

// RunDetail is a run together with its per-file reviews.
type RunDetail struct {
	Run
	FileReviews []review.FileReview `json:"file_reviews"`
}

// Store persists review runs in a local SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// DefaultPath returns the per-user database location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".apexreview", "history.db"), nil
}

// Initialize creates the database schema.
func (s *Store) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		files INTEGER NOT NULL,
		failed_files INTEGER NOT NULL,
		findings INTEGER NOT NULL,
		input_tokens INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		cost_usd TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_files (
		run_id TEXT NOT NULL,
		path TEXT NOT NULL,
		review_json TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_run_files_run_id ON run_files(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReport stores a finished run and its per-file reviews.
func (s *Store) SaveReport(report *review.Report) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
	INSERT INTO runs (id, provider, model, started_at, finished_at, files, failed_files, findings, input_tokens, output_tokens, cost_usd)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.ID.String(),
		string(report.Provider),
		report.Model,
		report.StartedAt,
		report.FinishedAt,
		len(report.Files),
		report.FailedFiles(),
		report.TotalFindings(),
		report.TotalUsage.InputTokens,
		report.TotalUsage.OutputTokens,
		report.TotalCostUSD.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, f := range report.Files {
		reviewJSON, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("failed to marshal file review: %w", err)
		}
		if _, err := tx.Exec(
			"INSERT INTO run_files (run_id, path, review_json) VALUES (?, ?, ?)",
			report.ID.String(), f.Path, string(reviewJSON),
		); err != nil {
			return fmt.Errorf("failed to insert file review: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// GetRun retrieves one run with its file reviews. A missing id yields
// (nil, nil).
func (s *Store) GetRun(id string) (*RunDetail, error) {
	var (
		detail  RunDetail
		costUSD string
	)

	err := s.db.QueryRow(`
	SELECT id, provider, model, started_at, finished_at, files, failed_files, findings, input_tokens, output_tokens, cost_usd
	FROM runs
	WHERE id = ?
	`, id).Scan(
		&detail.ID,
		&detail.Provider,
		&detail.Model,
		&detail.StartedAt,
		&detail.FinishedAt,
		&detail.Files,
		&detail.FailedFiles,
		&detail.Findings,
		&detail.InputTokens,
		&detail.OutputTokens,
		&costUSD,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	detail.CostUSD, err = decimal.NewFromString(costUSD)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run cost: %w", err)
	}

	rows, err := s.db.Query("SELECT review_json FROM run_files WHERE run_id = ? ORDER BY rowid", id)
	if err != nil {
		return nil, fmt.Errorf("failed to list file reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reviewJSON string
		if err := rows.Scan(&reviewJSON); err != nil {
			return nil, fmt.Errorf("failed to scan file review: %w", err)
		}
		var f review.FileReview
		if err := json.Unmarshal([]byte(reviewJSON), &f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal file review: %w", err)
		}
		detail.FileReviews = append(detail.FileReviews, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file reviews: %w", err)
	}

	return &detail, nil
}

// ListRuns returns run summaries, newest first.
func (s *Store) ListRuns(limit, offset int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
	SELECT id, provider, model, started_at, finished_at, files, failed_files, findings, input_tokens, output_tokens, cost_usd
	FROM runs
	ORDER BY started_at DESC
	LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var (
			run     Run
			costUSD string
		)
		if err := rows.Scan(
			&run.ID,
			&run.Provider,
			&run.Model,
			&run.StartedAt,
			&run.FinishedAt,
			&run.Files,
			&run.FailedFiles,
			&run.Findings,
			&run.InputTokens,
			&run.OutputTokens,
			&costUSD,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CostUSD, err = decimal.NewFromString(costUSD)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run cost: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	return runs, nil
}
