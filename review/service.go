package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sidhusupreetSFDC/cursor-ai-poc/extract"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/pricing"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/providers"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/retry"
)

// Service runs review requests against one provider adapter.
type Service struct {
	adapter      providers.Adapter
	orchestrator *retry.Orchestrator
	prices       *pricing.Table
	logger       *zap.Logger
}

// Request describes one review run.
type Request struct {
	// Paths are the Apex source files to review, in order
	Paths []string

	// TemplatePath optionally overrides the embedded prompt template
	TemplatePath string

	// Settings select the model and generation parameters
	Settings providers.Settings
}

// NewService creates a review service. A nil logger disables logging.
func NewService(adapter providers.Adapter, orchestrator *retry.Orchestrator, prices *pricing.Table, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		adapter:      adapter,
		orchestrator: orchestrator,
		prices:       prices,
		logger:       logger,
	}
}

// Review runs the pipeline over every requested file. A file that
// cannot be read fails the run; a file whose review exhausts its
// retries is recorded as failed and the run continues, CI consumers
// want the partial results.
func (s *Service) Review(ctx context.Context, req Request) (*Report, error) {
	if len(req.Paths) == 0 {
		return nil, errors.New("no files to review")
	}

	tmpl, err := LoadTemplate(req.TemplatePath)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		Provider:  req.Settings.Provider,
		Model:     req.Settings.Model,
	}

	s.logger.Info("review run started",
		zap.String("run_id", report.ID.String()),
		zap.String("provider", req.Settings.Provider.String()),
		zap.String("model", req.Settings.Model),
		zap.Int("files", len(req.Paths)))

	for _, path := range req.Paths {
		fileReview, err := s.reviewFile(ctx, tmpl, path, req.Settings)
		if err != nil {
			return nil, err
		}

		report.Files = append(report.Files, *fileReview)
		report.TotalUsage.InputTokens += fileReview.Usage.InputTokens
		report.TotalUsage.OutputTokens += fileReview.Usage.OutputTokens
		report.TotalCostUSD = report.TotalCostUSD.Add(fileReview.CostUSD)
	}

	report.FinishedAt = time.Now()

	s.logger.Info("review run completed",
		zap.String("run_id", report.ID.String()),
		zap.Int("files", len(report.Files)),
		zap.Int("failed", report.FailedFiles()),
		zap.Int("findings", report.TotalFindings()),
		zap.Int("tokens", report.TotalUsage.Total()),
		zap.String("cost_usd", report.TotalCostUSD.String()),
		zap.Duration("duration", report.Duration()))

	return report, nil
}

// reviewFile runs one file through complete → extract → decode under
// the retry policy. An answer that does not decode into a verdict is a
// parse failure and consumes an attempt like any transport fault.
func (s *Service) reviewFile(ctx context.Context, tmpl *Template, path string, settings providers.Settings) (*FileReview, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	// Credential-looking strings must not reach an external provider.
	cleaned, redactions := redactSecrets(string(content))
	if redactions != nil {
		s.logger.Warn("redacted credential-looking strings before upload",
			zap.String("path", path),
			zap.Any("redactions", redactions))
	}

	prompt := tmpl.Render(path, cleaned)

	s.logger.Debug("reviewing file",
		zap.String("path", path),
		zap.Int("bytes", len(content)))

	var v verdict
	attempts := 0
	result, err := s.orchestrator.Do(ctx, func(ctx context.Context, attempt int) (*providers.Completion, error) {
		attempts = attempt

		completion, err := s.adapter.Complete(ctx, prompt, settings)
		if err != nil {
			return nil, err
		}

		var decoded verdict
		if err := json.Unmarshal([]byte(extract.JSON(completion.Answer)), &decoded); err != nil {
			return nil, providers.NewError(providers.KindParse, completion.Provider,
				"answer is not a valid review verdict", 0, err)
		}

		v = decoded
		return completion, nil
	})
	if err != nil {
		// A rejected credential would fail every remaining file the
		// same way.
		if providers.IsAuthError(err) {
			return nil, err
		}

		s.logger.Warn("file review failed",
			zap.String("path", path),
			zap.Int("attempts", attempts),
			zap.String("kind", string(providers.KindOf(err))),
			zap.Error(err))

		return &FileReview{
			Path:     path,
			Attempts: attempts,
			CostUSD:  decimal.Zero,
			Failed:   true,
			Error:    err.Error(),
		}, nil
	}

	cost := s.prices.EstimateUsage(result.Provider, result.Model, result.Usage)

	s.logger.Debug("file reviewed",
		zap.String("path", path),
		zap.Int("attempts", result.Attempts),
		zap.Int("findings", len(v.Findings)),
		zap.Int("tokens", result.Usage.Total()),
		zap.String("cost_usd", cost.String()))

	return &FileReview{
		Path:     path,
		Summary:  v.Summary,
		Findings: v.Findings,
		Attempts: result.Attempts,
		Usage:    result.Usage,
		CostUSD:  cost,
	}, nil
}
