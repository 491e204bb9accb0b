package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidhusupreetSFDC/cursor-ai-poc/config"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/providers"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/review"
)

func testReviewReport() *review.Report {
	now := time.Now()
	return &review.Report{
		ID:         uuid.New(),
		StartedAt:  now,
		FinishedAt: now.Add(time.Second),
		Provider:   providers.Anthropic,
		Model:      "claude-sonnet-4-20250514",
		Files: []review.FileReview{{
			Path:     "classes/A.cls",
			Summary:  "Fine.",
			Attempts: 1,
		}},
	}
}

func TestWriteReport(t *testing.T) {
	t.Run("markdown to file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "report.md")
		require.NoError(t, writeReport(testReviewReport(), "markdown", out))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "# Apex Review")
	})

	t.Run("json to file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "report.json")
		require.NoError(t, writeReport(testReviewReport(), "json", out))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"files"`)
	})

	t.Run("unknown format", func(t *testing.T) {
		err := writeReport(testReviewReport(), "pdf", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown report format")
	})
}

func TestBuildRegistry(t *testing.T) {
	os.Clearenv()
	cfg, err := config.Load("")
	require.NoError(t, err)

	registry, err := buildRegistry(cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, registry.Len())
	for _, name := range providers.All() {
		adapter, err := registry.Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, adapter.Name())
	}
}

func TestApplyReviewOverrides(t *testing.T) {
	os.Clearenv()
	cfg, err := config.Load("")
	require.NoError(t, err)

	require.NoError(t, reviewCmd.Flags().Set("temperature", "0.7"))
	require.NoError(t, reviewCmd.Flags().Set("max-attempts", "5"))
	providerFlag = "openai"
	modelFlag = "gpt-4o"
	defer func() {
		providerFlag = ""
		modelFlag = ""
		require.NoError(t, reviewCmd.Flags().Set("temperature", "0"))
		require.NoError(t, reviewCmd.Flags().Set("max-attempts", "0"))
		reviewCmd.Flags().Lookup("temperature").Changed = false
		reviewCmd.Flags().Lookup("max-attempts").Changed = false
	}()

	require.NoError(t, applyReviewOverrides(reviewCmd, cfg))

	assert.Equal(t, providers.OpenAI, cfg.Settings.Provider)
	assert.Equal(t, "gpt-4o", cfg.Settings.Model)
	assert.Equal(t, 0.7, cfg.Settings.Temperature)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
}

func TestApplyReviewOverrides_InvalidProvider(t *testing.T) {
	os.Clearenv()
	cfg, err := config.Load("")
	require.NoError(t, err)

	providerFlag = "gemini"
	defer func() { providerFlag = "" }()

	err = applyReviewOverrides(reviewCmd, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "6f1f5a2e", shortID("6f1f5a2e-8d0c-4db0-9a43-1c2a51a6a111"))
	assert.Equal(t, "abc", shortID("abc"))
}
