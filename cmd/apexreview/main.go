package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sidhusupreetSFDC/cursor-ai-poc/config"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/history"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/internal/observability"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/orgauth"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/pricing"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/providers"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/providers/anthropic"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/providers/cursor"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/providers/openai"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/retry"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/review"
)

const defaultSettingsFile = "apexreview.yml"

var (
	configFlag    string
	logLevelFlag  string
	logFormatFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "apexreview",
	Short: "AI-assisted Apex code review",
	Long: `apexreview runs AI-powered static review of Salesforce Apex source
files from CI pipelines. It prompts the configured model once per file,
validates the JSON verdict it answers with, and reports findings, token
usage and estimated cost.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Settings file (default: "+defaultSettingsFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: json, console")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(authCmd)
}

func loadConfig() (*config.Config, error) {
	path := configFlag
	if path == "" {
		if _, err := os.Stat(defaultSettingsFile); err == nil {
			path = defaultSettingsFile
		}
	}
	return config.Load(path)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := cfg.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	format := cfg.Format
	if logFormatFlag != "" {
		format = logFormatFlag
	}
	return observability.NewLogger(level, format)
}

func buildRegistry(cfg *config.Config) (*providers.Registry, error) {
	registry := providers.NewRegistry()

	adapters := []providers.Adapter{
		anthropic.New(cfg.Providers.For(providers.Anthropic)),
		openai.New(cfg.Providers.For(providers.OpenAI)),
		cursor.New(cfg.Providers.For(providers.Cursor)),
	}
	for _, adapter := range adapters {
		if err := registry.Register(adapter); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// review command - run the AI review over the given files
var reviewCmd = &cobra.Command{
	Use:   "review [files...]",
	Short: "Review Apex source files with the configured AI provider",
	Long: `Review runs every given file through the configured model and prints
a report. The exit status is non-zero when any file review failed or
when a blocker-severity finding was reported, so CI jobs can gate on it.

Examples:
  apexreview review classes/AccountHandler.cls
  apexreview review --provider openai --model gpt-4o classes/*.cls
  apexreview review --format json --out report.json classes/AccountHandler.cls`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReview,
}

var (
	templateFlag    string
	outFlag         string
	formatFlag      string
	providerFlag    string
	modelFlag       string
	temperatureFlag float64
	maxTokensFlag   int
	maxAttemptsFlag int
	baseDelayFlag   time.Duration
	noHistoryFlag   bool
)

func init() {
	reviewCmd.Flags().StringVar(&templateFlag, "template", "", "Prompt template file (default: built-in template)")
	reviewCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Write the report to this file instead of stdout")
	reviewCmd.Flags().StringVar(&formatFlag, "format", "markdown", "Report format: markdown, json")
	reviewCmd.Flags().StringVar(&providerFlag, "provider", "", "Override the configured provider")
	reviewCmd.Flags().StringVar(&modelFlag, "model", "", "Override the configured model")
	reviewCmd.Flags().Float64Var(&temperatureFlag, "temperature", 0, "Override the configured temperature")
	reviewCmd.Flags().IntVar(&maxTokensFlag, "max-tokens", 0, "Override the configured max tokens")
	reviewCmd.Flags().IntVar(&maxAttemptsFlag, "max-attempts", 0, "Override the retry budget")
	reviewCmd.Flags().DurationVar(&baseDelayFlag, "base-delay", 0, "Override the first retry delay")
	reviewCmd.Flags().BoolVar(&noHistoryFlag, "no-history", false, "Skip recording the run in local history")
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyReviewOverrides(cmd, cfg); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	adapter, err := registry.Get(cfg.Settings.Provider)
	if err != nil {
		return err
	}

	orchestrator := retry.New(adapter, retry.Options{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
	}, logger)
	svc := review.NewService(adapter, orchestrator, pricing.Default(), logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	report, err := svc.Review(ctx, review.Request{
		Paths:        args,
		TemplatePath: templateFlag,
		Settings:     cfg.Settings,
	})
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	if err := writeReport(report, formatFlag, outFlag); err != nil {
		return err
	}

	if !noHistoryFlag {
		saveHistory(cfg, report, logger)
	}

	// CI gate.
	if failed := report.FailedFiles(); failed > 0 {
		return fmt.Errorf("%d of %d file review(s) failed", failed, len(report.Files))
	}
	if report.HasSeverity(review.SeverityBlocker) {
		return errors.New("review reported blocker findings")
	}

	return nil
}

// applyReviewOverrides layers explicit review flags over the resolved
// configuration, then re-checks the ranges the flags may have broken.
func applyReviewOverrides(cmd *cobra.Command, cfg *config.Config) error {
	if providerFlag != "" {
		cfg.Settings.Provider = providers.Name(providerFlag)
	}
	if modelFlag != "" {
		cfg.Settings.Model = modelFlag
	}
	if cmd.Flags().Changed("temperature") {
		cfg.Settings.Temperature = temperatureFlag
	}
	if cmd.Flags().Changed("max-tokens") {
		cfg.Settings.MaxTokens = maxTokensFlag
	}
	if cmd.Flags().Changed("max-attempts") {
		cfg.Retry.MaxAttempts = maxAttemptsFlag
	}
	if cmd.Flags().Changed("base-delay") {
		cfg.Retry.BaseDelay = baseDelayFlag
	}

	if err := config.ValidateStruct(&cfg.Settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return cfg.Validate()
}

func writeReport(report *review.Report, format, out string) error {
	var buf bytes.Buffer
	switch format {
	case "markdown", "md":
		if err := report.WriteMarkdown(&buf); err != nil {
			return err
		}
	case "json":
		if err := report.WriteJSON(&buf); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown report format: %s (want markdown or json)", format)
	}

	if out == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}

	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Printf("Report written to %s\n", out)
	return nil
}

// saveHistory records the run in the local ledger. Best effort: a
// history failure must never fail a review that already ran.
func saveHistory(cfg *config.Config, report *review.Report, logger *zap.Logger) {
	if !cfg.History.Enabled {
		return
	}

	path := cfg.History.DBPath
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			logger.Warn("history skipped", zap.Error(err))
			return
		}
	}

	store, err := history.NewStore(path)
	if err != nil {
		logger.Warn("failed to open history store", zap.Error(err))
		return
	}
	defer store.Close()

	if err := store.Initialize(); err != nil {
		logger.Warn("failed to initialize history store", zap.Error(err))
		return
	}
	if err := store.SaveReport(report); err != nil {
		logger.Warn("failed to record run history", zap.Error(err))
		return
	}

	logger.Debug("run recorded", zap.String("run_id", report.ID.String()), zap.String("db", path))
}

// models command - list the price table
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known models and their prices",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tMODEL\tINPUT $/1M\tOUTPUT $/1M")
		for _, e := range pricing.Default().Entries() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Provider, e.Model, e.InputUSDPer1M, e.OutputUSDPer1M)
		}
		return w.Flush()
	},
}

// history command - list recent runs
var historyLimitFlag int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent review runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		path := cfg.History.DBPath
		if path == "" {
			path, err = history.DefaultPath()
			if err != nil {
				return err
			}
		}
		if _, err := os.Stat(path); err != nil {
			fmt.Println("No runs recorded.")
			return nil
		}

		store, err := history.NewStore(path)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Initialize(); err != nil {
			return err
		}

		runs, err := store.ListRuns(historyLimitFlag, 0)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPROVIDER\tMODEL\tFILES\tFAILED\tFINDINGS\tCOST\tSTARTED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t$%s\t%s\n",
				shortID(r.ID),
				r.Provider,
				r.Model,
				r.Files,
				r.FailedFiles,
				r.Findings,
				r.CostUSD.StringFixed(4),
				r.StartedAt.Format("2006-01-02 15:04"),
			)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Number of runs to list")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// auth commands - org logins via the sf CLI
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate a Salesforce org via the sf CLI",
}

var authAliasFlag string

var authSfdxURLCmd = &cobra.Command{
	Use:   "sfdx-url [url]",
	Short: "Authenticate with a force:// auth URL",
	Long: `Authenticate with an sfdx auth URL, taken from the argument or from
SFDX_AUTH_URL. CI pipelines keep the URL in a secret and export it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		authURL := os.Getenv("SFDX_AUTH_URL")
		if len(args) == 1 {
			authURL = args[0]
		}
		if authURL == "" {
			return errors.New("provide the auth url as an argument or in SFDX_AUTH_URL")
		}

		client, err := newOrgauthClient()
		if err != nil {
			return err
		}

		info, err := client.LoginSfdxURL(cmd.Context(), authURL, authAliasFlag)
		if err != nil {
			return err
		}

		fmt.Printf("Authenticated %s (%s)\n", info.Username, info.InstanceURL)
		return nil
	},
}

var (
	jwtClientIDFlag    string
	jwtUsernameFlag    string
	jwtKeyFileFlag     string
	jwtInstanceURLFlag string
)

var authJWTCmd = &cobra.Command{
	Use:   "jwt",
	Short: "Authenticate with the JWT bearer flow",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newOrgauthClient()
		if err != nil {
			return err
		}

		info, err := client.LoginJWT(cmd.Context(), orgauth.JWTParams{
			ClientID:    jwtClientIDFlag,
			Username:    jwtUsernameFlag,
			KeyFile:     jwtKeyFileFlag,
			InstanceURL: jwtInstanceURLFlag,
			Alias:       authAliasFlag,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Authenticated %s (%s)\n", info.Username, info.InstanceURL)
		return nil
	},
}

func init() {
	authCmd.PersistentFlags().StringVar(&authAliasFlag, "alias", "", "Alias for the authenticated org")

	authJWTCmd.Flags().StringVar(&jwtClientIDFlag, "client-id", os.Getenv("SF_CLIENT_ID"), "Connected app client id (default $SF_CLIENT_ID)")
	authJWTCmd.Flags().StringVar(&jwtUsernameFlag, "username", os.Getenv("SF_USERNAME"), "Org username (default $SF_USERNAME)")
	authJWTCmd.Flags().StringVar(&jwtKeyFileFlag, "key-file", os.Getenv("SF_JWT_KEY_FILE"), "JWT signing key file (default $SF_JWT_KEY_FILE)")
	authJWTCmd.Flags().StringVar(&jwtInstanceURLFlag, "instance-url", os.Getenv("SF_INSTANCE_URL"), "Login URL (default $SF_INSTANCE_URL)")

	authCmd.AddCommand(authSfdxURLCmd)
	authCmd.AddCommand(authJWTCmd)
}

func newOrgauthClient() (*orgauth.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	client := orgauth.New(logger)
	if !client.Available() {
		return nil, errors.New("sf CLI not found on PATH; install it from https://developer.salesforce.com/tools/salesforcecli")
	}
	return client, nil
}
