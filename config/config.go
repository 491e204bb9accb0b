package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sidhusupreetSFDC/cursor-ai-poc/providers"
)

// Config represents the complete application configuration
type Config struct {
	Settings  providers.Settings
	Retry     RetryConfig
	Providers ProvidersConfig
	History   HistoryConfig
	Logging   LoggingConfig
}

// RetryConfig holds the retry budget for provider calls
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// ProvidersConfig holds per-provider credentials and endpoints
type ProvidersConfig struct {
	Anthropic ProviderConfig
	OpenAI    ProviderConfig
	Cursor    ProviderConfig
}

// ProviderConfig holds one provider's connection settings
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// HistoryConfig holds the local run ledger settings
type HistoryConfig struct {
	Enabled bool
	DBPath  string // empty means the per-user default location
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load builds the application configuration: .env bootstrap, built-in
// defaults, the optional settings file at settingsPath, then
// environment overrides.
func Load(settingsPath string) (*Config, error) {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load(".env")

	settings, err := ResolveSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Settings: settings,
		Retry: RetryConfig{
			MaxAttempts: getEnvAsInt("APEXREVIEW_MAX_ATTEMPTS", 3),
			BaseDelay:   getEnvAsDuration("APEXREVIEW_BASE_DELAY", 1*time.Second),
			MaxDelay:    getEnvAsDuration("APEXREVIEW_MAX_DELAY", 30*time.Second),
		},
		Providers: ProvidersConfig{
			Anthropic: ProviderConfig{
				APIKey:  getEnv("ANTHROPIC_API_KEY", ""),
				BaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
				Timeout: getEnvAsDuration("ANTHROPIC_TIMEOUT", 60*time.Second),
			},
			OpenAI: ProviderConfig{
				APIKey:  getEnv("OPENAI_API_KEY", ""),
				BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				Timeout: getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
			},
			Cursor: ProviderConfig{
				APIKey:  getEnv("CURSOR_API_KEY", ""),
				BaseURL: getEnv("CURSOR_BASE_URL", "https://api.cursor.com/v1"),
				Timeout: getEnvAsDuration("CURSOR_TIMEOUT", 60*time.Second),
			},
		},
		History: HistoryConfig{
			Enabled: getEnvAsBool("APEXREVIEW_HISTORY", true),
			DBPath:  getEnv("APEXREVIEW_DB_PATH", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the constraints the struct tags cannot express.
func (c *Config) Validate() error {
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1")
	}
	if c.Retry.BaseDelay < 0 {
		return fmt.Errorf("retry base delay cannot be negative")
	}
	if c.Logging.Level == "" {
		return fmt.Errorf("log level is required")
	}
	return nil
}

// For returns the adapter construction config for a provider. The API
// key travels from here into the adapter; nothing downstream reads the
// environment.
func (p ProvidersConfig) For(name providers.Name) providers.Config {
	var pc ProviderConfig
	switch name {
	case providers.Anthropic:
		pc = p.Anthropic
	case providers.OpenAI:
		pc = p.OpenAI
	case providers.Cursor:
		pc = p.Cursor
	}

	return providers.Config{
		APIKey:  pc.APIKey,
		BaseURL: pc.BaseURL,
		Timeout: pc.Timeout,
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
