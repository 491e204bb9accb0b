package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sidhusupreetSFDC/cursor-ai-poc/providers"
)

// Built-in defaults, used whenever a configuration source is absent or
// silent on a key.
const (
	DefaultProvider    = providers.Anthropic
	DefaultModel       = "claude-sonnet-4-20250514"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 4096
)

// DefaultSettings returns the built-in call settings.
func DefaultSettings() providers.Settings {
	return providers.Settings{
		Provider:    DefaultProvider,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// settingsFile mirrors the YAML settings document. Pointer fields
// distinguish an absent key from a zero value; absent keys keep their
// defaults. Unknown keys are ignored.
type settingsFile struct {
	Provider    *string  `yaml:"provider"`
	Model       *string  `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   *int     `yaml:"max_tokens"`
}

// ResolveSettings layers the optional YAML file at path, then the
// APEXREVIEW_* environment overrides, onto the built-in defaults.
//
// A missing, unreadable, or unparseable file never fails resolution:
// the defaults simply stand, per-key. Explicitly supplied values that
// fall outside the documented ranges are rejected here, before any
// adapter sees them.
func ResolveSettings(path string) (providers.Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		if raw, err := os.ReadFile(path); err == nil {
			var file settingsFile
			if err := yaml.Unmarshal(raw, &file); err == nil {
				if file.Provider != nil {
					settings.Provider = providers.Name(*file.Provider)
				}
				if file.Model != nil {
					settings.Model = *file.Model
				}
				if file.Temperature != nil {
					settings.Temperature = *file.Temperature
				}
				if file.MaxTokens != nil {
					settings.MaxTokens = *file.MaxTokens
				}
			}
		}
	}

	applySettingsEnv(&settings)

	if err := ValidateStruct(&settings); err != nil {
		return providers.Settings{}, fmt.Errorf("invalid settings: %w", err)
	}

	return settings, nil
}

func applySettingsEnv(settings *providers.Settings) {
	if v := os.Getenv("APEXREVIEW_PROVIDER"); v != "" {
		settings.Provider = providers.Name(v)
	}
	if v := os.Getenv("APEXREVIEW_MODEL"); v != "" {
		settings.Model = v
	}
	settings.Temperature = getEnvAsFloat("APEXREVIEW_TEMPERATURE", settings.Temperature)
	settings.MaxTokens = getEnvAsInt("APEXREVIEW_MAX_TOKENS", settings.MaxTokens)
}
