// Package config loads datacrew settings from defaults, an optional YAML
// file, a .env file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ErrMissingAPIKey is returned when no OpenAI API key is configured.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY not found. Please set it in your .env file or environment.")

const (
	// EnvPrefix prefixes datacrew environment variables; "__" separates nested keys.
	EnvPrefix = "DATACREW_"

	DefaultModel  = "gpt-4o-mini"
	DefaultOutput = "final_analysis_report.md"
)

// openAIEnv maps the conventional OpenAI variables to config keys.
var openAIEnv = map[string]string{
	"OPENAI_API_KEY":    "openai.api_key",
	"OPENAI_BASE_URL":   "openai.base_url",
	"OPENAI_MODEL_NAME": "openai.model",
}

type (
	// Config is the root configuration.
	Config struct {
		OpenAI OpenAI `koanf:"openai" validate:"required"`
		Crew   Crew   `koanf:"crew" validate:"required"`
		Log    Log    `koanf:"log"`
	}

	// OpenAI configures the chat completion client.
	OpenAI struct {
		APIKey      string        `koanf:"api_key" validate:"required"`
		BaseURL     string        `koanf:"base_url" validate:"required,url"`
		Model       string        `koanf:"model" validate:"required"`
		Temperature float64       `koanf:"temperature" validate:"gte=0,lte=2"`
		MaxTokens   int           `koanf:"max_tokens" validate:"gte=0"`
		MaxRetries  int           `koanf:"max_retries" validate:"gte=0,lte=10"`
		Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`
	}

	// Crew configures the analysis run.
	Crew struct {
		Definitions   string `koanf:"definitions"`
		Output        string `koanf:"output" validate:"required"`
		Transcript    string `koanf:"transcript"`
		MaxIterations int    `koanf:"max_iterations" validate:"gt=0,lte=100"`
	}

	// Log configures logging.
	Log struct {
		Level   string `koanf:"level" validate:"oneof=debug info warn error"`
		Console bool   `koanf:"console"`
	}

	// Options controls where configuration is read from.
	Options struct {
		EnvFile    string                 // .env file, ignored when missing
		ConfigFile string                 // optional YAML file
		Overrides  map[string]interface{} // dotted keys applied last, e.g. "crew.output"
	}
)

// Defaults returns the default settings as dotted keys.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"openai.base_url":     "https://api.openai.com/v1",
		"openai.model":        DefaultModel,
		"openai.max_retries":  3,
		"openai.timeout":      600 * time.Second,
		"crew.output":         DefaultOutput,
		"crew.max_iterations": 15,
		"log.level":           "info",
		"log.console":         true,
	}
}

// Load reads configuration; the API key is not required here, see Validate.
func Load(options Options) (*Config, error) {
	if options.EnvFile != "" {
		if _, err := os.Stat(options.EnvFile); err == nil {
			if err := godotenv.Load(options.EnvFile); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", options.EnvFile, err)
			}
		}
	}
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if options.ConfigFile != "" {
		if err := k.Load(file.Provider(options.ConfigFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", options.ConfigFile, err)
		}
	}
	err := k.Load(env.Provider("OPENAI_", ".", func(s string) string {
		return openAIEnv[s]
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load OPENAI_ env variables: %w", err)
	}
	err = k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s env variables: %w", EnvPrefix, err)
	}
	if len(options.Overrides) > 0 {
		if err := k.Load(confmap.Provider(options.Overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to apply overrides: %w", err)
		}
	}
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if err := validator.New().StructExcept(cfg, "OpenAI.APIKey"); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the whole configuration including the API key.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
