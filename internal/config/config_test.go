package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL_NAME", "DATACREW_CREW__MAX_ITERATIONS", "DATACREW_LOG__LEVEL", "DATACREW_OPENAI__TEMPERATURE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("OPENAI_API_KEY=sk-from-dotenv\nOPENAI_MODEL_NAME=gpt-4o\n"), 0o644))
	configFile := filepath.Join(dir, "datacrew.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("openai:\n  temperature: 0.2\n  timeout: 30s\ncrew:\n  output: out/report.md\n"), 0o644))
	invalidFile := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalidFile, []byte("log:\n  level: chatty\n"), 0o644))

	testCases := []struct {
		description string
		env         map[string]string
		options     Options
		check       func(t *testing.T, cfg *Config)
		expectErr   string
	}{
		{
			description: "defaults",
			options:     Options{EnvFile: filepath.Join(dir, "missing.env")},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "", cfg.OpenAI.APIKey)
				assert.Equal(t, DefaultModel, cfg.OpenAI.Model)
				assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
				assert.Equal(t, 3, cfg.OpenAI.MaxRetries)
				assert.Equal(t, 600*time.Second, cfg.OpenAI.Timeout)
				assert.Equal(t, DefaultOutput, cfg.Crew.Output)
				assert.Equal(t, 15, cfg.Crew.MaxIterations)
				assert.Equal(t, "info", cfg.Log.Level)
			},
		},
		{
			description: "dotenv, file and env layering",
			env:         map[string]string{"DATACREW_CREW__MAX_ITERATIONS": "7", "DATACREW_LOG__LEVEL": "DEBUG"},
			options:     Options{EnvFile: envFile, ConfigFile: configFile},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "sk-from-dotenv", cfg.OpenAI.APIKey)
				assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
				assert.Equal(t, 0.2, cfg.OpenAI.Temperature)
				assert.Equal(t, 30*time.Second, cfg.OpenAI.Timeout)
				assert.Equal(t, "out/report.md", cfg.Crew.Output)
				assert.Equal(t, 7, cfg.Crew.MaxIterations)
				assert.Equal(t, "debug", cfg.Log.Level)
			},
		},
		{
			description: "process env wins over dotenv",
			env:         map[string]string{"OPENAI_API_KEY": "sk-env"},
			options:     Options{EnvFile: envFile},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
			},
		},
		{
			description: "overrides applied last",
			env:         map[string]string{"OPENAI_API_KEY": "sk-env"},
			options:     Options{Overrides: map[string]interface{}{"crew.output": "cli.md", "log.level": "warn"}},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "cli.md", cfg.Crew.Output)
				assert.Equal(t, "warn", cfg.Log.Level)
			},
		},
		{
			description: "invalid level",
			options:     Options{ConfigFile: invalidFile},
			expectErr:   "invalid config",
		},
		{
			description: "temperature out of range",
			env:         map[string]string{"DATACREW_OPENAI__TEMPERATURE": "3"},
			expectErr:   "invalid config",
		},
		{
			description: "missing config file",
			options:     Options{ConfigFile: filepath.Join(dir, "nope.yaml")},
			expectErr:   "failed to load config file",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			clearEnv(t)
			for key, value := range testCase.env {
				t.Setenv(key, value)
			}
			cfg, err := Load(testCase.options)
			if testCase.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), testCase.expectErr)
				return
			}
			require.NoError(t, err)
			testCase.check(t, cfg)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.True(t, errors.Is(cfg.Validate(), ErrMissingAPIKey))

	cfg.OpenAI.APIKey = "sk-test"
	assert.NoError(t, cfg.Validate())

	cfg.Crew.MaxIterations = 0
	assert.Error(t, cfg.Validate())
}
