package provider

import (
	"time"

	basecfg "github.com/viant/datacrew/genai/llm/provider/base"
)

type Options struct {
	Model         string                `yaml:"model,omitempty" json:"model,omitempty"`
	Provider      string                `yaml:"provider,omitempty" json:"provider,omitempty"`
	APIKey        string                `yaml:"-" json:"-"`
	EnvKey        string                `yaml:"envKey,omitempty" json:"envKey,omitempty"` // environment variable key to use for API key
	BaseURL       string                `yaml:"baseURL,omitempty" json:"baseURL,omitempty"`
	Temperature   *float64              `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	MaxTokens     int                   `yaml:"maxTokens,omitempty" json:"maxTokens,omitempty"`
	MaxRetries    *int                  `yaml:"maxRetries,omitempty" json:"maxRetries,omitempty"`
	Timeout       time.Duration         `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	UsageListener basecfg.UsageListener `yaml:"-" json:"-"`
}
