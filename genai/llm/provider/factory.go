package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/viant/datacrew/genai/llm"
	"github.com/viant/datacrew/genai/llm/provider/openai"
)

type Factory struct{}

// CreateModel creates a new language model instance
func (f *Factory) CreateModel(ctx context.Context, options *Options) (llm.Model, error) {
	if options == nil {
		return nil, fmt.Errorf("options were empty")
	}
	if options.Provider == "" {
		return nil, fmt.Errorf("provider was empty")
	}
	switch strings.ToLower(options.Provider) {
	case ProviderOpenAI:
		apiKey := f.apiKey(options)
		clientOptions := []openai.ClientOption{
			openai.WithUsageListener(options.UsageListener),
			openai.WithBaseURL(options.BaseURL),
			openai.WithTimeout(options.Timeout),
		}
		if options.MaxRetries != nil {
			clientOptions = append(clientOptions, openai.WithMaxRetries(*options.MaxRetries))
		}
		if options.Temperature != nil {
			clientOptions = append(clientOptions, openai.WithTemperature(*options.Temperature))
		}
		if options.MaxTokens > 0 {
			clientOptions = append(clientOptions, openai.WithMaxTokens(options.MaxTokens))
		}
		return openai.NewClient(apiKey, options.Model, clientOptions...), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %v", options.Provider)
	}
}

func (f *Factory) apiKey(options *Options) string {
	if options.APIKey != "" {
		return options.APIKey
	}
	if options.EnvKey != "" {
		return os.Getenv(options.EnvKey)
	}
	return ""
}

func New() *Factory {
	return &Factory{}
}
