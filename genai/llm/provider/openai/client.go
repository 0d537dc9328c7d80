package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	backoff "github.com/lestrrat-go/backoff/v2"
	basecfg "github.com/viant/datacrew/genai/llm/provider/base"
)

const (
	openAIEndpoint    = "https://api.openai.com/v1"
	defaultMaxRetries = 3
	defaultTimeout    = 10 * time.Minute
)

type APIKeyProvider func(ctx context.Context) (string, error)

// Client represents an OpenAI API client
type Client struct {
	basecfg.Config
	APIKey string
	// APIKeyProvider resolves the API key at call time; used only if APIKey is empty.
	APIKeyProvider APIKeyProvider

	// Defaults applied when GenerateRequest.Options is nil or leaves the
	// respective field unset.
	MaxTokens   int
	Temperature *float64

	// RetryPolicy overrides the exponential policy derived from MaxRetries.
	RetryPolicy backoff.Policy
}

// NewClient creates a new OpenAI client with the given API key and model
func NewClient(apiKey, model string, options ...ClientOption) *Client {
	client := &Client{
		Config: basecfg.Config{
			HTTPClient: &http.Client{},
			BaseURL:    openAIEndpoint,
			Model:      model,
			Timeout:    defaultTimeout,
			MaxRetries: defaultMaxRetries,
		},
		APIKey: apiKey,
	}
	for _, option := range options {
		option(client)
	}
	if client.APIKey == "" && client.APIKeyProvider == nil {
		client.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	client.BaseURL = strings.TrimRight(client.BaseURL, "/")
	return client
}

func (c *Client) apiKey(ctx context.Context) (string, error) {
	if c.APIKey != "" {
		return c.APIKey, nil
	}
	if c.APIKeyProvider == nil {
		return "", fmt.Errorf("API key is required")
	}
	key, err := c.APIKeyProvider(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("API key is required")
	}
	return key, nil
}

func (c *Client) retryPolicy() backoff.Policy {
	if c.RetryPolicy != nil {
		return c.RetryPolicy
	}
	if c.MaxRetries <= 0 {
		return backoff.Null()
	}
	return backoff.Exponential(
		backoff.WithMinInterval(time.Second),
		backoff.WithMaxInterval(30*time.Second),
		backoff.WithJitterFactor(0.1),
		backoff.WithMaxRetries(c.MaxRetries),
	)
}
