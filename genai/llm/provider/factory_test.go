package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/datacrew/genai/llm/provider/openai"
)

func TestFactory_CreateModel(t *testing.T) {
	retries := 1
	temperature := 0.2
	testCases := []struct {
		description string
		options     *Options
		expectErr   string
		verify      func(t *testing.T, client *openai.Client)
	}{
		{
			description: "openai with overrides",
			options: &Options{
				Provider:    "openai",
				Model:       "gpt-4o-mini",
				APIKey:      "sk-test",
				BaseURL:     "http://localhost:8080/v1/",
				MaxRetries:  &retries,
				Temperature: &temperature,
				Timeout:     time.Minute,
			},
			verify: func(t *testing.T, client *openai.Client) {
				assert.Equal(t, "sk-test", client.APIKey)
				assert.Equal(t, "gpt-4o-mini", client.Model)
				assert.Equal(t, "http://localhost:8080/v1", client.BaseURL)
				assert.Equal(t, 1, client.MaxRetries)
				assert.Equal(t, time.Minute, client.Timeout)
				require.NotNil(t, client.Temperature)
				assert.Equal(t, 0.2, *client.Temperature)
			},
		},
		{
			description: "api key from env key",
			options:     &Options{Provider: "OpenAI", Model: "m", EnvKey: "DATACREW_TEST_KEY"},
			verify: func(t *testing.T, client *openai.Client) {
				assert.Equal(t, "from-env", client.APIKey)
				assert.Equal(t, 3, client.MaxRetries)
			},
		},
		{
			description: "empty provider",
			options:     &Options{Model: "m"},
			expectErr:   "provider was empty",
		},
		{
			description: "unsupported provider",
			options:     &Options{Provider: "ollama"},
			expectErr:   "unsupported provider: ollama",
		},
	}

	t.Setenv("DATACREW_TEST_KEY", "from-env")
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			model, err := New().CreateModel(context.Background(), tc.options)
			if tc.expectErr != "" {
				assert.EqualError(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			client, ok := model.(*openai.Client)
			require.True(t, ok)
			tc.verify(t, client)
		})
	}
}

func TestFinder_Find(t *testing.T) {
	finder := NewFinder(Options{Provider: ProviderOpenAI, Model: "gpt-4o-mini", APIKey: "k"})
	ctx := context.Background()

	first, err := finder.Find(ctx, "")
	require.NoError(t, err)
	again, err := finder.Find(ctx, "gpt-4o-mini")
	require.NoError(t, err)
	assert.Same(t, first, again)

	other, err := finder.Find(ctx, "gpt-4o")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, "gpt-4o", other.(*openai.Client).Model)
}
