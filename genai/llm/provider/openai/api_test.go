package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	backoff "github.com/lestrrat-go/backoff/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/datacrew/genai/llm"
)

// roundTripFunc allows using a function as an HTTP RoundTripper.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

const okBody = `{"id":"id","object":"chat.completion","created":0,"model":"test-model","choices":[{"index":0,"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}],"usage":{"prompt_tokens":5,"completion_tokens":6,"total_tokens":11}}`

func httpResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func fastRetry(retries int) ClientOption {
	return WithRetryPolicy(backoff.Constant(
		backoff.WithInterval(time.Millisecond),
		backoff.WithMaxRetries(retries),
	))
}

func TestGenerate_UsageListener(t *testing.T) {
	var called bool
	expectedUsage := llm.Usage{PromptTokens: 5, CompletionTokens: 6, TotalTokens: 11}
	client := NewClient(
		"apiKey",
		"test-model",
		WithUsageListener(func(model string, usage *llm.Usage) {
			called = true
			assert.EqualValues(t, "test-model", model)
			assert.EqualValues(t, &expectedUsage, usage)
		}),
		WithBaseURL("http://localhost/"),
		WithHTTPClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "http://localhost/chat/completions", req.URL.String())
			assert.Equal(t, "Bearer apiKey", req.Header.Get("Authorization"))
			var payload map[string]interface{}
			assert.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
			assert.Equal(t, "test-model", payload["model"])
			return httpResponse(http.StatusOK, okBody), nil
		})}),
	)

	resp, err := client.Generate(context.Background(), &llm.GenerateRequest{
		Messages: []llm.Message{llm.NewUserMessage("hello")},
	})
	require.NoError(t, err)
	assert.True(t, called, "usage listener should be called")
	assert.EqualValues(t, expectedUsage, *resp.Usage)
	assert.Equal(t, "hi", resp.Message().Content)
}

func TestGenerate_Retry(t *testing.T) {
	testCases := []struct {
		description string
		statuses    []int
		retries     int
		expectErr   string
		minAttempts int32
		maxAttempts int32
	}{
		{
			description: "recovers after throttling",
			statuses:    []int{http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusOK},
			retries:     3,
			minAttempts: 3,
			maxAttempts: 3,
		},
		{
			description: "recovers after server error",
			statuses:    []int{http.StatusBadGateway, http.StatusOK},
			retries:     3,
			minAttempts: 2,
			maxAttempts: 2,
		},
		{
			description: "client error is not retried",
			statuses:    []int{http.StatusBadRequest},
			retries:     3,
			expectErr:   "OpenAI API error (status 400): bad request",
			minAttempts: 1,
			maxAttempts: 1,
		},
		{
			description: "gives up after retries",
			statuses:    []int{http.StatusServiceUnavailable},
			retries:     2,
			expectErr:   "status 503",
			minAttempts: 2,
			maxAttempts: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			var attempts int32
			client := NewClient("apiKey", "test-model",
				fastRetry(tc.retries),
				WithHTTPClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
					n := atomic.AddInt32(&attempts, 1)
					idx := int(n) - 1
					if idx >= len(tc.statuses) {
						idx = len(tc.statuses) - 1
					}
					status := tc.statuses[idx]
					if status == http.StatusOK {
						return httpResponse(status, okBody), nil
					}
					return httpResponse(status, `{"error":{"message":"bad request"}}`), nil
				})}),
			)
			resp, err := client.Generate(context.Background(), &llm.GenerateRequest{Messages: []llm.Message{llm.NewUserMessage("hi")}})
			got := atomic.LoadInt32(&attempts)
			assert.GreaterOrEqual(t, got, tc.minAttempts)
			assert.LessOrEqual(t, got, tc.maxAttempts)
			if tc.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "hi", resp.Message().Content)
		})
	}
}

func TestGenerate_NoRetries(t *testing.T) {
	var attempts int32
	client := NewClient("apiKey", "test-model",
		WithMaxRetries(0),
		WithHTTPClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			atomic.AddInt32(&attempts, 1)
			return nil, errors.New("connection refused")
		})}),
	)
	_, err := client.Generate(context.Background(), &llm.GenerateRequest{Messages: []llm.Message{llm.NewUserMessage("hi")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.EqualValues(t, 1, atomic.LoadInt32(&attempts))
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	client := NewClient("", "test-model")
	_, err := client.Generate(context.Background(), &llm.GenerateRequest{})
	assert.EqualError(t, err, "API key is required")
}

func TestClient_Implements(t *testing.T) {
	client := NewClient("k", "m")
	assert.True(t, client.Implements("can-use-tools"))
	assert.False(t, client.Implements("can-stream"))
}
