package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	backoff "github.com/lestrrat-go/backoff/v2"
	"github.com/viant/datacrew/genai/llm"
	"github.com/viant/datacrew/genai/llm/provider/base"
)

// retryableError marks a failed attempt that may succeed when repeated.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func (c *Client) Implements(feature string) bool {
	switch feature {
	case base.CanUseTools:
		return true
	}
	return false
}

// Generate sends a chat request to the OpenAI API and returns the response.
// Transport failures, 429 and 5xx responses are retried according to the
// client retry policy.
func (c *Client) Generate(ctx context.Context, request *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	apiKey, err := c.apiKey(ctx)
	if err != nil {
		return nil, err
	}
	req, err := c.prepareChatRequest(request)
	if err != nil {
		return nil, err
	}
	payload, err := c.marshalRequestBody(req)
	if err != nil {
		return nil, err
	}

	// the backoff controller lives until its context is done
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()
	b := c.retryPolicy().Start(rctx)

	var lastErr error
	for backoff.Continue(b) {
		respBytes, err := c.send(rctx, apiKey, payload)
		if err == nil {
			return c.parseGenerateResponse(req.Model, respBytes)
		}
		lastErr = err
		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return nil, err
		}
	}
	if lastErr == nil {
		lastErr = ctx.Err()
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("request was not sent")
	}
	var retryable *retryableError
	if errors.As(lastErr, &retryable) {
		return nil, retryable.err
	}
	return nil, lastErr
}

func (c *Client) send(ctx context.Context, apiKey string, payload []byte) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	httpReq, err := c.createHTTPChatRequest(ctx, apiKey, payload)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if resp.StatusCode == http.StatusOK {
		return respBytes, nil
	}
	apiErr := fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, errorMessage(respBytes))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return nil, &retryableError{err: apiErr}
	}
	return nil, apiErr
}

func errorMessage(body []byte) string {
	var envelope ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return string(body)
}

// prepareChatRequest converts a generic request and applies client defaults.
func (c *Client) prepareChatRequest(request *llm.GenerateRequest) (*Request, error) {
	req := ToRequest(request)
	if req.Model == "" {
		req.Model = c.Model
	}
	if req.MaxTokens == 0 && c.MaxTokens > 0 {
		req.MaxTokens = c.MaxTokens
	}
	if req.Temperature == nil && c.Temperature != nil {
		req.Temperature = c.Temperature
	}
	if req.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return req, nil
}

func (c *Client) marshalRequestBody(req *Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return data, nil
}

func (c *Client) createHTTPChatRequest(ctx context.Context, apiKey string, data []byte) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	return httpReq, nil
}

func (c *Client) parseGenerateResponse(model string, respBytes []byte) (*llm.GenerateResponse, error) {
	var apiResp Response
	if err := json.Unmarshal(respBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	llmResp := ToLLMSResponse(&apiResp)
	if llmResp.Model == "" {
		llmResp.Model = model
	}
	if len(llmResp.Choices) == 0 {
		return nil, fmt.Errorf("OpenAI API returned no choices")
	}
	if llmResp.Usage != nil && llmResp.Usage.TotalTokens > 0 {
		c.UsageListener.OnUsage(model, llmResp.Usage)
	}
	return llmResp, nil
}
