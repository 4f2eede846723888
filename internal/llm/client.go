// Package llm talks to OpenAI-compatible chat completion endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/utils"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1"

// CompletionRequest is one system+user exchange.
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	AppTitle   string
	Referer    string
	MaxRetries int
	// Backoff is multiplied by the attempt number between retries.
	Backoff    time.Duration
	HTTPClient *http.Client
}

type openRouterClient struct {
	apiKey     string
	baseURL    string
	model      string
	appTitle   string
	referer    string
	maxRetries int
	backoff    time.Duration
	client     *http.Client
	logger     *utils.Logger
}

func NewOpenRouterClient(opts Options, logger *utils.Logger) Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		// The caller's context carries the real deadline.
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	if logger == nil {
		logger = utils.NewDiscardLogger()
	}

	return &openRouterClient{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		model:      opts.Model,
		appTitle:   opts.AppTitle,
		referer:    opts.Referer,
		maxRetries: opts.MaxRetries,
		backoff:    backoff,
		client:     httpClient,
		logger:     logger,
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []choice   `json:"choices"`
	Error   *errorBody `json:"error,omitempty"`
}

type choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// errorBody covers both OpenAI ({"code":"invalid_api_key"}) and OpenRouter
// ({"code":402}) error shapes.
type errorBody struct {
	Message string          `json:"message"`
	Type    string          `json:"type"`
	Code    json.RawMessage `json:"code"`
}

func (c *openRouterClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return withRetry(ctx, c.maxRetries, c.backoff, func(attempt int) (string, error) {
		content, err := c.complete(ctx, req)
		if err != nil && isRetryable(err) && attempt <= c.maxRetries {
			c.logger.Warn("LLM request failed, retrying", "attempt", attempt, "error", err)
		}
		return content, err
	})
}

func (c *openRouterClient) complete(ctx context.Context, req CompletionRequest) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: &req.Temperature,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if c.appTitle != "" {
		httpReq.Header.Set("X-Title", c.appTitle)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chatResponse
	decodeErr := json.Unmarshal(respBody, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("LLM API error", "status", resp.StatusCode, "body", truncate(string(respBody), 1000))
		return "", newProviderError(resp.StatusCode, parsed.Error)
	}

	if decodeErr != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", decodeErr)
	}

	if parsed.Error != nil {
		c.logger.Error("LLM API error in response body", "body", truncate(string(respBody), 1000))
		return "", newProviderError(resp.StatusCode, parsed.Error)
	}

	if len(parsed.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
