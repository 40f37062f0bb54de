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
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicAPIVersion     = "2023-06-01"
)

// AnthropicClient talks to the Anthropic Messages API
type AnthropicClient struct {
	apiKey         string
	model          string
	maxTokens      int
	maxPromptChars int
	baseURL        string
	httpClient     *http.Client
}

// Ensure AnthropicClient implements the Client interface
var _ Client = (*AnthropicClient)(nil)

// anthropicRequest is the minimal request shape for the Messages endpoint.
// Unlike OpenAI, the system prompt travels in a dedicated field rather
// than as a leading message.
type anthropicRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	System      string  `json:"system,omitempty"`
	Messages    []Turn  `json:"messages"`
}

// anthropicResponse is the minimal response shape returned by the endpoint
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AnthropicOption customizes an AnthropicClient
type AnthropicOption func(*AnthropicClient)

// WithAnthropicBaseURL overrides the API base URL (used in tests)
func WithAnthropicBaseURL(baseURL string) AnthropicOption {
	return func(c *AnthropicClient) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithAnthropicHTTPClient overrides the HTTP client
func WithAnthropicHTTPClient(httpClient *http.Client) AnthropicOption {
	return func(c *AnthropicClient) {
		c.httpClient = httpClient
	}
}

// NewAnthropicClient creates a client for the Anthropic Messages API
func NewAnthropicClient(apiKey, model string, maxTokens, maxPromptChars int, timeout time.Duration, opts ...AnthropicOption) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if model == "" {
		return nil, errors.New("anthropic: model must not be empty")
	}

	c := &AnthropicClient{
		apiKey:         apiKey,
		model:          model,
		maxTokens:      maxTokens,
		maxPromptChars: maxPromptChars,
		baseURL:        anthropicDefaultBaseURL,
		httpClient:     &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the provider identifier
func (c *AnthropicClient) Name() string {
	return "anthropic"
}

// Generate sends the turn sequence to the Messages endpoint and returns
// the normalized result
func (c *AnthropicClient) Generate(ctx context.Context, turns []Turn) (*Result, error) {
	if err := validateTurns(turns, c.maxPromptChars); err != nil {
		return nil, err
	}

	// Split the leading system turn out of the message list
	system := ""
	messages := turns
	if turns[0].Role == "system" {
		system = turns[0].Content
		messages = turns[1:]
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
		System:      system,
		Messages:    messages,
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshal request: %w", err)
	}

	url := c.baseURL + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anthropic: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Kind: transportErrorKind(err), Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Kind: KindUnknown, Err: err}
	}

	if res.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider:   c.Name(),
			Kind:       kindFromStatus(res.StatusCode),
			StatusCode: res.StatusCode,
			Err:        errorFromBody(raw, res.StatusCode),
		}
	}

	var payload anthropicResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &ProviderError{Provider: c.Name(), Kind: KindMalformed, Err: err}
	}
	if len(payload.Content) == 0 {
		return nil, &ProviderError{
			Provider: c.Name(),
			Kind:     KindMalformed,
			Err:      errors.New("no content blocks in response"),
		}
	}

	var text strings.Builder
	for _, block := range payload.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &Result{
		Text: text.String(),
		Usage: Usage{
			PromptTokens:     payload.Usage.InputTokens,
			CompletionTokens: payload.Usage.OutputTokens,
			TotalTokens:      payload.Usage.InputTokens + payload.Usage.OutputTokens,
		},
	}, nil
}
