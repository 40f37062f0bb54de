package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const openAIDefaultBaseURL = "https://api.openai.com/v1"

// OpenAIClient talks to the OpenAI Chat Completions API
type OpenAIClient struct {
	apiKey         string
	model          string
	maxTokens      int
	maxPromptChars int
	baseURL        string
	httpClient     *http.Client
}

// Ensure OpenAIClient implements the Client interface
var _ Client = (*OpenAIClient)(nil)

// openAIRequest is the minimal request shape for the Chat Completions endpoint
type openAIRequest struct {
	Model       string  `json:"model"`
	Messages    []Turn  `json:"messages"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature"`
}

// openAIResponse is the minimal response shape returned by the endpoint
type openAIResponse struct {
	Choices []struct {
		Message Turn `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAIOption customizes an OpenAIClient
type OpenAIOption func(*OpenAIClient)

// WithOpenAIBaseURL overrides the API base URL (used in tests)
func WithOpenAIBaseURL(baseURL string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithOpenAIHTTPClient overrides the HTTP client
func WithOpenAIHTTPClient(httpClient *http.Client) OpenAIOption {
	return func(c *OpenAIClient) {
		c.httpClient = httpClient
	}
}

// NewOpenAIClient creates a client for the OpenAI Chat Completions API
func NewOpenAIClient(apiKey, model string, maxTokens, maxPromptChars int, timeout time.Duration, opts ...OpenAIOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if model == "" {
		return nil, errors.New("openai: model must not be empty")
	}

	c := &OpenAIClient{
		apiKey:         apiKey,
		model:          model,
		maxTokens:      maxTokens,
		maxPromptChars: maxPromptChars,
		baseURL:        openAIDefaultBaseURL,
		httpClient:     &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the provider identifier
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Generate sends the turn sequence to the Chat Completions endpoint and
// returns the normalized result
func (c *OpenAIClient) Generate(ctx context.Context, turns []Turn) (*Result, error) {
	if err := validateTurns(turns, c.maxPromptChars); err != nil {
		return nil, err
	}

	body, err := json.Marshal(openAIRequest{
		Model:       c.model,
		Messages:    turns,
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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

	var payload openAIResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &ProviderError{Provider: c.Name(), Kind: KindMalformed, Err: err}
	}
	if len(payload.Choices) == 0 {
		return nil, &ProviderError{
			Provider: c.Name(),
			Kind:     KindMalformed,
			Err:      errors.New("no choices in response"),
		}
	}

	return &Result{
		Text: payload.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     payload.Usage.PromptTokens,
			CompletionTokens: payload.Usage.CompletionTokens,
			TotalTokens:      payload.Usage.TotalTokens,
		},
	}, nil
}

// transportErrorKind classifies a round-trip failure
func transportErrorKind(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindUnknown
}

// errorFromBody extracts the upstream error message when the body carries one
func errorFromBody(raw []byte, status int) error {
	var payload struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != nil && payload.Error.Message != "" {
		return fmt.Errorf("status %d: %s", status, payload.Error.Message)
	}
	return fmt.Errorf("unexpected status %d", status)
}
