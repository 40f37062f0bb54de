// Package llm provides an abstraction over external text-generation
// providers. Two implementations exist, one per vendor, both normalizing
// to the same Result shape and error taxonomy.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Turn is one role-tagged text unit sent to or received from a provider
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage carries token accounting reported by a provider
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is the normalized outcome of a generation call, identical in
// shape regardless of which vendor answered
type Result struct {
	Text  string
	Usage Usage
}

// Client defines the capability of generating a reply from an ordered
// turn sequence
type Client interface {
	// Generate performs exactly one outbound call and returns the
	// normalized result. Failures surface as *ProviderError; there is
	// no internal retry.
	Generate(ctx context.Context, turns []Turn) (*Result, error)

	// Name returns the provider identifier
	Name() string
}

// Input validation errors, raised before any network call
var (
	ErrNoTurns       = errors.New("llm: turn sequence is empty")
	ErrPromptTooLong = errors.New("llm: turn sequence exceeds maximum prompt size")
)

// ErrorKind tags a ProviderError so callers can choose a user-facing
// message per kind
type ErrorKind string

const (
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindMalformed ErrorKind = "malformed"
	KindTimeout   ErrorKind = "timeout"
	KindUnknown   ErrorKind = "unknown"
)

// ProviderError represents a failed call to a provider
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: provider error (%s)", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: provider error (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// kindFromStatus maps an upstream HTTP status to an error kind
func kindFromStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return KindTimeout
	default:
		return KindUnknown
	}
}

// validateTurns rejects empty or oversized turn sequences before the
// network call. maxChars <= 0 disables the size check.
func validateTurns(turns []Turn, maxChars int) error {
	if len(turns) == 0 {
		return ErrNoTurns
	}
	if maxChars <= 0 {
		return nil
	}
	total := 0
	for _, t := range turns {
		total += len(t.Content)
		if total > maxChars {
			return ErrPromptTooLong
		}
	}
	return nil
}
