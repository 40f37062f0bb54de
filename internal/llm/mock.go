package llm

import (
	"context"
	"fmt"
)

// MockClient is a canned-response implementation of Client for testing
type MockClient struct {
	// Reply overrides the generated text when non-empty
	Reply string
	// Err is returned instead of a result when set
	Err error
	// Calls records every turn sequence passed to Generate
	Calls [][]Turn
}

// Ensure MockClient implements the Client interface
var _ Client = (*MockClient)(nil)

// NewMockClient creates a new mock client
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Name returns the provider identifier
func (m *MockClient) Name() string {
	return "mock"
}

// Generate returns the configured reply or error
func (m *MockClient) Generate(ctx context.Context, turns []Turn) (*Result, error) {
	if err := validateTurns(turns, 0); err != nil {
		return nil, err
	}
	m.Calls = append(m.Calls, turns)

	if m.Err != nil {
		return nil, m.Err
	}

	text := m.Reply
	if text == "" {
		last := turns[len(turns)-1]
		text = fmt.Sprintf("Echo: %s", last.Content)
	}

	prompt := 0
	for _, t := range turns {
		prompt += len(t.Content) / 4
	}

	return &Result{
		Text: text,
		Usage: Usage{
			PromptTokens:     prompt,
			CompletionTokens: len(text) / 4,
			TotalTokens:      prompt + len(text)/4,
		},
	}, nil
}
