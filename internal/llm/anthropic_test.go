package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnthropicTestClient(t *testing.T, handler http.HandlerFunc) *AnthropicClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewAnthropicClient("test-key", "claude-3-haiku-20240307", 500, 24000, 5*time.Second,
		WithAnthropicBaseURL(server.URL))
	require.NoError(t, err)

	return client
}

func TestAnthropicGenerateSuccess(t *testing.T) {
	var gotPath, gotKey, gotVersion string
	var gotReq anthropicRequest

	client := newAnthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"content": [{"type": "text", "text": "RAM is short-term memory."}],
			"usage": {"input_tokens": 30, "output_tokens": 8}
		}`))
	})

	turns := []Turn{
		{Role: "system", Content: "You are helpful."},
		{Role: "user", Content: "What is RAM?"},
	}
	result, err := client.Generate(context.Background(), turns)

	require.NoError(t, err)
	assert.Equal(t, "/messages", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, anthropicAPIVersion, gotVersion)

	// The system turn moves to the dedicated field, not the message list
	assert.Equal(t, "You are helpful.", gotReq.System)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)

	assert.Equal(t, "RAM is short-term memory.", result.Text)
	assert.Equal(t, 30, result.Usage.PromptTokens)
	assert.Equal(t, 8, result.Usage.CompletionTokens)
	assert.Equal(t, 38, result.Usage.TotalTokens)
}

func TestAnthropicGenerateJoinsTextBlocks(t *testing.T) {
	client := newAnthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"content": [
				{"type": "text", "text": "Part one. "},
				{"type": "text", "text": "Part two."}
			],
			"usage": {"input_tokens": 5, "output_tokens": 5}
		}`))
	})

	result, err := client.Generate(context.Background(), []Turn{{Role: "user", Content: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "Part one. Part two.", result.Text)
}

func TestAnthropicGenerateErrorKinds(t *testing.T) {
	cases := []struct {
		name   string
		status int
		kind   ErrorKind
	}{
		{"auth", http.StatusUnauthorized, KindAuth},
		{"rate limit", http.StatusTooManyRequests, KindRateLimit},
		{"server error", http.StatusInternalServerError, KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newAnthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"error":{"message":"upstream says no"}}`))
			})

			_, err := client.Generate(context.Background(), []Turn{{Role: "user", Content: "hi"}})

			var providerErr *ProviderError
			require.ErrorAs(t, err, &providerErr)
			assert.Equal(t, tc.kind, providerErr.Kind)
			assert.Equal(t, "anthropic", providerErr.Provider)
		})
	}
}

func TestAnthropicGenerateMalformedResponse(t *testing.T) {
	client := newAnthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": []}`))
	})

	_, err := client.Generate(context.Background(), []Turn{{Role: "user", Content: "hi"}})

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, KindMalformed, providerErr.Kind)
}

func TestAnthropicGenerateValidatesBeforeNetwork(t *testing.T) {
	called := false
	client := newAnthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoTurns)
	assert.False(t, called)
}
