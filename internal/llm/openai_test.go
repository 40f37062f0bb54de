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

func newOpenAITestClient(t *testing.T, handler http.HandlerFunc) (*OpenAIClient, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewOpenAIClient("test-key", "gpt-3.5-turbo", 500, 24000, 5*time.Second,
		WithOpenAIBaseURL(server.URL))
	require.NoError(t, err)

	return client, server
}

func TestOpenAIGenerateSuccess(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq openAIRequest

	client, _ := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "A CPU executes instructions."}}],
			"usage": {"prompt_tokens": 40, "completion_tokens": 10, "total_tokens": 50}
		}`))
	})

	turns := []Turn{
		{Role: "system", Content: "You are helpful."},
		{Role: "user", Content: "What is a CPU?"},
	}
	result, err := client.Generate(context.Background(), turns)

	require.NoError(t, err)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-3.5-turbo", gotReq.Model)
	assert.Equal(t, turns, gotReq.Messages)
	assert.Equal(t, "A CPU executes instructions.", result.Text)
	assert.Equal(t, 50, result.Usage.TotalTokens)
}

func TestOpenAIGenerateErrorKinds(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   ErrorKind
	}{
		{"auth", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, KindAuth},
		{"forbidden", http.StatusForbidden, `{"error":{"message":"no access"}}`, KindAuth},
		{"rate limit", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, KindRateLimit},
		{"server error", http.StatusInternalServerError, `{}`, KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := client.Generate(context.Background(), []Turn{{Role: "user", Content: "hi"}})

			var providerErr *ProviderError
			require.ErrorAs(t, err, &providerErr)
			assert.Equal(t, tc.kind, providerErr.Kind)
			assert.Equal(t, "openai", providerErr.Provider)
			assert.Equal(t, tc.status, providerErr.StatusCode)
		})
	}
}

func TestOpenAIGenerateMalformedResponse(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		client, _ := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		})

		_, err := client.Generate(context.Background(), []Turn{{Role: "user", Content: "hi"}})

		var providerErr *ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.Equal(t, KindMalformed, providerErr.Kind)
	})

	t.Run("no choices", func(t *testing.T) {
		client, _ := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": []}`))
		})

		_, err := client.Generate(context.Background(), []Turn{{Role: "user", Content: "hi"}})

		var providerErr *ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.Equal(t, KindMalformed, providerErr.Kind)
	})
}

func TestOpenAIGenerateTimeout(t *testing.T) {
	client, _ := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, []Turn{{Role: "user", Content: "hi"}})

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, KindTimeout, providerErr.Kind)
}

func TestOpenAIGenerateValidatesBeforeNetwork(t *testing.T) {
	called := false
	client, _ := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoTurns)

	client2, err := NewOpenAIClient("test-key", "gpt-3.5-turbo", 500, 10, 5*time.Second)
	require.NoError(t, err)
	_, err = client2.Generate(context.Background(), []Turn{
		{Role: "user", Content: "this message is longer than ten characters"},
	})
	assert.ErrorIs(t, err, ErrPromptTooLong)

	assert.False(t, called, "validation failures must not reach the network")
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("", "gpt-3.5-turbo", 500, 0, time.Second)
	assert.Error(t, err)
}
