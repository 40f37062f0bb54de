package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"techpal/backend/internal/llm"
	"techpal/backend/internal/models"
	"techpal/backend/internal/repository"
	"techpal/backend/internal/safety"
	"techpal/backend/internal/service"
	apperrors "techpal/backend/pkg/errors"
	"techpal/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type apiFixture struct {
	router *gin.Engine
	client *llm.MockClient
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Session{}, &models.Conversation{}, &models.Message{}))

	sessions := repository.NewGormSessionRepository(db)
	conversations := repository.NewGormConversationRepository(db)
	messages := repository.NewGormMessageRepository(db)
	client := llm.NewMockClient()
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})

	chatService := service.NewChatService(
		sessions, conversations, messages, client, safety.NewDefaultFilter(),
		service.ChatServiceConfig{
			HistoryWindow:    20,
			MaxMessageLength: 1000,
			CallTimeout:      5 * time.Second,
		}, log)
	conversationService := service.NewConversationService(sessions, conversations, messages)

	router := gin.New()
	router.Use(apperrors.ErrorHandler())
	NewChatController(chatService).RegisterRoutes(router)
	NewConversationController(conversationService).RegisterRoutes(router)

	return &apiFixture{router: router, client: client}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestChatEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.client.Reply = "Great question! A robot is a machine that follows a program."

	w := f.do(t, http.MethodPost, "/chat", gin.H{
		"message":    "What is a robot?",
		"session_id": "s1",
		"age_group":  "8-10",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, f.client.Reply, resp.Reply)
	assert.Equal(t, "s1", resp.SessionID)
	assert.NotEmpty(t, resp.ConversationID)
	assert.False(t, resp.Filtered)
}

func TestChatEndpointValidation(t *testing.T) {
	f := newAPIFixture(t)

	cases := []struct {
		name string
		body gin.H
		code string
	}{
		{"missing session_id", gin.H{"message": "hi"}, "INVALID_REQUEST"},
		{"missing message", gin.H{"session_id": "s1"}, "INVALID_REQUEST"},
		{"blank message", gin.H{"message": "   ", "session_id": "s1"}, "EMPTY_MESSAGE"},
		{"bad age group", gin.H{"message": "hi", "session_id": "s1", "age_group": "adult"}, "INVALID_AGE_GROUP"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/chat", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.code, errorCode(t, w))
		})
	}
}

func TestChatEndpointUnknownConversation(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/chat", gin.H{
		"message":         "hi",
		"session_id":      "s1",
		"conversation_id": "missing",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CONVERSATION_NOT_FOUND", errorCode(t, w))
}

func TestChatEndpointProviderErrors(t *testing.T) {
	cases := []struct {
		kind   llm.ErrorKind
		status int
		code   string
	}{
		{llm.KindTimeout, http.StatusGatewayTimeout, "PROVIDER_TIMEOUT"},
		{llm.KindAuth, http.StatusBadGateway, "PROVIDER_AUTH"},
		{llm.KindRateLimit, http.StatusBadGateway, "PROVIDER_RATE_LIMITED"},
		{llm.KindMalformed, http.StatusBadGateway, "PROVIDER_MALFORMED"},
		{llm.KindUnknown, http.StatusBadGateway, "PROVIDER_ERROR"},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			f := newAPIFixture(t)
			f.client.Err = &llm.ProviderError{Provider: "mock", Kind: tc.kind}

			w := f.do(t, http.MethodPost, "/chat", gin.H{
				"message":    "hi",
				"session_id": "s1",
			})
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, errorCode(t, w))
		})
	}
}

func TestConversationEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	// Seed two conversations through the chat endpoint
	var conversationIDs []string
	for i := 0; i < 2; i++ {
		w := f.do(t, http.MethodPost, "/chat", gin.H{
			"message":    fmt.Sprintf("question %d", i),
			"session_id": "s1",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp models.ChatResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		conversationIDs = append(conversationIDs, resp.ConversationID)
	}

	// List shows both, newest activity first
	w := f.do(t, http.MethodGet, "/conversations/s1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listBody struct {
		Conversations []models.ConversationSummary `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listBody))
	require.Len(t, listBody.Conversations, 2)
	assert.Equal(t, conversationIDs[1], listBody.Conversations[0].ID)

	// Detail carries the full exchange
	w = f.do(t, http.MethodGet, "/conversations/s1/"+conversationIDs[0], nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail models.ConversationDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Len(t, detail.Messages, 2)
	assert.Equal(t, "question 0", detail.Messages[0].Content)

	// Delete removes the conversation and a second fetch 404s
	w = f.do(t, http.MethodDelete, "/conversations/s1/"+conversationIDs[0], nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/conversations/s1/"+conversationIDs[0], nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CONVERSATION_NOT_FOUND", errorCode(t, w))

	// The other conversation is untouched
	w = f.do(t, http.MethodGet, "/conversations/s1/"+conversationIDs[1], nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConversationEndpointOwnership(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/chat", gin.H{
		"message":    "hello",
		"session_id": "owner",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// Another session cannot read or delete it
	w = f.do(t, http.MethodGet, "/conversations/intruder/"+resp.ConversationID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodDelete, "/conversations/intruder/"+resp.ConversationID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConversationListUnknownSession(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/conversations/nobody", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listBody struct {
		Conversations []models.ConversationSummary `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listBody))
	assert.Empty(t, listBody.Conversations)
}
