package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"techpal/backend/internal/llm"
	"techpal/backend/internal/models"
	"techpal/backend/internal/prompt"
	"techpal/backend/internal/repository"
	"techpal/backend/internal/safety"
	apperrors "techpal/backend/pkg/errors"
	"techpal/backend/pkg/logger"
	"techpal/backend/pkg/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatService drives one chat turn: resolve the session, load history,
// build the prompt, call the provider, filter, persist, respond.
type ChatService struct {
	sessions      repository.SessionRepository
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	client        llm.Client
	filter        *safety.Filter
	builder       *prompt.Builder
	maxMessageLen int
	callTimeout   time.Duration
	logger        *logger.Logger
}

// ChatServiceConfig carries the behavior knobs for a ChatService
type ChatServiceConfig struct {
	HistoryWindow    int
	MaxMessageLength int
	CallTimeout      time.Duration
}

// NewChatService creates a chat service
func NewChatService(
	sessions repository.SessionRepository,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	client llm.Client,
	filter *safety.Filter,
	cfg ChatServiceConfig,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		sessions:      sessions,
		conversations: conversations,
		messages:      messages,
		client:        client,
		filter:        filter,
		builder:       prompt.NewBuilder(cfg.HistoryWindow),
		maxMessageLen: cfg.MaxMessageLength,
		callTimeout:   cfg.CallTimeout,
		logger:        log,
	}
}

// Chat processes one chat request. On success exactly two message rows
// are persisted: the user text and the filtered assistant reply. When
// the provider call fails the user row is kept and the assistant row is
// never written. Retried identical requests create duplicate history
// entries; there is no dedup.
func (s *ChatService) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	session, err := s.resolveSession(req.SessionID, req.AgeGroup)
	if err != nil {
		return nil, err
	}

	conversation, err := s.resolveConversation(session, req)
	if err != nil {
		return nil, err
	}

	// Snapshot history before appending; the builder adds the new user
	// text as the final turn itself
	history, err := s.messages.Recent(conversation.ID, s.builder.Window)
	if err != nil {
		return nil, persistenceError(err)
	}

	userMessage := &models.Message{
		ExternalID:     uuid.NewString(),
		ConversationID: conversation.ID,
		Role:           string(models.RoleUser),
		Content:        req.Message,
	}
	if err := s.messages.Create(userMessage); err != nil {
		return nil, persistenceError(err)
	}

	turns := s.builder.Build(models.AgeGroup(session.AgeGroup), history, req.Message)

	callCtx := ctx
	if s.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}

	result, err := s.client.Generate(callCtx, turns)
	if err != nil {
		observability.ProviderRequests.WithLabelValues(s.client.Name(), "error").Inc()
		// The user turn stays persisted; only the assistant turn is skipped
		s.logger.LogError(err, "provider call failed",
			"provider", s.client.Name(),
			"conversation_id", conversation.ExternalID,
		)
		return nil, err
	}
	observability.ProviderRequests.WithLabelValues(s.client.Name(), "success").Inc()

	reply, filtered := s.filter.Apply(result.Text)
	if filtered {
		observability.FilteredReplies.Inc()
		s.logger.Warn("assistant reply replaced by safety filter",
			"conversation_id", conversation.ExternalID,
		)
	}

	assistantMessage := &models.Message{
		ExternalID:     uuid.NewString(),
		ConversationID: conversation.ID,
		Role:           string(models.RoleAssistant),
		Content:        reply,
		TokensUsed:     result.Usage.TotalTokens,
		Provider:       s.client.Name(),
	}
	if err := s.messages.Create(assistantMessage); err != nil {
		return nil, persistenceError(err)
	}

	if err := s.conversations.Touch(conversation.ID); err != nil {
		s.logger.LogError(err, "failed to touch conversation",
			"conversation_id", conversation.ExternalID,
		)
	}

	return &models.ChatResponse{
		Reply:          reply,
		ConversationID: conversation.ExternalID,
		SessionID:      session.Token,
		Filtered:       filtered,
		TokensUsed:     result.Usage.TotalTokens,
		Provider:       s.client.Name(),
	}, nil
}

// validate rejects bad input before any store or network access
func (s *ChatService) validate(req models.ChatRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return apperrors.NewBadRequestError("EMPTY_MESSAGE", "Message must not be empty")
	}
	if s.maxMessageLen > 0 && len(req.Message) > s.maxMessageLen {
		return apperrors.NewBadRequestError("MESSAGE_TOO_LONG", "Message exceeds the maximum allowed length")
	}
	if req.AgeGroup != "" && !models.AgeGroup(req.AgeGroup).Valid() {
		return apperrors.NewBadRequestError("INVALID_AGE_GROUP", "Age group must be one of 8-10, 11-13, 14-16")
	}
	return nil
}

// resolveSession loads the session by its opaque token, creating it on
// first sight. A supplied age group overwrites the stored one silently,
// even when conversations already exist under the old classification.
func (s *ChatService) resolveSession(token, ageGroup string) (*models.Session, error) {
	session, err := s.sessions.GetByToken(token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		group := ageGroup
		if group == "" {
			group = string(models.DefaultAgeGroup)
		}
		session = &models.Session{
			Token:      token,
			AgeGroup:   group,
			LastSeenAt: time.Now(),
		}
		if err := s.sessions.Create(session); err != nil {
			return nil, persistenceError(err)
		}
		return session, nil
	}
	if err != nil {
		return nil, persistenceError(err)
	}

	session.LastSeenAt = time.Now()
	if ageGroup != "" {
		session.AgeGroup = ageGroup
	}
	if err := s.sessions.Save(session); err != nil {
		return nil, persistenceError(err)
	}
	return session, nil
}

// resolveConversation loads the referenced conversation or creates a
// new one titled after the first message
func (s *ChatService) resolveConversation(session *models.Session, req models.ChatRequest) (*models.Conversation, error) {
	if req.ConversationID != "" {
		conversation, err := s.conversations.GetByExternalID(session.ID, req.ConversationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("CONVERSATION_NOT_FOUND", "Conversation not found")
		}
		if err != nil {
			return nil, persistenceError(err)
		}
		return conversation, nil
	}

	conversation := &models.Conversation{
		ExternalID: uuid.NewString(),
		SessionID:  session.ID,
		Title:      models.TitleFromMessage(req.Message),
	}
	if err := s.conversations.Create(conversation); err != nil {
		return nil, persistenceError(err)
	}
	return conversation, nil
}

// persistenceError wraps a store failure as a 500
func persistenceError(err error) error {
	return apperrors.NewInternalServerError("PERSISTENCE_ERROR", "Storage operation failed").
		WithDetails(err.Error())
}
