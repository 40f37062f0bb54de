package service

import (
	"errors"

	"techpal/backend/internal/models"
	"techpal/backend/internal/repository"
	apperrors "techpal/backend/pkg/errors"

	"gorm.io/gorm"
)

// defaultListLimit bounds how many conversations a listing returns
const defaultListLimit = 50

// ConversationService exposes history operations over stored
// conversations and their messages
type ConversationService struct {
	sessions      repository.SessionRepository
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
}

// NewConversationService creates a conversation service
func NewConversationService(
	sessions repository.SessionRepository,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
) *ConversationService {
	return &ConversationService{
		sessions:      sessions,
		conversations: conversations,
		messages:      messages,
	}
}

// List returns conversation summaries for a session, most recently
// updated first. An unknown session yields an empty list.
func (s *ConversationService) List(sessionToken string) ([]models.ConversationSummary, error) {
	session, err := s.sessions.GetByToken(sessionToken)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.ConversationSummary{}, nil
	}
	if err != nil {
		return nil, persistenceError(err)
	}

	conversations, err := s.conversations.ListBySession(session.ID, defaultListLimit)
	if err != nil {
		return nil, persistenceError(err)
	}

	summaries := make([]models.ConversationSummary, len(conversations))
	for i, c := range conversations {
		summaries[i] = c.ToSummary()
	}
	return summaries, nil
}

// Get returns one conversation with its full ordered message list.
// Missing or unowned conversations yield a 404.
func (s *ConversationService) Get(sessionToken, conversationID string) (*models.ConversationDetail, error) {
	conversation, err := s.find(sessionToken, conversationID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByConversation(conversation.ID)
	if err != nil {
		return nil, persistenceError(err)
	}

	return &models.ConversationDetail{
		ID:        conversation.ExternalID,
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
		Messages:  messages,
	}, nil
}

// Delete removes a conversation and all of its messages
func (s *ConversationService) Delete(sessionToken, conversationID string) error {
	conversation, err := s.find(sessionToken, conversationID)
	if err != nil {
		return err
	}

	if err := s.conversations.Delete(conversation.ID); err != nil {
		return persistenceError(err)
	}
	return nil
}

// find resolves a conversation owned by the given session token
func (s *ConversationService) find(sessionToken, conversationID string) (*models.Conversation, error) {
	session, err := s.sessions.GetByToken(sessionToken)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("CONVERSATION_NOT_FOUND", "Conversation not found")
	}
	if err != nil {
		return nil, persistenceError(err)
	}

	conversation, err := s.conversations.GetByExternalID(session.ID, conversationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("CONVERSATION_NOT_FOUND", "Conversation not found")
	}
	if err != nil {
		return nil, persistenceError(err)
	}
	return conversation, nil
}
