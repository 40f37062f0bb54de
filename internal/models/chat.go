package models

import (
	"time"
)

// ChatRequest is the request structure for the chat endpoint
type ChatRequest struct {
	Message        string `json:"message" binding:"required"`
	SessionID      string `json:"session_id" binding:"required"`
	ConversationID string `json:"conversation_id,omitempty"`
	AgeGroup       string `json:"age_group,omitempty"`
}

// ChatResponse is the response structure for the chat endpoint
type ChatResponse struct {
	Reply          string `json:"reply"`
	ConversationID string `json:"conversation_id"`
	SessionID      string `json:"session_id"`
	Filtered       bool   `json:"filtered"`
	TokensUsed     int    `json:"tokens_used"`
	Provider       string `json:"provider"`
}

// ConversationSummary is the list-view projection of a conversation
type ConversationSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationDetail is a conversation with its full ordered message list
type ConversationDetail struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages"`
}

// ToSummary converts a Conversation model to its list projection
func (c *Conversation) ToSummary() ConversationSummary {
	return ConversationSummary{
		ID:        c.ExternalID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
