package models

import (
	"time"
)

// Role tags a message with its author within a conversation
type Role string

// Message roles, matching the turn roles sent to LLM providers
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether the role is one of the supported values
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message represents one role-tagged unit of text within a conversation.
// Rows are immutable after creation and removed only when the owning
// conversation is deleted.
type Message struct {
	ID             uint      `json:"-" gorm:"primaryKey"`
	ExternalID     string    `json:"id" gorm:"index"`
	ConversationID uint      `json:"-" gorm:"index"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	TokensUsed     int       `json:"tokens_used"`
	Provider       string    `json:"provider,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
