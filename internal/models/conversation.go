package models

import (
	"time"
)

// Conversation represents an ordered, named thread of messages
// belonging to one session
type Conversation struct {
	ID         uint      `json:"-" gorm:"primaryKey"`
	ExternalID string    `json:"id" gorm:"uniqueIndex"`
	SessionID  uint      `json:"-" gorm:"index"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// maxTitleLength bounds conversation titles derived from the first message
const maxTitleLength = 50

// TitleFromMessage derives a conversation title from its first user message
func TitleFromMessage(text string) string {
	runes := []rune(text)
	if len(runes) > maxTitleLength {
		return string(runes[:maxTitleLength]) + "..."
	}
	return text
}
