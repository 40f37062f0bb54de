package models

import (
	"time"
)

// AgeGroup classifies a session for prompt selection
type AgeGroup string

// Supported age groups
const (
	AgeGroup8To10  AgeGroup = "8-10"
	AgeGroup11To13 AgeGroup = "11-13"
	AgeGroup14To16 AgeGroup = "14-16"
)

// DefaultAgeGroup is used when the caller never supplied a classification
const DefaultAgeGroup = AgeGroup11To13

// Valid reports whether the age group is one of the supported values
func (g AgeGroup) Valid() bool {
	switch g {
	case AgeGroup8To10, AgeGroup11To13, AgeGroup14To16:
		return true
	}
	return false
}

// Session represents one end user's persistent identity, keyed by an
// opaque externally supplied token
type Session struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Token      string    `json:"session_id" gorm:"uniqueIndex"`
	AgeGroup   string    `json:"age_group"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
