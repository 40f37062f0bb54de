package repository

import (
	"techpal/backend/internal/models"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(message *models.Message) error
	ListByConversation(conversationID uint) ([]models.Message, error)
	Recent(conversationID uint, limit int) ([]models.Message, error)
	CountByConversation(conversationID uint) (int64, error)
}

type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// ListByConversation returns all messages in insertion order
func (r *GormMessageRepository) ListByConversation(conversationID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Find(&messages).Error
	return messages, err
}

// Recent returns the last limit messages of a conversation, oldest-first.
// A non-positive limit returns the full history.
func (r *GormMessageRepository) Recent(conversationID uint, limit int) ([]models.Message, error) {
	if limit <= 0 {
		return r.ListByConversation(conversationID)
	}

	var messages []models.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *GormMessageRepository) CountByConversation(conversationID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	return count, err
}
