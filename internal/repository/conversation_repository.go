package repository

import (
	"time"

	"techpal/backend/internal/models"

	"gorm.io/gorm"
)

type ConversationRepository interface {
	Create(conversation *models.Conversation) error
	GetByExternalID(sessionID uint, externalID string) (*models.Conversation, error)
	ListBySession(sessionID uint, limit int) ([]models.Conversation, error)
	Touch(id uint) error
	Delete(id uint) error
}

type GormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

func (r *GormConversationRepository) Create(conversation *models.Conversation) error {
	return r.db.Create(conversation).Error
}

func (r *GormConversationRepository) GetByExternalID(sessionID uint, externalID string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Where("session_id = ? AND external_id = ?", sessionID, externalID).
		First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *GormConversationRepository) ListBySession(sessionID uint, limit int) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.Where("session_id = ?", sessionID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&conversations).Error
	return conversations, err
}

func (r *GormConversationRepository) Touch(id uint) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

// Delete removes a conversation and all of its messages in one transaction
func (r *GormConversationRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Conversation{}, id).Error
	})
}
