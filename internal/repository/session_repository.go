package repository

import (
	"time"

	"techpal/backend/internal/models"

	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(session *models.Session) error
	GetByToken(token string) (*models.Session, error)
	Save(session *models.Session) error
}

type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Create(session *models.Session) error {
	if session.LastSeenAt.IsZero() {
		session.LastSeenAt = time.Now()
	}
	return r.db.Create(session).Error
}

func (r *GormSessionRepository) GetByToken(token string) (*models.Session, error) {
	var session models.Session
	err := r.db.Where("token = ?", token).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *GormSessionRepository) Save(session *models.Session) error {
	return r.db.Save(session).Error
}
