package repository

import (
	"context"
	"time"

	"propertyhub/internal/property/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	message.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(message).Error
}

func (r *gormMessageRepository) FindByProperty(ctx context.Context, propertyID string) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := r.db.WithContext(ctx).
		Preload("Sender", func(db *gorm.DB) *gorm.DB {
			// Password hash and credential token stay in the database
			return db.Select("id", "name", "email")
		}).
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&messages).Error
	return messages, err
}
