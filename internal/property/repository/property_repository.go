package repository

import (
	"context"
	"errors"
	"time"

	"propertyhub/internal/property/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormPropertyRepository implements PropertyRepository using GORM
type gormPropertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new GORM-based PropertyRepository
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &gormPropertyRepository{db: db}
}

// Migrate creates or updates the tables owned by this package. The users
// table must already exist.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Category{}, &domain.Price{}, &domain.Property{}, &domain.Message{})
}

func (r *gormPropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	if property.ID == "" {
		property.ID = uuid.New().String()
	}
	property.CreatedAt = time.Now()
	property.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(property).Error
}

func (r *gormPropertyRepository) FindByID(ctx context.Context, id string) (*domain.Property, error) {
	var property domain.Property
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Price").
		Where("id = ?", id).
		First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

func (r *gormPropertyRepository) FindByOwner(ctx context.Context, userID uint, limit, offset int) ([]*domain.Property, int64, error) {
	var properties []*domain.Property
	var total int64

	owned := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.Property{}).Where("user_id = ?", userID)
	}

	if err := owned().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := owned().
		Preload("Category").
		Preload("Price").
		Preload("Messages").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&properties).Error

	return properties, total, err
}

func (r *gormPropertyRepository) FindPublished(ctx context.Context, categoryID uint, limit int) ([]*domain.Property, error) {
	var properties []*domain.Property

	query := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Price").
		Where("published = ?", true)
	if categoryID != 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Order("created_at DESC").Find(&properties).Error
	return properties, err
}

func (r *gormPropertyRepository) Update(ctx context.Context, property *domain.Property) error {
	property.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(property).Error
}

func (r *gormPropertyRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Property{}).Error
	})
}
