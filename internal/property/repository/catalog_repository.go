package repository

import (
	"context"
	"errors"

	"propertyhub/internal/property/domain"

	"gorm.io/gorm"
)

type gormCatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &gormCatalogRepository{db: db}
}

func (r *gormCatalogRepository) Categories(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error
	return categories, err
}

func (r *gormCatalogRepository) Prices(ctx context.Context) ([]*domain.Price, error) {
	var prices []*domain.Price
	err := r.db.WithContext(ctx).Order("id ASC").Find(&prices).Error
	return prices, err
}

func (r *gormCatalogRepository) FindCategory(ctx context.Context, id uint) (*domain.Category, error) {
	var category domain.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *gormCatalogRepository) FindPrice(ctx context.Context, id uint) (*domain.Price, error) {
	var price domain.Price
	if err := r.db.WithContext(ctx).First(&price, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &price, nil
}
