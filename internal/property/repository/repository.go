package repository

import (
	"context"

	"propertyhub/internal/property/domain"
)

// PropertyRepository defines the interface for property data access
type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error

	// FindByID loads a property with its category and price
	FindByID(ctx context.Context, id string) (*domain.Property, error)

	// FindByOwner returns a page of the owner's properties, newest first,
	// with category, price and messages loaded.
	FindByOwner(ctx context.Context, userID uint, limit, offset int) ([]*domain.Property, int64, error)

	// FindPublished returns published properties, newest first. categoryID 0
	// means any category, limit 0 means no limit.
	FindPublished(ctx context.Context, categoryID uint, limit int) ([]*domain.Property, error)

	Update(ctx context.Context, property *domain.Property) error

	// Delete removes the property together with its messages
	Delete(ctx context.Context, id string) error
}

// CatalogRepository gives access to categories and price ranges
type CatalogRepository interface {
	Categories(ctx context.Context) ([]*domain.Category, error)
	Prices(ctx context.Context) ([]*domain.Price, error)
	FindCategory(ctx context.Context, id uint) (*domain.Category, error)
	FindPrice(ctx context.Context, id uint) (*domain.Price, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error

	// FindByProperty returns the messages of a property, newest first, with
	// the sender's name and email loaded.
	FindByProperty(ctx context.Context, propertyID string) ([]*domain.Message, error)
}
