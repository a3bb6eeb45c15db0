package domain

import (
	"time"

	authdomain "propertyhub/internal/auth/domain"
)

// Property is a listing published by a seller
type Property struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string    `json:"title" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Bedrooms    int       `json:"bedrooms"`
	Parking     int       `json:"parking"`
	Bathrooms   int       `json:"bathrooms"`
	Street      string    `json:"street" gorm:"size:60"`
	Lat         string    `json:"lat" gorm:"size:32;not null"`
	Lng         string    `json:"lng" gorm:"size:32;not null"`
	Image       string    `json:"image"`
	Published   bool      `json:"published" gorm:"default:false;index"`
	PriceID     uint      `json:"price_id" gorm:"index"`
	Price       *Price    `json:"price,omitempty" gorm:"foreignKey:PriceID"`
	CategoryID  uint      `json:"category_id" gorm:"index"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	// UserID is the owner, fixed at creation
	UserID    uint      `json:"-" gorm:"index;not null"`
	Messages  []Message `json:"-" gorm:"foreignKey:PropertyID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:30;not null;uniqueIndex"`
}

// Price is a price range such as "$10,000 - $20,000"
type Price struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:30;not null;uniqueIndex"`
}

// Message is an inquiry sent to the seller of a property. UserID is nil
// for anonymous visitors.
type Message struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	Body       string           `json:"body" gorm:"size:200;not null"`
	PropertyID string           `json:"property_id" gorm:"type:varchar(36);index;not null"`
	UserID     *uint            `json:"-" gorm:"index"`
	Sender     *authdomain.User `json:"sender,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt  time.Time        `json:"created_at"`
}
