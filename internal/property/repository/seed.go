package repository

import (
	"context"

	"propertyhub/internal/property/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedCategories = []string{
	"House", "Apartment", "Warehouse", "Land", "Cabin",
}

var seedPrices = []string{
	"0 - $10,000 USD",
	"$10,000 - $30,000 USD",
	"$30,000 - $50,000 USD",
	"$50,000 - $75,000 USD",
	"$75,000 - $100,000 USD",
	"$100,000 - $150,000 USD",
	"$150,000 - $200,000 USD",
	"$200,000 - $300,000 USD",
	"$300,000 - $500,000 USD",
	"+ $500,000 USD",
}

// SeedCatalog inserts the default categories and price ranges. Existing
// rows are left untouched.
func SeedCatalog(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range seedCategories {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&domain.Category{Name: name}).Error; err != nil {
				return err
			}
		}
		for _, name := range seedPrices {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&domain.Price{Name: name}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DropTables removes every table owned by this package.
func DropTables(db *gorm.DB) error {
	return db.Migrator().DropTable(&domain.Message{}, &domain.Property{}, &domain.Price{}, &domain.Category{})
}
