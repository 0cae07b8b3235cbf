package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a master-data catalog entry. Planning items reference products
// by name, not by key, so renaming a product does not rewrite history.
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:500" json:"description,omitempty"`
}

// ProductNames returns all catalog product names in alphabetical order.
// The list drives both the spreadsheet header columns and per-row totals.
func ProductNames(db *gorm.DB) ([]string, error) {
	var names []string
	if err := db.Model(&Product{}).Order("name asc").Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}
