// Package db handles schema migration and seed data.
package db

import (
	"fmt"
	"time"

	"github.com/andriwij/planning-app/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the PostgreSQL connection, retrying a few times so the app
// can start before the database container is ready.
func Connect(dsn string) (*gorm.DB, error) {
	var conn *gorm.DB
	var err error
	for i := 0; i < 5; i++ {
		conn, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			return conn, nil
		}
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("connect database: %w", err)
}

// Migrate applies GORM auto-migrations for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Planning{},
		&models.PlanningItem{},
		&models.PlanningItemDetail{},
		&models.PlanningRemark{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Seed inserts default catalog products when the catalog is empty.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return nil
	}
	defaults := []models.Product{
		{Name: "Event Production"},
		{Name: "Lighting"},
		{Name: "Multimedia"},
		{Name: "Sound System"},
		{Name: "Stage & Rigging"},
	}
	if err := db.Create(&defaults).Error; err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	return nil
}
