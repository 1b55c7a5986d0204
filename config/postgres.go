package config

import (
	"errors"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgres opens the gorm connection. The caller owns the handle;
// nothing is stashed in package state.
func NewPostgres() (*gorm.DB, error) {
	uri := os.Getenv("POSTGRES_URI")
	if uri == "" {
		uri = os.Getenv("DATABASE_URL")
	}
	if uri == "" {
		return nil, errors.New("POSTGRES_URI (or DATABASE_URL) environment variable is not set")
	}

	db, err := gorm.Open(postgres.Open(uri), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection Pooling settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
