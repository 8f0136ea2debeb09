package config

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"geo_tracker/internal/models"
)

// InitDB opens the Postgres connection with retry and migrates the event
// schema. TranslateError is enabled so unique-constraint violations surface
// as gorm.ErrDuplicatedKey regardless of driver.
func InitDB(cfg Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode, cfg.DBTimezone,
	)

	db, err := connectWithRetry(dsn, 10, 2*time.Second)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("auto-migration failed: %w", err)
	}

	return db, nil
}

func connectWithRetry(dsn string, attempts int, delay time.Duration) (*gorm.DB, error) {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			return db, nil
		}
		lastErr = err
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("db connect failed after %d attempts: %w", attempts, lastErr)
}

// Migrate applies the schema for the seven event entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tracker{},
		&models.EventSession{},
		&models.Event{},
		&models.EventLocation{},
		&models.EventAnnotation{},
		&models.EventExtensionType{},
		&models.EventExtensionValue{},
	)
}
