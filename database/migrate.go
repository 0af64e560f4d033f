package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"saaskit_backend/internal/config"
	"saaskit_backend/internal/logger"
	"saaskit_backend/internal/models"
)

var gormDB *gorm.DB

// ConnectGorm opens the shared GORM connection using the configured DSN.
func ConnectGorm() (*gorm.DB, error) {
	if gormDB != nil {
		return gormDB, nil
	}

	cfg := config.GetConfig()
	dsn := cfg.Database.DSN

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	gormDB = db
	return db, nil
}

// AutoMigrate migrates every model. Session ids and token hashes are
// primary/unique keys, so the uuid-ossp extension must exist for the
// BaseModel default to work.
func AutoMigrate() error {
	db, err := ConnectGorm()
	if err != nil {
		return err
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid-ossp extension: %w", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.EmailVerificationToken{},
		&models.PasswordResetToken{},
		&models.OtpCode{},
		&models.OAuthAccount{},
		&models.Organization{},
		&models.Membership{},
		&models.Invitation{},
		&models.Todo{},
		&models.Plan{},
		&models.Payment{},
		&models.Subscription{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}

	logger.Info("AutoMigrate completed")
	return nil
}
