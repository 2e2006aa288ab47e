package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smartstore-backend/internal/config"
	"smartstore-backend/internal/models"
)

// Open connects to Postgres and migrates the schema.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger:         NewGormLogger(log, logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("데이터베이스 연결 실패: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("데이터베이스 연결 및 마이그레이션 완료")
	return db, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.ApplicationRecord{},
		&models.BranchAuth{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate 실패: %w", err)
	}
	return nil
}
