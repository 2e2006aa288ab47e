// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smartstore-backend/internal/database"
)

// Open returns a migrated in-memory database that lives as long as t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         database.NewGormLogger(zap.NewNop(), logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("테스트 DB 열기 실패: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db: %v", err)
	}
	// every connection to ":memory:" is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("test db migration: %v", err)
	}
	return db
}
