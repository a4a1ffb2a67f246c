package database

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectTestDB returns a fresh in-memory database with all tables
// migrated. Each call is fully isolated.
func ConnectTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named in-memory database with shared cache, so the pooled
	// connections all see the same schema; the name keeps tests isolated
	// from one another.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := MigrateModels(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}
