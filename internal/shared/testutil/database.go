package testutil

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/changhyeonkim/gorm-timestamp/internal/model"
	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp/gormplugin"
)

// TestNow is the instant the fake clock of SetupTestDB starts at
var TestNow = time.Date(2024, 3, 9, 14, 30, 15, 0, time.UTC)

// SetupTestDB creates an in-memory SQLite database for testing
// with the timestamp plugin reading a fake clock set to TestNow
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, _ := SetupTestDBWithClock(t, clockwork.NewFakeClockAt(TestNow))
	return db
}

// SetupTestDBWithClock is SetupTestDB with a caller supplied clock
// It returns the registered plugin for marker assertions
func SetupTestDBWithClock(t *testing.T, clock clockwork.Clock) (*gorm.DB, *gormplugin.Plugin) {
	t.Helper()

	// Create in-memory SQLite database
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent), // Silent mode for tests
		NowFunc: clock.Now,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	// every :memory: connection is a separate database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	plugin := gormplugin.New(gormplugin.WithClock(clock))
	if err := db.Use(plugin); err != nil {
		t.Fatalf("Failed to register timestamp plugin: %v", err)
	}

	// Auto-migrate all models
	if err := db.AutoMigrate(model.Models()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db, plugin
}

// CleanupTestDB cleans up the test database
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("Failed to get database instance: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		t.Errorf("Failed to close database: %v", err)
	}
}
