// Package dbtest opens a migrated in-memory store for package tests.
package dbtest

import (
	"testing"

	"venueledger/internal/shared/database"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Open returns a fresh in-memory database with the production schema.
// A single connection keeps every statement on the same in-memory store,
// so code running inside a transaction must use the transaction handle.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(false))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
