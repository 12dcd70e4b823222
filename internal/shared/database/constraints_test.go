package database

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestConstraintStatementsByDialect(t *testing.T) {
	hasPrefixIndex := func(statements []string) bool {
		for _, stmt := range statements {
			if strings.Contains(stmt, "varchar_pattern_ops") {
				return true
			}
		}
		return false
	}

	if !hasPrefixIndex(constraintStatements("postgres")) {
		t.Fatal("postgres must get the code prefix index")
	}
	if hasPrefixIndex(constraintStatements("sqlite")) {
		t.Fatal("sqlite cannot take operator classes")
	}
	if len(constraintStatements("sqlite")) != len(indexStatements) {
		t.Fatal("shared statements must not be modified")
	}
}

func TestMigrateCreatesUniqueHolderIndexes(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig(false))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// a second run is a no-op
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	var names []string
	if err := db.Raw("SELECT name FROM sqlite_master WHERE type = 'index'").Scan(&names).Error; err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	found := map[string]bool{}
	for _, name := range names {
		found[name] = true
	}
	for _, want := range []string{"uniq_reservations_active_table", "uniq_ticket_checkins_item_slot", "idx_ticket_codes_live"} {
		if !found[want] {
			t.Errorf("index %s missing, have %v", want, names)
		}
	}
	if found["idx_reservations_active_table"] {
		t.Error("old non-unique holder index must be dropped")
	}
}
