package database

import (
	"fmt"

	"gorm.io/gorm"
)

// partial and unique indexes backing the hot ledger queries; the syntax is shared by
// PostgreSQL and SQLite
var indexStatements = []string{
	// one active holder per table and event; backs the conditional
	// assignment update when two transactions pass NOT EXISTS together.
	// The earlier non-unique index under the old name is dropped first.
	`DROP INDEX IF EXISTS idx_reservations_active_table`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_reservations_active_table
		ON reservations (assigned_table_id, event_id)
		WHERE status IN ('pending', 'confirmed', 'seated') AND assigned_table_id IS NOT NULL`,

	// day closure cascade over reservations
	`CREATE INDEX IF NOT EXISTS idx_reservations_reserved_at_status
		ON reservations (reserved_at, status)`,

	// open seating sessions per table
	`CREATE INDEX IF NOT EXISTS idx_seating_sessions_open
		ON seating_sessions (table_id, started_at)
		WHERE status = 'open'`,

	// live codes per order item for event capacity counts
	`CREATE INDEX IF NOT EXISTS idx_ticket_codes_live
		ON ticket_codes (order_item_id)
		WHERE status <> 'cancelled'`,

	// check-in slots are numbered MAX+1 per item; concurrent first scans
	// of two codes must not share a slot
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_ticket_checkins_item_slot
		ON ticket_checkins (order_item_id, slot_no)`,

	// unsettled ticket orders for closure
	`CREATE INDEX IF NOT EXISTS idx_ticket_orders_open
		ON ticket_orders (created_at)
		WHERE status IN ('pending', 'confirmed')`,

	`CREATE INDEX IF NOT EXISTS idx_fnb_orders_open
		ON fnb_orders (ordered_at)
		WHERE status NOT IN ('completed', 'cancelled')`,
}

// operator classes are PostgreSQL only
var postgresIndexStatements = []string{
	// code counter lookups by prefix (code LIKE 'JAZ%'); the plain unique
	// index cannot serve LIKE outside the C collation
	`CREATE INDEX IF NOT EXISTS idx_ticket_codes_prefix
		ON ticket_codes (code varchar_pattern_ops)`,
}

func constraintStatements(dialect string) []string {
	statements := append([]string(nil), indexStatements...)
	if dialect == "postgres" {
		statements = append(statements, postgresIndexStatements...)
	}
	return statements
}

// MigrateConstraints adds indexes AutoMigrate cannot express
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements(db.Dialector.Name()) {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
