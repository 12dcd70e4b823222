package database

import (
	"fmt"

	"venueledger/internal/closures"
	"venueledger/internal/events"
	"venueledger/internal/fnb"
	"venueledger/internal/sessions"
	"venueledger/internal/tables"
	"venueledger/internal/tickets"
	"venueledger/internal/users"

	"gorm.io/gorm"
)

// Migrate creates the schema once at startup. Request paths never touch DDL.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&users.User{},
		&events.Event{},
		&tickets.Order{},
		&tickets.OrderItem{},
		&tickets.Code{},
		&tickets.CheckIn{},
		&tables.Table{},
		&tables.Reservation{},
		&tables.ReservationTable{},
		&fnb.Order{},
		&sessions.Session{},
		&closures.DayClosure{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return MigrateConstraints(db)
}
