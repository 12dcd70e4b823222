package closures

import (
	"context"
	"time"

	"venueledger/internal/fnb"
	"venueledger/internal/sessions"
	"venueledger/internal/shared/businessday"
	"venueledger/internal/tables"
	"venueledger/internal/tickets"

	"gorm.io/gorm"
)

type TicketLedger interface {
	SummaryByDate(ctx context.Context, day businessday.Day) (tickets.DaySummary, error)
	MarkCompletedOnOrBefore(ctx context.Context, day businessday.Day) (int64, error)
}

type ReservationBook interface {
	CompleteOnOrBefore(ctx context.Context, day businessday.Day) (int64, error)
	ReleaseTablesOnOrBefore(ctx context.Context, day businessday.Day) (int64, error)
}

type FnbLedger interface {
	SummaryByDate(ctx context.Context, day businessday.Day) (fnb.DaySummary, error)
	MarkCompletedOnOrBefore(ctx context.Context, day businessday.Day) (int64, error)
}

type SeatingSessions interface {
	CloseOpenOnOrBefore(ctx context.Context, day businessday.Day, note string, at time.Time) (int64, error)
}

// Collaborators build each component on the handle they are given, which
// is the closure transaction during a day close.
type Collaborators struct {
	Tickets  func(db *gorm.DB) TicketLedger
	Tables   func(db *gorm.DB) ReservationBook
	Fnb      func(db *gorm.DB) FnbLedger
	Sessions func(db *gorm.DB) SeatingSessions
}

func DefaultCollaborators() Collaborators {
	return Collaborators{
		Tickets:  func(db *gorm.DB) TicketLedger { return tickets.NewRepository(db) },
		Tables:   func(db *gorm.DB) ReservationBook { return tables.NewRepository(db) },
		Fnb:      func(db *gorm.DB) FnbLedger { return fnb.NewRepository(db) },
		Sessions: func(db *gorm.DB) SeatingSessions { return sessions.NewRepository(db) },
	}
}
