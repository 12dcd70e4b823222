package closures

import (
	"context"
	"errors"
	"strings"
	"time"

	"venueledger/internal/shared/apperror"
	"venueledger/internal/shared/businessday"
	"venueledger/pkg/broker"
	"venueledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const DefaultClosureNote = "Auto-closed by day closure"

type Service interface {
	Summary(ctx context.Context, date string) (*Summary, error)
	StartDay(ctx context.Context, date string) (*DayClosure, error)
	CloseDay(ctx context.Context, date string, note *string, closedBy *uuid.UUID) (*CloseResult, error)
	GetClosure(ctx context.Context, date string) (*DayClosure, error)
	ListClosures(ctx context.Context, query ListQuery) ([]DayClosure, error)
}

type Config struct {
	Location    *time.Location
	ClosureNote string
}

type service struct {
	db        *gorm.DB
	collab    Collaborators
	publisher broker.Publisher
	location  *time.Location
	note      string
	now       func() time.Time
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithCollaborators replaces the components touched by the cascade
func WithCollaborators(collab Collaborators) Option {
	return func(s *service) {
		s.collab = collab
	}
}

func NewService(db *gorm.DB, publisher broker.Publisher, cfg Config, opts ...Option) Service {
	s := &service{
		db:        db,
		collab:    DefaultCollaborators(),
		publisher: publisher,
		location:  cfg.Location,
		note:      strings.TrimSpace(cfg.ClosureNote),
		now:       time.Now,
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.note == "" {
		s.note = DefaultClosureNote
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) parseDay(date string) (businessday.Day, error) {
	day, err := businessday.Parse(strings.TrimSpace(date), s.location, s.now())
	if err != nil {
		return businessday.Day{}, apperror.Wrap(ErrInvalidDate, err)
	}
	return day, nil
}

func (s *service) Summary(ctx context.Context, date string) (*Summary, error) {
	day, err := s.parseDay(date)
	if err != nil {
		return nil, err
	}
	summary, err := s.summarize(ctx, s.db, day)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// summarize reads both ledgers through db, which may be a transaction
func (s *service) summarize(ctx context.Context, db *gorm.DB, day businessday.Day) (Summary, error) {
	ticketTotals, err := s.collab.Tickets(db).SummaryByDate(ctx, day)
	if err != nil {
		return Summary{}, err
	}
	fnbTotals, err := s.collab.Fnb(db).SummaryByDate(ctx, day)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Date: day.Date,
		Tickets: TicketTotals{
			Count:  ticketTotals.Count,
			Amount: ticketTotals.Amount,
			Orders: ticketTotals.Orders,
		},
		Fnb: FnbTotals{
			Count:  fnbTotals.Count,
			Amount: fnbTotals.Amount,
		},
		Cash: ticketTotals.Amount.Add(fnbTotals.Amount),
	}, nil
}

func (s *service) StartDay(ctx context.Context, date string) (*DayClosure, error) {
	day, err := s.parseDay(date)
	if err != nil {
		return nil, err
	}

	var closure *DayClosure
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		_, err := repo.GetByDate(ctx, day.Date)
		if err == nil {
			return ErrDayStarted
		}
		if !errors.Is(err, ErrClosureNotFound) {
			return err
		}

		closure = s.openRow(day)
		if err := repo.Create(ctx, closure); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDayStarted
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.GetDefault().InfoContext(ctx, "business day started", "date", day.Date)
	return closure, nil
}

func (s *service) openRow(day businessday.Day) *DayClosure {
	return &DayClosure{
		BusinessDate: day.Date,
		Status:       StatusOpen,
		TicketAmount: decimal.Zero,
		FnbAmount:    decimal.Zero,
		CashTotal:    decimal.Zero,
		OpenedAt:     s.now().UTC(),
	}
}

// CloseDay settles one business date. Totals are captured before the
// cascade mutates anything; every step shares one transaction.
func (s *service) CloseDay(ctx context.Context, date string, note *string, closedBy *uuid.UUID) (*CloseResult, error) {
	day, err := s.parseDay(date)
	if err != nil {
		return nil, err
	}

	sessionNote := s.note
	if note != nil && strings.TrimSpace(*note) != "" {
		sessionNote = strings.TrimSpace(*note)
	}

	var (
		closure DayClosure
		cascade Cascade
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		row, err := repo.GetByDate(ctx, day.Date)
		switch {
		case errors.Is(err, ErrClosureNotFound):
			row = s.openRow(day)
			if err := repo.Create(ctx, row); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrCloseInProgress
				}
				return err
			}
		case err != nil:
			return err
		}
		if row.Status == StatusClosed {
			return ErrDayClosed
		}

		summary, err := s.summarize(ctx, tx, day)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		rows, err := repo.MarkClosed(ctx, row.ID, summary, now, note, closedBy)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrDayClosed
		}

		if cascade, err = s.cascade(ctx, tx, day, sessionNote, now); err != nil {
			return err
		}

		closed, err := repo.GetByDate(ctx, day.Date)
		if err != nil {
			return err
		}
		closure = *closed
		return nil
	})
	if err != nil {
		return nil, err
	}

	next := day.Next(s.location)
	nextSummary, err := s.summarize(ctx, s.db.WithContext(ctx), next)
	if err != nil {
		return nil, err
	}

	logger.GetDefault().LogDayClosed(ctx, day.Date, cascade.asMap())
	broker.Notify(ctx, s.publisher, broker.NewEvent(broker.TypeDayClosed, day.Date, map[string]interface{}{
		"date":          day.Date,
		"ticket_count":  closure.TicketCount,
		"ticket_amount": closure.TicketAmount.StringFixed(2),
		"fnb_count":     closure.FnbCount,
		"fnb_amount":    closure.FnbAmount.StringFixed(2),
		"cash_total":    closure.CashTotal.StringFixed(2),
		"cascade":       cascade.asMap(),
	}))

	return &CloseResult{
		Closure:     closure,
		Summary:     nextSummary,
		SummaryDate: next.Date,
		Cascade:     cascade,
	}, nil
}

func (s *service) cascade(ctx context.Context, tx *gorm.DB, day businessday.Day, note string, now time.Time) (Cascade, error) {
	var (
		c   Cascade
		err error
	)

	reservations := s.collab.Tables(tx)
	if c.ReservationsCompleted, err = reservations.CompleteOnOrBefore(ctx, day); err != nil {
		return c, err
	}
	if c.TablesReleased, err = reservations.ReleaseTablesOnOrBefore(ctx, day); err != nil {
		return c, err
	}
	if c.SessionsClosed, err = s.collab.Sessions(tx).CloseOpenOnOrBefore(ctx, day, note, now); err != nil {
		return c, err
	}
	if c.FnbOrdersCompleted, err = s.collab.Fnb(tx).MarkCompletedOnOrBefore(ctx, day); err != nil {
		return c, err
	}
	if c.TicketOrdersCompleted, err = s.collab.Tickets(tx).MarkCompletedOnOrBefore(ctx, day); err != nil {
		return c, err
	}
	return c, nil
}

func (s *service) GetClosure(ctx context.Context, date string) (*DayClosure, error) {
	day, err := s.parseDay(date)
	if err != nil {
		return nil, err
	}
	return NewRepository(s.db).GetByDate(ctx, day.Date)
}

func (s *service) ListClosures(ctx context.Context, query ListQuery) ([]DayClosure, error) {
	return NewRepository(s.db).List(ctx, query.From, query.To)
}
