package tables

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"venueledger/internal/events"
	"venueledger/internal/shared/apperror"
	"venueledger/internal/shared/businessday"
	"venueledger/pkg/broker"
	"venueledger/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	CreateTable(ctx context.Context, req CreateTableRequest) (*TableResponse, error)
	SetTableActive(ctx context.Context, tableID uuid.UUID, active bool) (*TableResponse, error)
	ListTables(ctx context.Context) ([]TableStateResponse, error)
	Occupancy(ctx context.Context, tableID uuid.UUID) (*OccupancyResponse, error)
	AvailableForEvent(ctx context.Context, eventID uuid.UUID) ([]TableAvailabilityResponse, error)

	CreateReservation(ctx context.Context, buyerID uuid.UUID, req CreateReservationRequest) (*ReservationResponse, error)
	AssignTable(ctx context.Context, reservationID, tableID uuid.UUID) (*ReservationResponse, error)
	UpdateStatus(ctx context.Context, reservationID uuid.UUID, status string) (*ReservationResponse, error)
	GetReservation(ctx context.Context, reservationID uuid.UUID) (*ReservationResponse, error)
	ListReservations(ctx context.Context, query ReservationListQuery) ([]ReservationResponse, error)
}

type service struct {
	repo      Repository
	catalog   events.Catalog
	publisher broker.Publisher
	location  *time.Location
	legacy    bool
	now       func() time.Time
}

type Option func(*service)

// WithLegacyTransitions lets staff move a reservation between any two
// settable statuses and assign tables to finished reservations
func WithLegacyTransitions(enabled bool) Option {
	return func(s *service) {
		s.legacy = enabled
	}
}

// WithLocation sets the venue time zone used for date filters
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		s.location = loc
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

func NewService(repo Repository, catalog events.Catalog, publisher broker.Publisher, opts ...Option) Service {
	s := &service{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		location:  time.UTC,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateTable(ctx context.Context, req CreateTableRequest) (*TableResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidTableName
	}
	if req.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	table := &Table{
		Name:     name,
		Capacity: req.Capacity,
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	if err := s.repo.CreateTable(ctx, table); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTableNameTaken
		}
		return nil, err
	}

	resp := table.ToResponse()
	return &resp, nil
}

func (s *service) SetTableActive(ctx context.Context, tableID uuid.UUID, active bool) (*TableResponse, error) {
	if err := s.repo.SetTableActive(ctx, tableID, active); err != nil {
		return nil, err
	}
	table, err := s.repo.GetTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	resp := table.ToResponse()
	return &resp, nil
}

func (s *service) ListTables(ctx context.Context) ([]TableStateResponse, error) {
	tables, err := s.repo.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	occupied, err := s.repo.OccupiedTableIDs(ctx, nil)
	if err != nil {
		return nil, err
	}

	states := make([]TableStateResponse, 0, len(tables))
	for i := range tables {
		state := TableAvailable
		switch {
		case !tables[i].IsActive:
			state = TableInactive
		case occupied[tables[i].ID]:
			state = TableOccupied
		}
		states = append(states, TableStateResponse{
			TableResponse: tables[i].ToResponse(),
			State:         state,
		})
	}
	return states, nil
}

func (s *service) Occupancy(ctx context.Context, tableID uuid.UUID) (*OccupancyResponse, error) {
	if _, err := s.repo.GetTable(ctx, tableID); err != nil {
		return nil, err
	}
	occupied, err := s.repo.TableOccupied(ctx, tableID)
	if err != nil {
		return nil, err
	}
	return &OccupancyResponse{TableID: tableID.String(), Occupied: occupied}, nil
}

func (s *service) AvailableForEvent(ctx context.Context, eventID uuid.UUID) ([]TableAvailabilityResponse, error) {
	tables, err := s.repo.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	occupied, err := s.repo.OccupiedTableIDs(ctx, &eventID)
	if err != nil {
		return nil, err
	}

	result := make([]TableAvailabilityResponse, 0, len(tables))
	for i := range tables {
		if !tables[i].IsActive {
			continue
		}
		result = append(result, TableAvailabilityResponse{
			TableResponse: tables[i].ToResponse(),
			Available:     !occupied[tables[i].ID],
		})
	}
	return result, nil
}

func (s *service) CreateReservation(ctx context.Context, buyerID uuid.UUID, req CreateReservationRequest) (*ReservationResponse, error) {
	if req.PartySize <= 0 {
		return nil, ErrInvalidPartySize
	}
	if _, err := s.catalog.Find(ctx, req.EventID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	reservation := &Reservation{
		BuyerID:    buyerID,
		EventID:    req.EventID,
		PartySize:  req.PartySize,
		ReservedAt: req.ReservedAt.UTC(),
		Status:     StatusPending,
		Note:       req.Note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		if req.AssignedTableID != nil {
			if _, err := s.checkTable(ctx, repo, *req.AssignedTableID, req.PartySize); err != nil {
				return err
			}
		}

		if err := repo.CreateReservation(ctx, reservation); err != nil {
			return err
		}
		if req.AssignedTableID == nil {
			return nil
		}

		// recorded while still pending, under the same conflict rule as AssignTable
		rows, err := repo.AssignIfFree(ctx, AssignParams{
			ReservationID: reservation.ID,
			TableID:       *req.AssignedTableID,
			EventID:       reservation.EventID,
			At:            now,
		})
		if isDuplicateKey(err) {
			return ErrTableOccupied
		}
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrTableOccupied
		}
		reservation.AssignedTableID = req.AssignedTableID
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := reservation.ToResponse()
	return &resp, nil
}

func (s *service) AssignTable(ctx context.Context, reservationID, tableID uuid.UUID) (*ReservationResponse, error) {
	var reservation *Reservation

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		current, err := repo.GetReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		if _, err := s.checkTable(ctx, repo, tableID, current.PartySize); err != nil {
			return err
		}
		if !s.legacy && current.Status.IsTerminal() {
			return ErrReservationClosed
		}

		params := AssignParams{
			ReservationID: reservationID,
			TableID:       tableID,
			EventID:       current.EventID,
			Confirm:       true,
			At:            s.now().UTC(),
		}
		if !s.legacy {
			params.FromStatuses = ActiveStatuses
		}

		rows, err := repo.AssignIfFree(ctx, params)
		if isDuplicateKey(err) {
			// lost a concurrent assignment of the same table
			return ErrTableOccupied
		}
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrTableOccupied
		}

		reservation, err = repo.GetReservation(ctx, reservationID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.GetDefault().LogTableAssigned(ctx, reservationID.String(), tableID.String())
	broker.Notify(ctx, s.publisher, broker.NewEvent(broker.TypeTableAssigned, reservationID.String(), map[string]interface{}{
		"reservation_id": reservationID.String(),
		"table_id":       tableID.String(),
		"event_id":       reservation.EventID.String(),
		"status":         reservation.Status.String(),
	}))

	resp := reservation.ToResponse()
	return &resp, nil
}

// checkTable requires an active table large enough for the party
func (s *service) checkTable(ctx context.Context, repo Repository, tableID uuid.UUID, partySize int) (*Table, error) {
	table, err := repo.GetTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if !table.IsActive {
		return nil, ErrTableNotFound
	}
	if partySize > table.Capacity {
		return nil, ErrCapacityInsufficient
	}
	return table, nil
}

func (s *service) UpdateStatus(ctx context.Context, reservationID uuid.UUID, raw string) (*ReservationResponse, error) {
	next := ReservationStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !next.IsValid() {
		return nil, ErrInvalidStatus
	}

	var (
		reservation *Reservation
		changed     bool
	)
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		current, err := repo.GetReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		if current.Status == next {
			reservation = current
			return nil
		}
		if !s.legacy && !current.Status.CanTransitionTo(next) {
			return apperror.Wrap(ErrInvalidTransition, fmt.Errorf("%s -> %s", current.Status, next))
		}

		rows, err := repo.UpdateStatusFrom(ctx, reservationID, current.Status, next, s.now().UTC())
		if isDuplicateKey(err) {
			// reactivating a reservation whose table was given away
			return ErrTableOccupied
		}
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrStaleReservation
		}
		changed = true

		reservation, err = repo.GetReservation(ctx, reservationID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		broker.Notify(ctx, s.publisher, broker.NewEvent(broker.TypeReservationStatusChanged, reservationID.String(), map[string]interface{}{
			"reservation_id": reservationID.String(),
			"status":         reservation.Status.String(),
		}))
	}

	resp := reservation.ToResponse()
	return &resp, nil
}

func (s *service) GetReservation(ctx context.Context, reservationID uuid.UUID) (*ReservationResponse, error) {
	reservation, err := s.repo.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	resp := reservation.ToResponse()
	return &resp, nil
}

func (s *service) ListReservations(ctx context.Context, query ReservationListQuery) ([]ReservationResponse, error) {
	if query.Date != "" && query.Day == nil {
		day, err := businessday.Parse(query.Date, s.location, s.now())
		if err != nil {
			return nil, apperror.Validation(err.Error())
		}
		query.Day = &day
	}

	reservations, err := s.repo.ListReservations(ctx, query)
	if err != nil {
		return nil, err
	}

	result := make([]ReservationResponse, len(reservations))
	for i := range reservations {
		result[i] = reservations[i].ToResponse()
	}
	return result, nil
}
