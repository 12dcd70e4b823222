package sessions

import (
	"context"
	"time"

	"venueledger/internal/tables"

	"github.com/google/uuid"
)

type OpenRequest struct {
	TableID       uuid.UUID  `json:"table_id" binding:"required"`
	ReservationID *uuid.UUID `json:"reservation_id"`
	Note          *string    `json:"note" binding:"omitempty,max=500"`
}

type CloseRequest struct {
	Note *string `json:"note" binding:"omitempty,max=500"`
}

type ListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=open closed"`
}

// TableLookup resolves tables so sessions only open on real ones
type TableLookup interface {
	GetTable(ctx context.Context, id uuid.UUID) (*tables.Table, error)
}

type Service interface {
	Open(ctx context.Context, req OpenRequest) (*Session, error)
	Close(ctx context.Context, id uuid.UUID, note *string) (*Session, error)
	List(ctx context.Context, status Status) ([]Session, error)
}

type service struct {
	repo   Repository
	tables TableLookup
	now    func() time.Time
}

func NewService(repo Repository, tables TableLookup) Service {
	return &service{repo: repo, tables: tables, now: time.Now}
}

func (s *service) Open(ctx context.Context, req OpenRequest) (*Session, error) {
	if _, err := s.tables.GetTable(ctx, req.TableID); err != nil {
		return nil, err
	}

	busy, err := s.repo.HasOpenSession(ctx, req.TableID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, ErrTableBusy
	}

	session := &Session{
		TableID:       req.TableID,
		ReservationID: req.ReservationID,
		Status:        StatusOpen,
		StartedAt:     s.now().UTC(),
		Note:          req.Note,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) Close(ctx context.Context, id uuid.UUID, note *string) (*Session, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status == StatusClosed {
		return nil, ErrSessionClosed
	}

	rows, err := s.repo.Close(ctx, id, note, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrSessionClosed
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, status Status) ([]Session, error) {
	return s.repo.List(ctx, status)
}
