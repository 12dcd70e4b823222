package fnb

import (
	"context"
	"strings"
	"time"

	"venueledger/internal/shared/apperror"
	"venueledger/internal/shared/businessday"

	"github.com/google/uuid"
)

type Service interface {
	Create(ctx context.Context, staffID *uuid.UUID, req CreateOrderRequest) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Order, error)
	List(ctx context.Context, query ListQuery) ([]Order, error)
}

type service struct {
	repo     Repository
	location *time.Location
	now      func() time.Time
}

func NewService(repo Repository, location *time.Location) Service {
	if location == nil {
		location = time.UTC
	}
	return &service{repo: repo, location: location, now: time.Now}
}

func (s *service) Create(ctx context.Context, staffID *uuid.UUID, req CreateOrderRequest) (*Order, error) {
	if req.TotalAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	order := &Order{
		TableID:     req.TableID,
		StaffID:     staffID,
		Status:      StatusPending,
		TotalAmount: req.TotalAmount,
		Note:        req.Note,
		OrderedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) (*Order, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}
	if order.Status.IsSettled() {
		return nil, ErrOrderSettled
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	order.Status = status
	return order, nil
}

func (s *service) List(ctx context.Context, query ListQuery) ([]Order, error) {
	if query.Date != "" && query.Day == nil {
		day, err := businessday.Parse(query.Date, s.location, s.now())
		if err != nil {
			return nil, apperror.Validation(err.Error())
		}
		query.Day = &day
	}
	return s.repo.List(ctx, query)
}
