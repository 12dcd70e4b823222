package events

import (
	"context"
	"math"
	"strings"

	"venueledger/internal/shared/constants"
	"venueledger/pkg/cache"
	"venueledger/pkg/logger"

	"github.com/google/uuid"
)

// Catalog resolves events for the ticket ledger
type Catalog interface {
	Find(ctx context.Context, id uuid.UUID) (*Event, error)
}

type Service interface {
	Catalog
	SetCacheService(cacheService cache.Service)
	CreateEvent(ctx context.Context, adminID uuid.UUID, req CreateEventRequest) (*EventResponse, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, adminID uuid.UUID, req UpdateEventRequest) (*EventResponse, error)
	GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// Find loads an event, going through the detail cache when one is configured
func (s *service) Find(ctx context.Context, id uuid.UUID) (*Event, error) {
	if s.cacheService == nil {
		return s.repo.GetByID(ctx, id)
	}

	var event Event
	err := s.cacheService.GetOrSet(ctx, constants.BuildEventDetailKey(id.String()), constants.TTL_EVENT_DETAIL,
		func() (interface{}, error) {
			return s.repo.GetByID(ctx, id)
		}, &event)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *service) CreateEvent(ctx context.Context, adminID uuid.UUID, req CreateEventRequest) (*EventResponse, error) {
	if req.TicketPrice.IsNegative() {
		return nil, ErrInvalidPrice
	}

	event := &Event{
		Name:             strings.TrimSpace(req.Name),
		Description:      req.Description,
		StartsAt:         req.StartsAt.UTC(),
		TicketPrice:      req.TicketPrice,
		TicketCodePrefix: strings.ToUpper(req.TicketCodePrefix),
		Capacity:         req.Capacity,
		CreatedBy:        &adminID,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.invalidateEventCache(ctx, nil)
	logger.GetDefault().InfoContext(ctx, "event created", "event_id", event.ID.String(), "prefix", event.TicketCodePrefix)

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	event, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) UpdateEvent(ctx context.Context, id uuid.UUID, adminID uuid.UUID, req UpdateEventRequest) (*EventResponse, error) {
	updates := map[string]interface{}{
		"updated_by": adminID,
	}

	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.StartsAt != nil {
		updates["starts_at"] = req.StartsAt.UTC()
	}
	if req.TicketPrice != nil {
		if req.TicketPrice.IsNegative() {
			return nil, ErrInvalidPrice
		}
		updates["ticket_price"] = *req.TicketPrice
	}
	if req.TicketCodePrefix != nil {
		updates["ticket_code_prefix"] = strings.ToUpper(*req.TicketCodePrefix)
	}
	if req.Capacity != nil {
		updates["capacity"] = *req.Capacity
	}

	event, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	s.invalidateEventCache(ctx, &id)

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	// only unfiltered pages are cached
	cacheable := s.cacheService != nil && query.Search == "" && query.DateFrom == "" && query.DateTo == ""
	if cacheable {
		var cached PaginatedEvents
		err := s.cacheService.GetOrSet(ctx, constants.BuildEventListKey(query.Page, query.Limit), constants.TTL_EVENT_LIST,
			func() (interface{}, error) {
				return s.listEvents(ctx, query)
			}, &cached)
		if err != nil {
			return nil, err
		}
		return &cached, nil
	}

	return s.listEvents(ctx, query)
}

func (s *service) listEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	events, totalCount, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return nil, err
	}

	responses := make([]EventResponse, len(events))
	for i := range events {
		responses[i] = events[i].ToResponse()
	}

	return &PaginatedEvents{
		Events:     responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(query.Limit))),
	}, nil
}

func (s *service) invalidateEventCache(ctx context.Context, eventID *uuid.UUID) {
	if s.cacheService == nil {
		return
	}

	if eventID != nil {
		if err := s.cacheService.Delete(ctx, constants.BuildEventDetailKey(eventID.String())); err != nil {
			logger.GetDefault().WarnContext(ctx, "event cache invalidation failed", "event_id", eventID.String(), "error", err)
		}
	}
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_EVENT_LIST); err != nil {
		logger.GetDefault().WarnContext(ctx, "event list cache invalidation failed", "error", err)
	}
}
