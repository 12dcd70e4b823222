package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Event struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Name             string          `json:"name" gorm:"not null;size:255"`
	Description      string          `json:"description" gorm:"type:text"`
	StartsAt         time.Time       `json:"starts_at" gorm:"not null;index"`
	TicketPrice      decimal.Decimal `json:"ticket_price" gorm:"type:numeric(12,2);not null"`
	TicketCodePrefix string          `json:"ticket_code_prefix" gorm:"type:varchar(3);not null"`
	// Capacity of zero means the event is not capacity limited
	Capacity int `json:"capacity" gorm:"not null;check:capacity >= 0"`

	CreatedBy *uuid.UUID `json:"created_by" gorm:"type:uuid"`
	UpdatedBy *uuid.UUID `json:"updated_by" gorm:"type:uuid"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type EventResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	StartsAt         time.Time       `json:"starts_at"`
	TicketPrice      decimal.Decimal `json:"ticket_price"`
	TicketCodePrefix string          `json:"ticket_code_prefix"`
	Capacity         int             `json:"capacity"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type CreateEventRequest struct {
	Name             string          `json:"name" binding:"required,min=3,max=255"`
	Description      string          `json:"description" binding:"max=2000"`
	StartsAt         time.Time       `json:"starts_at" binding:"required"`
	TicketPrice      decimal.Decimal `json:"ticket_price"`
	TicketCodePrefix string          `json:"ticket_code_prefix" binding:"required,min=1,max=3,alphanum"`
	Capacity         int             `json:"capacity" binding:"omitempty,min=0,max=100000"`
}

type UpdateEventRequest struct {
	Name             *string          `json:"name" binding:"omitempty,min=3,max=255"`
	Description      *string          `json:"description" binding:"omitempty,max=2000"`
	StartsAt         *time.Time       `json:"starts_at"`
	TicketPrice      *decimal.Decimal `json:"ticket_price"`
	TicketCodePrefix *string          `json:"ticket_code_prefix" binding:"omitempty,min=1,max=3,alphanum"`
	Capacity         *int             `json:"capacity" binding:"omitempty,min=0,max=100000"`
}

type EventListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// Helper method to convert Event to EventResponse
func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:               e.ID.String(),
		Name:             e.Name,
		Description:      e.Description,
		StartsAt:         e.StartsAt,
		TicketPrice:      e.TicketPrice,
		TicketCodePrefix: e.TicketCodePrefix,
		Capacity:         e.Capacity,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
