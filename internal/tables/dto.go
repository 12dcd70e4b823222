package tables

import (
	"time"

	"venueledger/internal/shared/businessday"

	"github.com/google/uuid"
)

type CreateTableRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Capacity int    `json:"capacity" binding:"required,min=1,max=100"`
	IsActive *bool  `json:"is_active"`
}

type SetTableActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type CreateReservationRequest struct {
	EventID         uuid.UUID  `json:"event_id" binding:"required"`
	PartySize       int        `json:"party_size" binding:"required,min=1,max=100"`
	ReservedAt      time.Time  `json:"reserved_at" binding:"required"`
	Note            *string    `json:"note" binding:"omitempty,max=500"`
	AssignedTableID *uuid.UUID `json:"assigned_table_id"`
	BuyerID         *uuid.UUID `json:"buyer_id"`
}

type AssignTableRequest struct {
	TableID uuid.UUID `json:"table_id" binding:"required"`
}

type UpdateReservationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ReservationListQuery struct {
	EventID string `form:"event_id" binding:"omitempty,uuid"`
	Status  string `form:"status" binding:"omitempty,oneof=pending confirmed seated no_show canceled completed"`
	Date    string `form:"date" binding:"omitempty,datetime=2006-01-02"`

	// Day is resolved from Date in the venue time zone
	Day *businessday.Day `form:"-"`
}

type TableResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type TableStateResponse struct {
	TableResponse
	State TableState `json:"state"`
}

type TableAvailabilityResponse struct {
	TableResponse
	Available bool `json:"available"`
}

type OccupancyResponse struct {
	TableID  string `json:"table_id"`
	Occupied bool   `json:"occupied"`
}

type ReservationResponse struct {
	ID              string            `json:"id"`
	BuyerID         string            `json:"buyer_id"`
	EventID         string            `json:"event_id"`
	PartySize       int               `json:"party_size"`
	ReservedAt      time.Time         `json:"reserved_at"`
	Status          ReservationStatus `json:"status"`
	AssignedTableID *uuid.UUID        `json:"assigned_table_id"`
	Note            *string           `json:"note"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (t *Table) ToResponse() TableResponse {
	return TableResponse{
		ID:        t.ID.String(),
		Name:      t.Name,
		Capacity:  t.Capacity,
		IsActive:  t.IsActive,
		CreatedAt: t.CreatedAt,
	}
}

func (r *Reservation) ToResponse() ReservationResponse {
	return ReservationResponse{
		ID:              r.ID.String(),
		BuyerID:         r.BuyerID.String(),
		EventID:         r.EventID.String(),
		PartySize:       r.PartySize,
		ReservedAt:      r.ReservedAt,
		Status:          r.Status,
		AssignedTableID: r.AssignedTableID,
		Note:            r.Note,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
