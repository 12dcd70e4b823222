package tables

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Table struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Capacity  int       `json:"capacity" gorm:"not null;check:capacity > 0"`
	IsActive  bool      `json:"is_active" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Table) TableName() string {
	return "venue_tables"
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type Reservation struct {
	ID              uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	BuyerID         uuid.UUID         `json:"buyer_id" gorm:"type:uuid;not null;index"`
	EventID         uuid.UUID         `json:"event_id" gorm:"type:uuid;not null;index"`
	PartySize       int               `json:"party_size" gorm:"not null;check:party_size > 0"`
	ReservedAt      time.Time         `json:"reserved_at" gorm:"not null"`
	Status          ReservationStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	AssignedTableID *uuid.UUID        `json:"assigned_table_id" gorm:"type:uuid"`
	Note            *string           `json:"note" gorm:"type:text"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (Reservation) TableName() string {
	return "reservations"
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReservationTable is the older many-to-many assignment path. It is still
// read for occupancy but never written by table assignment.
type ReservationTable struct {
	ReservationID uuid.UUID `json:"reservation_id" gorm:"type:uuid;primaryKey"`
	TableID       uuid.UUID `json:"table_id" gorm:"type:uuid;primaryKey;index"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ReservationTable) TableName() string {
	return "reservation_tables"
}
