package sessions

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Session tracks a party physically occupying a table
type Session struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TableID       uuid.UUID  `json:"table_id" gorm:"type:uuid;not null;index"`
	ReservationID *uuid.UUID `json:"reservation_id" gorm:"type:uuid;index"`
	Status        Status     `json:"status" gorm:"type:varchar(20);not null"`
	StartedAt     time.Time  `json:"started_at" gorm:"not null"`
	EndedAt       *time.Time `json:"ended_at"`
	Note          *string    `json:"note" gorm:"type:text"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Session) TableName() string {
	return "seating_sessions"
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
