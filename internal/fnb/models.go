package fnb

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusServed    Status = "served"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusServed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsSettled reports whether day closure leaves the order alone
func (s Status) IsSettled() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}

// Order is a food and beverage ticket rung up at a table or the bar
type Order struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	TableID     *uuid.UUID      `json:"table_id" gorm:"type:uuid;index"`
	StaffID     *uuid.UUID      `json:"staff_id" gorm:"type:uuid"`
	Status      Status          `json:"status" gorm:"type:varchar(20);not null"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	Note        *string         `json:"note" gorm:"type:text"`
	OrderedAt   time.Time       `json:"ordered_at" gorm:"not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Order) TableName() string {
	return "fnb_orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// DaySummary aggregates non-cancelled F&B sales for a business day
type DaySummary struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}
