package tickets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	BuyerID     uuid.UUID       `json:"buyer_id" gorm:"type:uuid;not null;index"`
	Status      OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	PaidAt      *time.Time      `json:"paid_at"`
	VerifiedAt  *time.Time      `json:"verified_at"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Codes []Code      `json:"codes,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "ticket_orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	EventID   uuid.UUID       `json:"event_id" gorm:"type:uuid;not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null;check:quantity > 0"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	LineTotal decimal.Decimal `json:"line_total" gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "ticket_order_items"
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Code is one admissible seat. The code string is unique across the whole store.
type Code struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID  `json:"order_id" gorm:"type:uuid;not null;index"`
	OrderItemID uuid.UUID  `json:"order_item_id" gorm:"type:uuid;not null;index"`
	Code        string     `json:"code" gorm:"type:varchar(32);not null;uniqueIndex"`
	Status      CodeStatus `json:"status" gorm:"type:varchar(20);not null"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	CheckIn *CheckIn `json:"check_in,omitempty" gorm:"foreignKey:TicketCodeID"`
}

func (Code) TableName() string {
	return "ticket_codes"
}

func (c *Code) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CheckIn records a physical admission. At most one row exists per code.
type CheckIn struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TicketCodeID uuid.UUID  `json:"ticket_code_id" gorm:"type:uuid;not null;uniqueIndex"`
	OrderItemID  uuid.UUID  `json:"order_item_id" gorm:"type:uuid;not null;index"`
	SlotNo       int        `json:"slot_no" gorm:"not null"`
	ScannedAt    time.Time  `json:"scanned_at" gorm:"not null"`
	StaffID      *uuid.UUID `json:"staff_id" gorm:"type:uuid"`
	Note         *string    `json:"note" gorm:"type:text"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (CheckIn) TableName() string {
	return "ticket_checkins"
}

func (c *CheckIn) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// DaySummary aggregates non-cancelled ticket sales for a business day
type DaySummary struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
	Orders int64           `json:"orders"`
}
