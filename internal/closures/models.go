package closures

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// DayClosure is the settlement record of one business date. It is closed
// at most once.
type DayClosure struct {
	ID           uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	BusinessDate string          `json:"business_date" gorm:"type:varchar(10);not null;uniqueIndex"`
	Status       Status          `json:"status" gorm:"type:varchar(20);not null"`
	TicketCount  int64           `json:"ticket_count" gorm:"not null"`
	TicketAmount decimal.Decimal `json:"ticket_amount" gorm:"type:numeric(12,2);not null"`
	TicketOrders int64           `json:"ticket_orders" gorm:"not null"`
	FnbCount     int64           `json:"fnb_count" gorm:"not null"`
	FnbAmount    decimal.Decimal `json:"fnb_amount" gorm:"type:numeric(12,2);not null"`
	CashTotal    decimal.Decimal `json:"cash_total" gorm:"type:numeric(12,2);not null"`
	OpenedAt     time.Time       `json:"opened_at" gorm:"not null"`
	ClosedAt     *time.Time      `json:"closed_at"`
	Note         *string         `json:"note" gorm:"type:text"`
	ClosedBy     *uuid.UUID      `json:"closed_by" gorm:"type:uuid"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (DayClosure) TableName() string {
	return "day_closures"
}

func (d *DayClosure) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type TicketTotals struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
	Orders int64           `json:"orders"`
}

type FnbTotals struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// Summary is the read-only sales picture of one business date
type Summary struct {
	Date    string          `json:"date"`
	Tickets TicketTotals    `json:"tickets"`
	Fnb     FnbTotals       `json:"fnb"`
	Cash    decimal.Decimal `json:"cash"`
}

// Cascade counts the rows settled by a day close
type Cascade struct {
	ReservationsCompleted int64 `json:"reservations_completed"`
	TablesReleased        int64 `json:"tables_released"`
	SessionsClosed        int64 `json:"sessions_closed"`
	FnbOrdersCompleted    int64 `json:"fnb_orders_completed"`
	TicketOrdersCompleted int64 `json:"ticket_orders_completed"`
}

func (c Cascade) asMap() map[string]int64 {
	return map[string]int64{
		"reservations_completed":  c.ReservationsCompleted,
		"tables_released":         c.TablesReleased,
		"sessions_closed":         c.SessionsClosed,
		"fnb_orders_completed":    c.FnbOrdersCompleted,
		"ticket_orders_completed": c.TicketOrdersCompleted,
	}
}

// CloseResult carries the closed row and the next day's running summary
type CloseResult struct {
	Closure     DayClosure `json:"closure"`
	Summary     Summary    `json:"summary"`
	SummaryDate string     `json:"summary_date"`
	Cascade     Cascade    `json:"cascade"`
}

type StartDayRequest struct {
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

type CloseDayRequest struct {
	Date string  `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Note *string `json:"note" binding:"omitempty,max=500"`
}

type ListQuery struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}
