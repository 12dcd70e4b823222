package fnb

import (
	"venueledger/internal/shared/businessday"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	TableID     *uuid.UUID      `json:"table_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Note        *string         `json:"note" binding:"omitempty,max=500"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ListQuery struct {
	Status  string `form:"status" binding:"omitempty,oneof=pending preparing served completed cancelled"`
	TableID string `form:"table_id" binding:"omitempty,uuid"`
	Date    string `form:"date" binding:"omitempty,datetime=2006-01-02"`

	Day *businessday.Day `form:"-"`
}
