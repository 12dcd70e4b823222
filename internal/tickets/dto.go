package tickets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	EventID   uuid.UUID        `json:"event_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,min=1,max=100"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	// BuyerID lets staff sell on behalf of a customer; defaults to the caller
	BuyerID *uuid.UUID `json:"buyer_id"`
}

type ConfirmCodeRequest struct {
	Code string  `json:"code" binding:"required,min=4,max=32"`
	Note *string `json:"note" binding:"omitempty,max=500"`
}

type ConfirmAllRequest struct {
	Note *string `json:"note" binding:"omitempty,max=500"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ListOrdersQuery struct {
	Page    int    `form:"page" binding:"omitempty,min=1"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status  string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled completed"`
	BuyerID string `form:"buyer_id" binding:"omitempty,uuid"`
}

type OrderItemResponse struct {
	ID        string          `json:"id"`
	EventID   string          `json:"event_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CheckInResponse struct {
	ID          string     `json:"id"`
	OrderItemID string     `json:"order_item_id"`
	SlotNo      int        `json:"slot_no"`
	ScannedAt   time.Time  `json:"scanned_at"`
	StaffID     *uuid.UUID `json:"staff_id"`
	Note        *string    `json:"note"`
}

type CodeResponse struct {
	ID          string           `json:"id"`
	Code        string           `json:"code"`
	Status      CodeStatus       `json:"status"`
	ConfirmedAt *time.Time       `json:"confirmed_at"`
	CheckIn     *CheckInResponse `json:"check_in,omitempty"`
}

type OrderResponse struct {
	ID             string              `json:"id"`
	BuyerID        string              `json:"buyer_id"`
	Status         OrderStatus         `json:"status"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	PaidAt         *time.Time          `json:"paid_at"`
	VerifiedAt     *time.Time          `json:"verified_at"`
	CreatedAt      time.Time           `json:"created_at"`
	Items          []OrderItemResponse `json:"items"`
	Codes          []CodeResponse      `json:"codes"`
	ConfirmedCodes []string            `json:"confirmed_codes"`
}

// ScanResponse is returned by a single code confirmation
type ScanResponse struct {
	OrderID     string       `json:"order_id"`
	OrderStatus OrderStatus  `json:"order_status"`
	Code        CodeResponse `json:"code"`
}

type PaginatedOrders struct {
	Orders     []OrderResponse `json:"orders"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

func (c *CheckIn) ToResponse() *CheckInResponse {
	if c == nil {
		return nil
	}
	return &CheckInResponse{
		ID:          c.ID.String(),
		OrderItemID: c.OrderItemID.String(),
		SlotNo:      c.SlotNo,
		ScannedAt:   c.ScannedAt,
		StaffID:     c.StaffID,
		Note:        c.Note,
	}
}

func (c *Code) ToResponse() CodeResponse {
	return CodeResponse{
		ID:          c.ID.String(),
		Code:        c.Code,
		Status:      c.Status,
		ConfirmedAt: c.ConfirmedAt,
		CheckIn:     c.CheckIn.ToResponse(),
	}
}

func (o *Order) ToResponse() OrderResponse {
	resp := OrderResponse{
		ID:             o.ID.String(),
		BuyerID:        o.BuyerID.String(),
		Status:         o.Status,
		TotalAmount:    o.TotalAmount,
		PaidAt:         o.PaidAt,
		VerifiedAt:     o.VerifiedAt,
		CreatedAt:      o.CreatedAt,
		Items:          make([]OrderItemResponse, 0, len(o.Items)),
		Codes:          make([]CodeResponse, 0, len(o.Codes)),
		ConfirmedCodes: []string{},
	}

	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:        item.ID.String(),
			EventID:   item.EventID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	for i := range o.Codes {
		resp.Codes = append(resp.Codes, o.Codes[i].ToResponse())
		if o.Codes[i].Status == CodeStatusConfirmed {
			resp.ConfirmedCodes = append(resp.ConfirmedCodes, o.Codes[i].Code)
		}
	}
	return resp
}
