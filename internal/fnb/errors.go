package fnb

import "venueledger/internal/shared/apperror"

var (
	ErrOrderNotFound  = apperror.NotFound("F&B order not found")
	ErrInvalidAmount  = apperror.Validation("total amount must not be negative")
	ErrInvalidStatus  = apperror.Validation("status must be one of pending, preparing, served, completed, cancelled")
	ErrInvalidOrderID = apperror.Validation("invalid order ID")
	ErrOrderSettled   = apperror.Conflict("F&B order is already settled")
)
