package tickets

import "venueledger/internal/shared/apperror"

var (
	ErrOrderNotFound      = apperror.NotFound("ticket order not found")
	ErrCodeNotFound       = apperror.NotFound("ticket code not found for this order")
	ErrNoCodes            = apperror.NotFound("ticket order has no codes")
	ErrInvalidQuantity    = apperror.Validation("quantity must be greater than zero")
	ErrInvalidUnitPrice   = apperror.Validation("unit price must not be negative")
	ErrInvalidStatus      = apperror.Validation("status must be one of pending, confirmed, cancelled")
	ErrInvalidOrderID     = apperror.Validation("invalid order ID")
	ErrCapacityExceeded   = apperror.Validation("event capacity exceeded")
	ErrCodeCancelled      = apperror.Conflict("ticket code is cancelled")
	ErrOrderCancelled     = apperror.Conflict("ticket order is cancelled")
	ErrOrderSettled       = apperror.Conflict("ticket order is already settled by day closure")
	ErrCodeAllocationBusy = apperror.Conflict("could not allocate unique ticket codes, retry")
	ErrCheckInBusy        = apperror.Conflict("could not allocate a check-in slot, retry")
)
