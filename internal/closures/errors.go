package closures

import "venueledger/internal/shared/apperror"

var (
	ErrClosureNotFound = apperror.NotFound("day closure not found")
	ErrInvalidDate     = apperror.Validation("date must be YYYY-MM-DD")
	ErrDayStarted      = apperror.Conflict("business day already started")
	ErrDayClosed       = apperror.Conflict("business day already closed")
	ErrCloseInProgress = apperror.Conflict("business day is being closed concurrently")
)
