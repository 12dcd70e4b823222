package sessions

import "venueledger/internal/shared/apperror"

var (
	ErrSessionNotFound  = apperror.NotFound("seating session not found")
	ErrInvalidSessionID = apperror.Validation("invalid session ID")
	ErrTableBusy        = apperror.Conflict("table already has an open session")
	ErrSessionClosed    = apperror.Conflict("seating session is already closed")
)
