package events

import "venueledger/internal/shared/apperror"

var (
	ErrEventNotFound  = apperror.NotFound("event not found")
	ErrInvalidPrice   = apperror.Validation("ticket price must not be negative")
	ErrInvalidEventID = apperror.Validation("invalid event ID")
)
