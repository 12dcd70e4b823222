package tables

import (
	"errors"
	"strings"

	"venueledger/internal/shared/apperror"

	"gorm.io/gorm"
)

var (
	ErrTableNotFound        = apperror.NotFound("table not found")
	ErrReservationNotFound  = apperror.NotFound("reservation not found")
	ErrInvalidPartySize     = apperror.Validation("party size must be greater than zero")
	ErrInvalidCapacity      = apperror.Validation("table capacity must be greater than zero")
	ErrInvalidTableName     = apperror.Validation("table name is required")
	ErrCapacityInsufficient = apperror.Validation("capacity insufficient")
	ErrInvalidStatus        = apperror.Validation("status must be one of pending, confirmed, seated, no_show, canceled")
	ErrInvalidID            = apperror.Validation("invalid ID")
	ErrTableOccupied        = apperror.Conflict("table occupied")
	ErrTableNameTaken       = apperror.Conflict("table name already exists")
	ErrReservationClosed    = apperror.Conflict("reservation is no longer active")
	ErrInvalidTransition    = apperror.Conflict("status transition not allowed")
	ErrStaleReservation     = apperror.Conflict("reservation changed concurrently, retry")
)

// isDuplicateKey reports a unique index violation, translated or raw
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
