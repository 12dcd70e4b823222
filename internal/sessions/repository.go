package sessions

import (
	"context"
	"errors"
	"time"

	"venueledger/internal/shared/businessday"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	HasOpenSession(ctx context.Context, tableID uuid.UUID) (bool, error)
	Close(ctx context.Context, id uuid.UUID, note *string, at time.Time) (int64, error)
	List(ctx context.Context, status Status) ([]Session, error)

	CloseOpenOnOrBefore(ctx context.Context, day businessday.Day, note string, at time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, session *Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	var session Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *repository) HasOpenSession(ctx context.Context, tableID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Session{}).
		Where("table_id = ? AND status = ?", tableID, StatusOpen).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Close(ctx context.Context, id uuid.UUID, note *string, at time.Time) (int64, error) {
	updates := map[string]interface{}{
		"status":   StatusClosed,
		"ended_at": at,
	}
	if note != nil {
		updates["note"] = *note
	}
	result := r.db.WithContext(ctx).Model(&Session{}).
		Where("id = ? AND status = ?", id, StatusOpen).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) List(ctx context.Context, status Status) ([]Session, error) {
	var sessions []Session
	db := r.db.WithContext(ctx).Model(&Session{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("started_at DESC").Find(&sessions).Error
	return sessions, err
}

// CloseOpenOnOrBefore ends every session still open at the end of day. A
// non-blank note written by staff is kept; otherwise the closure note is
// recorded.
func (r *repository) CloseOpenOnOrBefore(ctx context.Context, day businessday.Day, note string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Session{}).
		Where("started_at < ? AND status = ?", day.End, StatusOpen).
		Updates(map[string]interface{}{
			"status":   StatusClosed,
			"ended_at": at,
			"note":     gorm.Expr("CASE WHEN note IS NULL OR TRIM(note) = '' THEN ? ELSE note END", note),
		})
	return result.RowsAffected, result.Error
}
