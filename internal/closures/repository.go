package closures

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetByDate(ctx context.Context, date string) (*DayClosure, error)
	Create(ctx context.Context, closure *DayClosure) error
	MarkClosed(ctx context.Context, id uuid.UUID, summary Summary, closedAt time.Time, note *string, closedBy *uuid.UUID) (int64, error)
	List(ctx context.Context, from, to string) ([]DayClosure, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByDate(ctx context.Context, date string) (*DayClosure, error) {
	var closure DayClosure
	if err := r.db.WithContext(ctx).Where("business_date = ?", date).First(&closure).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClosureNotFound
		}
		return nil, err
	}
	return &closure, nil
}

func (r *repository) Create(ctx context.Context, closure *DayClosure) error {
	return r.db.WithContext(ctx).Create(closure).Error
}

// MarkClosed persists the totals only if the row is still open
func (r *repository) MarkClosed(ctx context.Context, id uuid.UUID, summary Summary, closedAt time.Time, note *string, closedBy *uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&DayClosure{}).
		Where("id = ? AND status = ?", id, StatusOpen).
		Updates(map[string]interface{}{
			"status":        StatusClosed,
			"ticket_count":  summary.Tickets.Count,
			"ticket_amount": summary.Tickets.Amount,
			"ticket_orders": summary.Tickets.Orders,
			"fnb_count":     summary.Fnb.Count,
			"fnb_amount":    summary.Fnb.Amount,
			"cash_total":    summary.Cash,
			"closed_at":     closedAt,
			"note":          note,
			"closed_by":     closedBy,
			"updated_at":    closedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) List(ctx context.Context, from, to string) ([]DayClosure, error) {
	var closures []DayClosure
	db := r.db.WithContext(ctx).Model(&DayClosure{})
	// YYYY-MM-DD sorts chronologically as text
	if from != "" {
		db = db.Where("business_date >= ?", from)
	}
	if to != "" {
		db = db.Where("business_date <= ?", to)
	}
	err := db.Order("business_date DESC").Find(&closures).Error
	return closures, err
}
