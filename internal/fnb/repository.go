package fnb

import (
	"context"
	"errors"

	"venueledger/internal/shared/businessday"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	List(ctx context.Context, query ListQuery) ([]Order, error)

	SummaryByDate(ctx context.Context, day businessday.Day) (DaySummary, error)
	MarkCompletedOnOrBefore(ctx context.Context, day businessday.Day) (int64, error)
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

func (r *repository) Create(ctx context.Context, order *Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]Order, error) {
	var orders []Order
	db := r.db.WithContext(ctx).Model(&Order{})
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.TableID != "" {
		db = db.Where("table_id = ?", query.TableID)
	}
	if query.Day != nil {
		db = db.Where("ordered_at >= ? AND ordered_at < ?", query.Day.Start, query.Day.End)
	}
	err := db.Order("ordered_at DESC").Find(&orders).Error
	return orders, err
}

func (r *repository) SummaryByDate(ctx context.Context, day businessday.Day) (DaySummary, error) {
	var summary DaySummary
	err := r.db.WithContext(ctx).Model(&Order{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
		Where("ordered_at >= ? AND ordered_at < ? AND status <> ?", day.Start, day.End, StatusCancelled).
		Scan(&summary).Error
	return summary, err
}

func (r *repository) MarkCompletedOnOrBefore(ctx context.Context, day businessday.Day) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Order{}).
		Where("ordered_at < ? AND status NOT IN ?", day.End, []Status{StatusCompleted, StatusCancelled}).
		Update("status", StatusCompleted)
	return result.RowsAffected, result.Error
}
