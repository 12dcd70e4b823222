package tickets

import (
	"context"
	"errors"
	"strings"
	"time"

	"venueledger/internal/shared/businessday"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Transaction runs fn against a repository bound to one transaction
	Transaction(ctx context.Context, fn func(repo Repository) error) error
	// WithTx binds the repository to a transaction owned by another component
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *Order, item *OrderItem, codes []Code) error
	CodesWithPrefix(ctx context.Context, prefix string) ([]string, error)
	CountLiveCodesForEvent(ctx context.Context, eventID uuid.UUID) (int64, error)

	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderHeader(ctx context.Context, id uuid.UUID) (*Order, error)
	FindCodeInOrder(ctx context.Context, orderID uuid.UUID, code string) (*Code, error)
	ListCodes(ctx context.Context, orderID uuid.UUID) ([]Code, error)
	CountUnconfirmedCodes(ctx context.Context, orderID uuid.UUID) (int64, error)

	ConfirmCode(ctx context.Context, codeID uuid.UUID, at time.Time) error
	ConfirmAllCodes(ctx context.Context, orderID uuid.UUID, at time.Time) (int64, error)
	SetCodeStatus(ctx context.Context, orderID uuid.UUID, from, to CodeStatus) (int64, error)
	UpsertCheckIn(ctx context.Context, code *Code, scan Scan, at time.Time) (*CheckIn, error)

	MarkOrderConfirmed(ctx context.Context, orderID uuid.UUID, at time.Time) error
	SetOrderStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus) error
	List(ctx context.Context, query ListOrdersQuery) ([]Order, int64, error)

	SummaryByDate(ctx context.Context, day businessday.Day) (DaySummary, error)
	MarkCompletedOnOrBefore(ctx context.Context, day businessday.Day) (int64, error)
}

// Scan describes who admitted a code at the door
type Scan struct {
	StaffID *uuid.UUID
	Note    *string
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *Order, item *OrderItem, codes []Code) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}

	item.OrderID = order.ID
	if err := db.Create(item).Error; err != nil {
		return err
	}

	for i := range codes {
		codes[i].OrderID = order.ID
		codes[i].OrderItemID = item.ID
	}
	return db.Omit(clause.Associations).Create(&codes).Error
}

// CodesWithPrefix returns every stored code sharing prefix, across all events
func (r *repository) CodesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Model(&Code{}).
		Where("code LIKE ?", prefix+"%").
		Pluck("code", &codes).Error
	return codes, err
}

func (r *repository) CountLiveCodesForEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Code{}).
		Joins("JOIN ticket_order_items ON ticket_order_items.id = ticket_codes.order_item_id").
		Where("ticket_order_items.event_id = ? AND ticket_codes.status <> ?", eventID, CodeStatusCancelled).
		Count(&count).Error
	return count, err
}

func (r *repository) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Codes", orderCodes).
		Preload("Codes.CheckIn").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) GetOrderHeader(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindCodeInOrder(ctx context.Context, orderID uuid.UUID, code string) (*Code, error) {
	var c Code
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND code = ?", orderID, strings.ToUpper(strings.TrimSpace(code))).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListCodes returns the order's codes in issue order
func (r *repository) ListCodes(ctx context.Context, orderID uuid.UUID) ([]Code, error) {
	var codes []Code
	err := orderCodes(r.db.WithContext(ctx)).Where("order_id = ?", orderID).Find(&codes).Error
	return codes, err
}

func (r *repository) CountUnconfirmedCodes(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Code{}).
		Where("order_id = ? AND status <> ?", orderID, CodeStatusConfirmed).
		Count(&count).Error
	return count, err
}

// ConfirmCode sets confirmed_at only on the first confirmation
func (r *repository) ConfirmCode(ctx context.Context, codeID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&Code{}).
		Where("id = ? AND status = ?", codeID, CodeStatusIssued).
		Updates(map[string]interface{}{
			"status":       CodeStatusConfirmed,
			"confirmed_at": at,
			"updated_at":   at,
		}).Error
}

func (r *repository) ConfirmAllCodes(ctx context.Context, orderID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Code{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":       CodeStatusConfirmed,
			"confirmed_at": gorm.Expr("COALESCE(confirmed_at, ?)", at),
			"updated_at":   at,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) SetCodeStatus(ctx context.Context, orderID uuid.UUID, from, to CodeStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Code{}).
		Where("order_id = ? AND status = ?", orderID, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// UpsertCheckIn keeps one row per code. The slot is fixed on the first scan;
// later scans only refresh who scanned and when.
func (r *repository) UpsertCheckIn(ctx context.Context, code *Code, scan Scan, at time.Time) (*CheckIn, error) {
	db := r.db.WithContext(ctx)

	var existing CheckIn
	err := db.Where("ticket_code_id = ?", code.ID).First(&existing).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		var maxSlot int
		if err := db.Model(&CheckIn{}).
			Where("order_item_id = ?", code.OrderItemID).
			Select("COALESCE(MAX(slot_no), 0)").
			Scan(&maxSlot).Error; err != nil {
			return nil, err
		}
		existing.SlotNo = maxSlot + 1
	default:
		return nil, err
	}

	row := CheckIn{
		TicketCodeID: code.ID,
		OrderItemID:  code.OrderItemID,
		SlotNo:       existing.SlotNo,
		ScannedAt:    at,
		StaffID:      scan.StaffID,
		Note:         scan.Note,
	}
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ticket_code_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"scanned_at": at,
			"staff_id":   scan.StaffID,
			"note":       gorm.Expr("COALESCE(excluded.note, ticket_checkins.note)"),
			"updated_at": at,
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	var stored CheckIn
	if err := db.Where("ticket_code_id = ?", code.ID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// MarkOrderConfirmed keeps the first paid/verified stamps on repeat confirmations
func (r *repository) MarkOrderConfirmed(ctx context.Context, orderID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":      OrderStatusConfirmed,
			"paid_at":     gorm.Expr("COALESCE(paid_at, ?)", at),
			"verified_at": gorm.Expr("COALESCE(verified_at, ?)", at),
			"updated_at":  at,
		}).Error
}

// SetOrderStatus writes a non-confirmed status and clears the payment stamps
func (r *repository) SetOrderStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus) error {
	return r.db.WithContext(ctx).Model(&Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":      status,
			"paid_at":     nil,
			"verified_at": nil,
		}).Error
}

func (r *repository) List(ctx context.Context, query ListOrdersQuery) ([]Order, int64, error) {
	var orders []Order
	var total int64

	db := r.db.WithContext(ctx).Model(&Order{})
	if query.BuyerID != "" {
		db = db.Where("buyer_id = ?", query.BuyerID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := db.Preload("Items").
		Preload("Codes", orderCodes).
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// SummaryByDate aggregates items of non-cancelled orders created within day
func (r *repository) SummaryByDate(ctx context.Context, day businessday.Day) (DaySummary, error) {
	var summary DaySummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(i.quantity), 0) AS count,
		       COALESCE(SUM(i.line_total), 0) AS amount,
		       COUNT(DISTINCT o.id) AS orders
		FROM ticket_order_items i
		JOIN ticket_orders o ON o.id = i.order_id
		WHERE o.created_at >= ? AND o.created_at < ? AND o.status <> ?`,
		day.Start, day.End, OrderStatusCancelled).
		Scan(&summary).Error
	return summary, err
}

func (r *repository) MarkCompletedOnOrBefore(ctx context.Context, day businessday.Day) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Order{}).
		Where("created_at < ? AND status IN ?", day.End, []OrderStatus{OrderStatusPending, OrderStatusConfirmed}).
		Update("status", OrderStatusCompleted)
	return result.RowsAffected, result.Error
}

// orderCodes sorts codes numerically; JAZ1000 must follow JAZ999
func orderCodes(db *gorm.DB) *gorm.DB {
	return db.Order("LENGTH(code) ASC").Order("code ASC")
}
