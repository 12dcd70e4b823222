package tables

import (
	"context"
	"errors"
	"time"

	"venueledger/internal/shared/businessday"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(repo Repository) error) error
	WithTx(tx *gorm.DB) Repository

	CreateTable(ctx context.Context, table *Table) error
	GetTable(ctx context.Context, id uuid.UUID) (*Table, error)
	ListTables(ctx context.Context) ([]Table, error)
	SetTableActive(ctx context.Context, id uuid.UUID, active bool) error

	CreateReservation(ctx context.Context, reservation *Reservation) error
	GetReservation(ctx context.Context, id uuid.UUID) (*Reservation, error)
	ListReservations(ctx context.Context, query ReservationListQuery) ([]Reservation, error)
	AssignIfFree(ctx context.Context, params AssignParams) (int64, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to ReservationStatus, at time.Time) (int64, error)

	TableOccupied(ctx context.Context, tableID uuid.UUID) (bool, error)
	OccupiedTableIDs(ctx context.Context, eventID *uuid.UUID) (map[uuid.UUID]bool, error)

	CompleteOnOrBefore(ctx context.Context, day businessday.Day) (int64, error)
	ReleaseTablesOnOrBefore(ctx context.Context, day businessday.Day) (int64, error)
}

// AssignParams drives the conditional assignment update
type AssignParams struct {
	ReservationID uuid.UUID
	TableID       uuid.UUID
	EventID       uuid.UUID
	// FromStatuses restricts which reservation statuses may take a table;
	// empty means any
	FromStatuses []ReservationStatus
	// Confirm moves the reservation to confirmed unless it is already seated
	Confirm bool
	At      time.Time
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

func (r *repository) CreateTable(ctx context.Context, table *Table) error {
	return r.db.WithContext(ctx).Create(table).Error
}

func (r *repository) GetTable(ctx context.Context, id uuid.UUID) (*Table, error) {
	var table Table
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &table, nil
}

func (r *repository) ListTables(ctx context.Context) ([]Table, error) {
	var tables []Table
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tables).Error
	return tables, err
}

func (r *repository) SetTableActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := r.db.WithContext(ctx).Model(&Table{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTableNotFound
	}
	return nil
}

func (r *repository) CreateReservation(ctx context.Context, reservation *Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *repository) GetReservation(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) ListReservations(ctx context.Context, query ReservationListQuery) ([]Reservation, error) {
	var reservations []Reservation

	db := r.db.WithContext(ctx).Model(&Reservation{})
	if query.EventID != "" {
		db = db.Where("event_id = ?", query.EventID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Day != nil {
		db = db.Where("reserved_at >= ? AND reserved_at < ?", query.Day.Start, query.Day.End)
	}

	err := db.Order("reserved_at ASC").Find(&reservations).Error
	return reservations, err
}

// AssignIfFree sets the table in one statement, and only when no other
// active reservation of the same event holds it through either path.
func (r *repository) AssignIfFree(ctx context.Context, p AssignParams) (int64, error) {
	statusExpr := gorm.Expr("status")
	if p.Confirm {
		statusExpr = gorm.Expr("CASE WHEN status = ? THEN ? ELSE ? END", StatusSeated, StatusSeated, StatusConfirmed)
	}

	directHolder := r.db.Model(&Reservation{}).
		Select("1").
		Where("assigned_table_id = ? AND event_id = ? AND id <> ? AND status IN ?",
			p.TableID, p.EventID, p.ReservationID, ActiveStatuses)

	joinHolder := r.db.Table("reservation_tables AS rt").
		Select("1").
		Joins("JOIN reservations AS other ON other.id = rt.reservation_id").
		Where("rt.table_id = ? AND other.event_id = ? AND other.id <> ? AND other.status IN ?",
			p.TableID, p.EventID, p.ReservationID, ActiveStatuses)

	db := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("id = ?", p.ReservationID).
		Where("NOT EXISTS (?)", directHolder).
		Where("NOT EXISTS (?)", joinHolder)
	if len(p.FromStatuses) > 0 {
		db = db.Where("status IN ?", p.FromStatuses)
	}

	result := db.Updates(map[string]interface{}{
		"assigned_table_id": p.TableID,
		"status":            statusExpr,
		"updated_at":        p.At,
	})
	return result.RowsAffected, result.Error
}

// UpdateStatusFrom is a compare-and-swap on the current status
func (r *repository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to ReservationStatus, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": at,
		})
	return result.RowsAffected, result.Error
}

// TableOccupied checks every event; the association path counts too
func (r *repository) TableOccupied(ctx context.Context, tableID uuid.UUID) (bool, error) {
	var direct int64
	err := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("assigned_table_id = ? AND status IN ?", tableID, ActiveStatuses).
		Count(&direct).Error
	if err != nil {
		return false, err
	}
	if direct > 0 {
		return true, nil
	}

	var viaJoin int64
	err = r.db.WithContext(ctx).Table("reservation_tables AS rt").
		Joins("JOIN reservations AS r ON r.id = rt.reservation_id").
		Where("rt.table_id = ? AND r.status IN ?", tableID, ActiveStatuses).
		Count(&viaJoin).Error
	if err != nil {
		return false, err
	}
	return viaJoin > 0, nil
}

// OccupiedTableIDs collects tables held by active reservations, optionally
// only those of one event
func (r *repository) OccupiedTableIDs(ctx context.Context, eventID *uuid.UUID) (map[uuid.UUID]bool, error) {
	direct := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("assigned_table_id IS NOT NULL AND status IN ?", ActiveStatuses)
	viaJoin := r.db.WithContext(ctx).Table("reservation_tables AS rt").
		Joins("JOIN reservations AS r ON r.id = rt.reservation_id").
		Where("r.status IN ?", ActiveStatuses)
	if eventID != nil {
		direct = direct.Where("event_id = ?", *eventID)
		viaJoin = viaJoin.Where("r.event_id = ?", *eventID)
	}

	var directIDs, joinIDs []uuid.UUID
	if err := direct.Pluck("assigned_table_id", &directIDs).Error; err != nil {
		return nil, err
	}
	if err := viaJoin.Pluck("rt.table_id", &joinIDs).Error; err != nil {
		return nil, err
	}

	occupied := make(map[uuid.UUID]bool, len(directIDs)+len(joinIDs))
	for _, id := range directIDs {
		occupied[id] = true
	}
	for _, id := range joinIDs {
		occupied[id] = true
	}
	return occupied, nil
}

func (r *repository) CompleteOnOrBefore(ctx context.Context, day businessday.Day) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("reserved_at < ? AND status IN ?", day.End, ActiveStatuses).
		Update("status", StatusCompleted)
	return result.RowsAffected, result.Error
}

func (r *repository) ReleaseTablesOnOrBefore(ctx context.Context, day businessday.Day) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("reserved_at < ? AND assigned_table_id IS NOT NULL", day.End).
		Update("assigned_table_id", nil)
	return result.RowsAffected, result.Error
}
