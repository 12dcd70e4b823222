package tickets

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"venueledger/internal/events"
	"venueledger/internal/shared/apperror"
	"venueledger/pkg/broker"
	"venueledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// a concurrent order on the same prefix can take our codes between the
// counter read and the insert; a concurrent first scan on the same item can
// take our check-in slot the same way
const maxCodeAttempts = 3

type Service interface {
	CreateOrder(ctx context.Context, buyerID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error)
	ConfirmSingle(ctx context.Context, orderID uuid.UUID, code string, scan Scan) (*ScanResponse, error)
	ConfirmAll(ctx context.Context, orderID uuid.UUID, scan Scan) (*OrderResponse, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*OrderResponse, error)
	List(ctx context.Context, query ListOrdersQuery) (*PaginatedOrders, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error)
}

type service struct {
	repo      Repository
	catalog   events.Catalog
	publisher broker.Publisher
	now       func() time.Time
}

type Option func(*service)

// WithClock overrides the time source used for ledger stamps
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

func NewService(repo Repository, catalog events.Catalog, publisher broker.Publisher, opts ...Option) Service {
	s := &service{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateOrder(ctx context.Context, buyerID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	event, err := s.catalog.Find(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	unitPrice := event.TicketPrice
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, ErrInvalidUnitPrice
		}
		unitPrice = *req.UnitPrice
	}

	var orderID uuid.UUID
	for attempt := 1; ; attempt++ {
		orderID, err = s.createOrder(ctx, event, buyerID, req.Quantity, unitPrice)
		if err == nil {
			break
		}
		if !isDuplicateKey(err) {
			return nil, err
		}
		if attempt == maxCodeAttempts {
			return nil, apperror.Wrap(ErrCodeAllocationBusy, err)
		}
		logger.GetDefault().WarnContext(ctx, "ticket code collision, retrying", "event_id", event.ID.String(), "attempt", attempt)
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := order.ToResponse()

	codes := make([]string, 0, len(order.Codes))
	for _, c := range order.Codes {
		codes = append(codes, c.Code)
	}
	logger.GetDefault().LogOrderCreated(ctx, order.ID.String(), event.ID.String(), req.Quantity)
	broker.Notify(ctx, s.publisher, broker.NewEvent(broker.TypeTicketOrderCreated, order.ID.String(), map[string]interface{}{
		"order_id": order.ID.String(),
		"event_id": event.ID.String(),
		"buyer_id": buyerID.String(),
		"quantity": req.Quantity,
		"total":    order.TotalAmount.StringFixed(2),
		"codes":    codes,
	}))

	return &resp, nil
}

// createOrder writes the order, its single item and all codes in one transaction
func (s *service) createOrder(ctx context.Context, event *events.Event, buyerID uuid.UUID, quantity int, unitPrice decimal.Decimal) (uuid.UUID, error) {
	now := s.now().UTC()
	total := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	prefix := NormalizePrefix(event.TicketCodePrefix)

	order := &Order{
		BuyerID:     buyerID,
		Status:      OrderStatusPending,
		TotalAmount: total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		if event.Capacity > 0 {
			live, err := repo.CountLiveCodesForEvent(ctx, event.ID)
			if err != nil {
				return err
			}
			if live+int64(quantity) > int64(event.Capacity) {
				return ErrCapacityExceeded
			}
		}

		existing, err := repo.CodesWithPrefix(ctx, prefix)
		if err != nil {
			return err
		}

		item := &OrderItem{
			EventID:   event.ID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
			LineTotal: total,
			CreatedAt: now,
		}

		generated := nextCodes(prefix, maxSuffix(existing, prefix), quantity)
		codes := make([]Code, len(generated))
		for i, code := range generated {
			codes[i] = Code{
				Code:      code,
				Status:    CodeStatusIssued,
				CreatedAt: now,
				UpdatedAt: now,
			}
		}

		return repo.CreateOrder(ctx, order, item, codes)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return order.ID, nil
}

func (s *service) ConfirmSingle(ctx context.Context, orderID uuid.UUID, code string, scan Scan) (*ScanResponse, error) {
	var (
		confirmed   *Code
		orderStatus OrderStatus
		flipped     bool
	)

	err := s.checkInTx(ctx, orderID, func(repo Repository) error {
		flipped = false
		order, err := repo.GetOrderHeader(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == OrderStatusCancelled {
			return ErrOrderCancelled
		}

		c, err := repo.FindCodeInOrder(ctx, orderID, code)
		if err != nil {
			return err
		}
		if c.Status == CodeStatusCancelled {
			return ErrCodeCancelled
		}

		now := s.now().UTC()
		if c.Status != CodeStatusConfirmed {
			if err := repo.ConfirmCode(ctx, c.ID, now); err != nil {
				return err
			}
		}

		checkIn, err := repo.UpsertCheckIn(ctx, c, scan, now)
		if err != nil {
			return err
		}

		remaining, err := repo.CountUnconfirmedCodes(ctx, orderID)
		if err != nil {
			return err
		}
		orderStatus = order.Status
		if remaining == 0 && order.Status == OrderStatusPending {
			if err := repo.MarkOrderConfirmed(ctx, orderID, now); err != nil {
				return err
			}
			orderStatus = OrderStatusConfirmed
			flipped = true
		}

		confirmed, err = repo.FindCodeInOrder(ctx, orderID, c.Code)
		if err != nil {
			return err
		}
		confirmed.CheckIn = checkIn
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.GetDefault().LogCheckIn(ctx, orderID.String(), []string{confirmed.Code})
	broker.Notify(ctx, s.publisher, broker.NewEvent(broker.TypeTicketCheckedIn, orderID.String(), map[string]interface{}{
		"order_id": orderID.String(),
		"codes":    []string{confirmed.Code},
		"slot_no":  confirmed.CheckIn.SlotNo,
	}))
	if flipped {
		s.notifyStatusChange(ctx, orderID, OrderStatusConfirmed)
	}

	return &ScanResponse{
		OrderID:     orderID.String(),
		OrderStatus: orderStatus,
		Code:        confirmed.ToResponse(),
	}, nil
}

func (s *service) ConfirmAll(ctx context.Context, orderID uuid.UUID, scan Scan) (*OrderResponse, error) {
	var scanned []string

	err := s.checkInTx(ctx, orderID, func(repo Repository) error {
		scanned = scanned[:0]
		order, err := repo.GetOrderHeader(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == OrderStatusCancelled {
			return ErrOrderCancelled
		}

		codes, err := repo.ListCodes(ctx, orderID)
		if err != nil {
			return err
		}
		if len(codes) == 0 {
			return ErrNoCodes
		}

		now := s.now().UTC()
		if _, err := repo.ConfirmAllCodes(ctx, orderID, now); err != nil {
			return err
		}

		// codes come back in issue order, so first scans get slots 1..n
		for i := range codes {
			if _, err := repo.UpsertCheckIn(ctx, &codes[i], scan, now); err != nil {
				return err
			}
			scanned = append(scanned, codes[i].Code)
		}

		if order.Status.IsOpen() {
			return repo.MarkOrderConfirmed(ctx, orderID, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.GetDefault().LogCheckIn(ctx, orderID.String(), scanned)
	broker.Notify(ctx, s.publisher, broker.NewEvent(broker.TypeTicketCheckedIn, orderID.String(), map[string]interface{}{
		"order_id": orderID.String(),
		"codes":    scanned,
	}))
	s.notifyStatusChange(ctx, orderID, OrderStatusConfirmed)

	return s.Get(ctx, orderID)
}

// checkInTx reruns a confirm transaction whose check-in slot was taken by a
// concurrent first scan of another code on the same item
func (s *service) checkInTx(ctx context.Context, orderID uuid.UUID, fn func(repo Repository) error) error {
	for attempt := 1; ; attempt++ {
		err := s.repo.Transaction(ctx, fn)
		if err == nil || !isDuplicateKey(err) {
			return err
		}
		if attempt == maxCodeAttempts {
			return apperror.Wrap(ErrCheckInBusy, err)
		}
		logger.GetDefault().WarnContext(ctx, "check-in slot collision, retrying", "order_id", orderID.String(), "attempt", attempt)
	}
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, raw string) (*OrderResponse, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		order, err := repo.GetOrderHeader(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == OrderStatusCompleted {
			return ErrOrderSettled
		}

		if status == OrderStatusConfirmed {
			err = repo.MarkOrderConfirmed(ctx, orderID, s.now().UTC())
		} else {
			err = repo.SetOrderStatus(ctx, orderID, status)
		}
		if err != nil {
			return err
		}

		switch {
		case status == OrderStatusCancelled:
			_, err = repo.SetCodeStatus(ctx, orderID, CodeStatusIssued, CodeStatusCancelled)
		case order.Status == OrderStatusCancelled:
			// reopening a cancelled order reissues its codes
			_, err = repo.SetCodeStatus(ctx, orderID, CodeStatusCancelled, CodeStatusIssued)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatusChange(ctx, orderID, status)
	return s.Get(ctx, orderID)
}

func (s *service) List(ctx context.Context, query ListOrdersQuery) (*PaginatedOrders, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	orders, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = orders[i].ToResponse()
	}

	return &PaginatedOrders{
		Orders:     responses,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(query.Limit))),
	}, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := order.ToResponse()
	return &resp, nil
}

func (s *service) notifyStatusChange(ctx context.Context, orderID uuid.UUID, status OrderStatus) {
	broker.Notify(ctx, s.publisher, broker.NewEvent(broker.TypeTicketOrderStatusChanged, orderID.String(), map[string]interface{}{
		"order_id": orderID.String(),
		"status":   status.String(),
	}))
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
