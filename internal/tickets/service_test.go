package tickets_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"venueledger/internal/events"
	"venueledger/internal/shared/apperror"
	"venueledger/internal/shared/businessday"
	"venueledger/internal/shared/database/dbtest"
	"venueledger/internal/tickets"
	"venueledger/pkg/broker"
	"venueledger/pkg/broker/brokertest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ledger struct {
	db       *gorm.DB
	svc      tickets.Service
	repo     tickets.Repository
	recorder *brokertest.Recorder
	clock    *time.Time
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	db := dbtest.Open(t)
	clock := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	recorder := &brokertest.Recorder{}
	repo := tickets.NewRepository(db)
	catalog := events.NewService(events.NewRepository(db))
	svc := tickets.NewService(repo, catalog, recorder, tickets.WithClock(func() time.Time { return clock }))
	return &ledger{db: db, svc: svc, repo: repo, recorder: recorder, clock: &clock}
}

func (l *ledger) event(t *testing.T, prefix string, price int64, capacity int) *events.Event {
	t.Helper()
	ev := &events.Event{
		Name:             "Jazz Night " + prefix,
		StartsAt:         time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC),
		TicketPrice:      decimal.NewFromInt(price),
		TicketCodePrefix: prefix,
		Capacity:         capacity,
	}
	if err := events.NewRepository(l.db).Create(context.Background(), ev); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return ev
}

func (l *ledger) order(t *testing.T, eventID uuid.UUID, quantity int) *tickets.OrderResponse {
	t.Helper()
	order, err := l.svc.CreateOrder(context.Background(), uuid.New(), tickets.CreateOrderRequest{
		EventID:  eventID,
		Quantity: quantity,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return order
}

func codesOf(order *tickets.OrderResponse) []string {
	codes := make([]string, 0, len(order.Codes))
	for _, c := range order.Codes {
		codes = append(codes, c.Code)
	}
	return codes
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCreateOrderIssuesSequentialCodes(t *testing.T) {
	l := newLedger(t)
	ev := l.event(t, "JAZ", 500, 0)

	first := l.order(t, ev.ID, 3)
	if got := codesOf(first); !equalStrings(got, []string{"JAZ001", "JAZ002", "JAZ003"}) {
		t.Fatalf("codes = %v", got)
	}
	if first.Status != tickets.OrderStatusPending {
		t.Fatalf("status = %s", first.Status)
	}
	if !first.TotalAmount.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("total = %s", first.TotalAmount)
	}
	if len(first.Items) != 1 || first.Items[0].Quantity != 3 || !first.Items[0].LineTotal.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("items = %+v", first.Items)
	}
	for _, c := range first.Codes {
		if c.Status != tickets.CodeStatusIssued || c.ConfirmedAt != nil {
			t.Fatalf("fresh code %+v", c)
		}
	}

	second := l.order(t, ev.ID, 2)
	if got := codesOf(second); !equalStrings(got, []string{"JAZ004", "JAZ005"}) {
		t.Fatalf("second order codes = %v", got)
	}

	if types := l.recorder.Types(); len(types) != 2 || types[0] != broker.TypeTicketOrderCreated {
		t.Fatalf("published = %v", types)
	}
}

func TestCodeCounterIsSharedByPrefixAcrossEvents(t *testing.T) {
	l := newLedger(t)
	friday := l.event(t, "jaz", 500, 0)
	saturday := l.event(t, "JAZ", 700, 0)
	other := l.event(t, "RB", 300, 0)

	l.order(t, friday.ID, 2)
	sat := l.order(t, saturday.ID, 1)
	if got := codesOf(sat); !equalStrings(got, []string{"JAZ003"}) {
		t.Fatalf("codes = %v", got)
	}

	rb := l.order(t, other.ID, 1)
	if got := codesOf(rb); !equalStrings(got, []string{"RBX001"}) {
		t.Fatalf("padded prefix codes = %v", got)
	}
}

func TestCodesGrowPast999(t *testing.T) {
	l := newLedger(t)
	ev := l.event(t, "JAZ", 500, 0)
	first := l.order(t, ev.ID, 1)

	if err := l.db.Model(&tickets.Code{}).Where("order_id = ?", first.ID).Update("code", "JAZ998").Error; err != nil {
		t.Fatalf("rewind counter: %v", err)
	}

	next := l.order(t, ev.ID, 3)
	if got := codesOf(next); !equalStrings(got, []string{"JAZ999", "JAZ1000", "JAZ1001"}) {
		t.Fatalf("codes = %v", got)
	}
}

func TestCodesAreUniqueAcrossOrders(t *testing.T) {
	l := newLedger(t)
	ev := l.event(t, "JAZ", 500, 0)
	for i := 0; i < 5; i++ {
		l.order(t, ev.ID, 4)
	}

	var total, distinct int64
	l.db.Model(&tickets.Code{}).Count(&total)
	l.db.Model(&tickets.Code{}).Distinct("code").Count(&distinct)
	if total != 20 || distinct != total {
		t.Fatalf("total = %d, distinct = %d", total, distinct)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	l := newLedger(t)
	ev := l.event(t, "JAZ", 500, 0)
	ctx := context.Background()
	negative := decimal.NewFromInt(-1)

	cases := []struct {
		name  string
		req   tickets.CreateOrderRequest
		check func(error) bool
	}{
		{"zero quantity", tickets.CreateOrderRequest{EventID: ev.ID, Quantity: 0}, apperror.IsValidation},
		{"negative price", tickets.CreateOrderRequest{EventID: ev.ID, Quantity: 1, UnitPrice: &negative}, apperror.IsValidation},
		{"unknown event", tickets.CreateOrderRequest{EventID: uuid.New(), Quantity: 1}, apperror.IsNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := l.svc.CreateOrder(ctx, uuid.New(), tc.req); !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}

	var orders int64
	l.db.Model(&tickets.Order{}).Count(&orders)
	if orders != 0 {
		t.Fatalf("rejected orders must not be stored, found %d", orders)
	}
}

func TestCreateOrderUnitPriceOverride(t *testing.T) {
	l := newLedger(t)
	ev := l.event(t, "JAZ", 500, 0)
	price := decimal.RequireFromString("250.50")

	order, err := l.svc.CreateOrder(context.Background(), uuid.New(), tickets.CreateOrderRequest{
		EventID:   ev.ID,
		Quantity:  2,
		UnitPrice: &price,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("501")) {
		t.Fatalf("total = %s", order.TotalAmount)
	}
}

func TestCreateOrderRespectsEventCapacity(t *testing.T) {
	l := newLedger(t)
	ev := l.event(t, "JAZ", 500, 4)
	ctx := context.Background()

	first := l.order(t, ev.ID, 3)
	if _, err := l.svc.CreateOrder(ctx, uuid.New(), tickets.CreateOrderRequest{EventID: ev.ID, Quantity: 2}); !apperror.IsValidation(err) {
		t.Fatalf("expected capacity error, got %v", err)
	}

	// cancelled codes free their seats
	if _, err := l.svc.UpdateStatus(ctx, uuid.MustParse(first.ID), "cancelled"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if _, err := l.svc.CreateOrder(ctx, uuid.New(), tickets.CreateOrderRequest{EventID: ev.ID, Quantity: 4}); err != nil {
		t.Fatalf("CreateOrder after cancel: %v", err)
	}
}

func TestConfirmSingleIsIdempotent(t *testing.T) {
	l := newLedger(t)
	ev := l.event(t, "JAZ", 500, 0)
	order := l.order(t, ev.ID, 2)
	orderID := uuid.MustParse(order.ID)
	staff := uuid.New()
	ctx := context.Background()

	first, err := l.svc.ConfirmSingle(ctx, orderID, "JAZ001", tickets.Scan{StaffID: &staff})
	if err != nil {
		t.Fatalf("ConfirmSingle: %v", err)
	}
	if first.Code.Status != tickets.CodeStatusConfirmed || first.Code.ConfirmedAt == nil {
		t.Fatalf("code = %+v", first.Code)
	}
	if first.Code.CheckIn == nil || first.Code.CheckIn.SlotNo != 1 {
		t.Fatalf("check-in = %+v", first.Code.CheckIn)
	}
	if first.OrderStatus != tickets.OrderStatusPending {
		t.Fatalf("order must stay pending until every code is in, got %s", first.OrderStatus)
	}

	*l.clock = l.clock.Add(10 * time.Minute)
	note := "re-scan at bar"
	again, err := l.svc.ConfirmSingle(ctx, orderID, "jaz001", tickets.Scan{Note: &note})
	if err != nil {
		t.Fatalf("repeat ConfirmSingle: %v", err)
	}
	if !again.Code.ConfirmedAt.Equal(*first.Code.ConfirmedAt) {
		t.Fatalf("confirmed_at moved from %s to %s", first.Code.ConfirmedAt, again.Code.ConfirmedAt)
	}
	if again.Code.CheckIn.SlotNo != 1 || !again.Code.CheckIn.ScannedAt.Equal(*l.clock) {
		t.Fatalf("repeat check-in = %+v", again.Code.CheckIn)
	}
	if again.Code.CheckIn.Note == nil || *again.Code.CheckIn.Note != note {
		t.Fatalf("note not refreshed: %+v", again.Code.CheckIn)
	}

	var checkIns int64
	l.db.Model(&tickets.CheckIn{}).Count(&checkIns)
	if checkIns != 1 {
		t.Fatalf("check-in rows = %d, want 1", checkIns)
	}

	last, err := l.svc.ConfirmSingle(ctx, orderID, "JAZ002", tickets.Scan{StaffID: &staff})
	if err != nil {
		t.Fatalf("ConfirmSingle: %v", err)
	}
	if last.Code.CheckIn.SlotNo != 2 {
		t.Fatalf("slot = %d, want 2", last.Code.CheckIn.SlotNo)
	}
	if last.OrderStatus != tickets.OrderStatusConfirmed {
		t.Fatalf("order status = %s", last.OrderStatus)
	}

	got, err := l.svc.Get(ctx, orderID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PaidAt == nil || got.VerifiedAt == nil {
		t.Fatalf("confirmed order must carry payment stamps: %+v", got)
	}
	if !equalStrings(got.ConfirmedCodes, []string{"JAZ001", "JAZ002"}) {
		t.Fatalf("confirmed codes = %v", got.ConfirmedCodes)
	}
}

func TestConfirmSingleScopesCodeToOrder(t *testing.T) {
	l := newLedger(t)
	ev := l.event(t, "JAZ", 500, 0)
	a := l.order(t, ev.ID, 1)
	l.order(t, ev.ID, 1)

	_, err := l.svc.ConfirmSingle(context.Background(), uuid.MustParse(a.ID), "JAZ002", tickets.Scan{})
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = l.svc.ConfirmSingle(context.Background(), uuid.New(), "JAZ001", tickets.Scan{})
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for unknown order, got %v", err)
	}
}

func TestConfirmAllAssignsSlotsInCodeOrder(t *testing.T) {
	l := newLedger(t)
	ev := l.event(t, "JAZ", 500, 0)
	order := l.order(t, ev.ID, 3)
	orderID := uuid.MustParse(order.ID)
	ctx := context.Background()

	confirmed, err := l.svc.ConfirmAll(ctx, orderID, tickets.Scan{})
	if err != nil {
		t.Fatalf("ConfirmAll: %v", err)
	}
	if confirmed.Status != tickets.OrderStatusConfirmed {
		t.Fatalf("status = %s", confirmed.Status)
	}
	for i, c := range confirmed.Codes {
		if c.Status != tickets.CodeStatusConfirmed || c.CheckIn == nil || c.CheckIn.SlotNo != i+1 {
			t.Fatalf("code %d = %+v", i, c)
		}
	}

	*l.clock = l.clock.Add(time.Hour)
	again, err := l.svc.ConfirmAll(ctx, orderID, tickets.Scan{})
	if err != nil {
		t.Fatalf("repeat ConfirmAll: %v", err)
	}
	for i, c := range again.Codes {
		if !c.ConfirmedAt.Equal(*confirmed.Codes[i].ConfirmedAt) {
			t.Fatalf("confirmed_at changed for %s", c.Code)
		}
		if c.CheckIn.SlotNo != i+1 {
			t.Fatalf("slot changed for %s", c.Code)
		}
	}

	var checkIns int64
	l.db.Model(&tickets.CheckIn{}).Count(&checkIns)
	if checkIns != 3 {
		t.Fatalf("check-in rows = %d", checkIns)
	}

	if _, err := l.svc.ConfirmAll(ctx, uuid.New(), tickets.Scan{}); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// staleSlotRepo writes the first check-ins with the slot a scanner would
// have read before a concurrent first scan committed
type staleSlotRepo struct {
	tickets.Repository
	db    *gorm.DB
	stale *int
	calls *int
}

func (r staleSlotRepo) Transaction(ctx context.Context, fn func(repo tickets.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(staleSlotRepo{Repository: tickets.NewRepository(tx), db: tx, stale: r.stale, calls: r.calls})
	})
}

func (r staleSlotRepo) UpsertCheckIn(ctx context.Context, code *tickets.Code, scan tickets.Scan, at time.Time) (*tickets.CheckIn, error) {
	*r.calls++
	if *r.stale > 0 {
		*r.stale--
		row := tickets.CheckIn{TicketCodeID: code.ID, OrderItemID: code.OrderItemID, SlotNo: 1, ScannedAt: at}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
		return &row, nil
	}
	return r.Repository.UpsertCheckIn(ctx, code, scan, at)
}

func (l *ledger) admitOther(t *testing.T, code string) {
	t.Helper()
	var c tickets.Code
	if err := l.db.Where("code = ?", code).First(&c).Error; err != nil {
		t.Fatalf("find code: %v", err)
	}
	winner := tickets.CheckIn{TicketCodeID: c.ID, OrderItemID: c.OrderItemID, SlotNo: 1, ScannedAt: *l.clock}
	if err := l.db.Create(&winner).Error; err != nil {
		t.Fatalf("winner check-in: %v", err)
	}
}

func TestConfirmSingleRetriesLostSlot(t *testing.T) {
	l := newLedger(t)
	ev := l.event(t, "JAZ", 500, 0)
	order := l.order(t, ev.ID, 2)
	orderID := uuid.MustParse(order.ID)
	ctx := context.Background()

	l.admitOther(t, "JAZ002")

	stale, calls := 1, 0
	repo := staleSlotRepo{Repository: l.repo, db: l.db, stale: &stale, calls: &calls}
	svc := tickets.NewService(repo, events.NewService(events.NewRepository(l.db)), l.recorder,
		tickets.WithClock(func() time.Time { return *l.clock }))

	scanned, err := svc.ConfirmSingle(ctx, orderID, "JAZ001", tickets.Scan{})
	if err != nil {
		t.Fatalf("ConfirmSingle: %v", err)
	}
	if calls != 2 {
		t.Fatalf("check-in attempts = %d, want 2", calls)
	}
	if scanned.Code.CheckIn == nil || scanned.Code.CheckIn.SlotNo != 2 {
		t.Fatalf("check-in = %+v", scanned.Code.CheckIn)
	}

	var checkIns int64
	l.db.Model(&tickets.CheckIn{}).Count(&checkIns)
	if checkIns != 2 {
		t.Fatalf("check-in rows = %d, want 2", checkIns)
	}
}

func TestConfirmAllGivesUpOnBusySlots(t *testing.T) {
	l := newLedger(t)
	ev := l.event(t, "JAZ", 500, 0)
	order := l.order(t, ev.ID, 2)
	orderID := uuid.MustParse(order.ID)
	ctx := context.Background()

	l.admitOther(t, "JAZ002")

	stale, calls := 10, 0
	repo := staleSlotRepo{Repository: l.repo, db: l.db, stale: &stale, calls: &calls}
	svc := tickets.NewService(repo, events.NewService(events.NewRepository(l.db)), l.recorder,
		tickets.WithClock(func() time.Time { return *l.clock }))

	_, err := svc.ConfirmAll(ctx, orderID, tickets.Scan{})
	if !errors.Is(err, tickets.ErrCheckInBusy) || !apperror.IsConflict(err) {
		t.Fatalf("expected check-in busy conflict, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("check-in attempts = %d, want 3", calls)
	}

	got, err := l.svc.Get(ctx, orderID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != tickets.OrderStatusPending || len(got.ConfirmedCodes) != 0 {
		t.Fatalf("failed confirm must roll back: %+v", got)
	}
}

func TestUpdateStatus(t *testing.T) {
	l := newLedger(t)
	ev := l.event(t, "JAZ", 500, 0)
	order := l.order(t, ev.ID, 2)
	orderID := uuid.MustParse(order.ID)
	ctx := context.Background()

	if _, err := l.svc.UpdateStatus(ctx, orderID, "completed"); !apperror.IsValidation(err) {
		t.Fatalf("completed must not be settable, got %v", err)
	}
	if _, err := l.svc.UpdateStatus(ctx, uuid.New(), "confirmed"); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	confirmed, err := l.svc.UpdateStatus(ctx, orderID, "CONFIRMED")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if confirmed.Status != tickets.OrderStatusConfirmed || confirmed.PaidAt == nil || confirmed.VerifiedAt == nil {
		t.Fatalf("confirmed = %+v", confirmed)
	}

	cancelled, err := l.svc.UpdateStatus(ctx, orderID, "cancelled")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if cancelled.PaidAt != nil || cancelled.VerifiedAt != nil {
		t.Fatalf("cancel must clear stamps: %+v", cancelled)
	}
	for _, c := range cancelled.Codes {
		if c.Status != tickets.CodeStatusCancelled {
			t.Fatalf("code %s = %s", c.Code, c.Status)
		}
	}
	if _, err := l.svc.ConfirmSingle(ctx, orderID, "JAZ001", tickets.Scan{}); !apperror.IsConflict(err) {
		t.Fatalf("scan of cancelled order must conflict, got %v", err)
	}

	reopened, err := l.svc.UpdateStatus(ctx, orderID, "pending")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	for _, c := range reopened.Codes {
		if c.Status != tickets.CodeStatusIssued {
			t.Fatalf("reopened code %s = %s", c.Code, c.Status)
		}
	}
}

func TestListFiltersByBuyerNewestFirst(t *testing.T) {
	l := newLedger(t)
	ev := l.event(t, "JAZ", 500, 0)
	ctx := context.Background()
	buyer := uuid.New()

	for i := 0; i < 3; i++ {
		*l.clock = l.clock.Add(time.Minute)
		if _, err := l.svc.CreateOrder(ctx, buyer, tickets.CreateOrderRequest{EventID: ev.ID, Quantity: 1}); err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
	}
	l.order(t, ev.ID, 1)

	page, err := l.svc.List(ctx, tickets.ListOrdersQuery{BuyerID: buyer.String()})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalCount != 3 || len(page.Orders) != 3 {
		t.Fatalf("page = %+v", page)
	}
	if !page.Orders[0].CreatedAt.After(page.Orders[2].CreatedAt) {
		t.Fatalf("orders not newest first")
	}
	if got := page.Orders[0].Codes[0].Code; got != "JAZ003" {
		t.Fatalf("newest order code = %s", got)
	}
}

func TestSummaryExcludesCancelledOrders(t *testing.T) {
	l := newLedger(t)
	ev := l.event(t, "JAZ", 500, 0)
	ctx := context.Background()

	l.order(t, ev.ID, 3)
	l.order(t, ev.ID, 1)
	cancelled := l.order(t, ev.ID, 5)
	if _, err := l.svc.UpdateStatus(ctx, uuid.MustParse(cancelled.ID), "cancelled"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	day := businessday.Of(*l.clock, time.UTC)
	summary, err := l.repo.SummaryByDate(ctx, day)
	if err != nil {
		t.Fatalf("SummaryByDate: %v", err)
	}
	if summary.Count != 4 || summary.Orders != 2 || !summary.Amount.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("summary = %+v", summary)
	}

	completed, err := l.repo.MarkCompletedOnOrBefore(ctx, day)
	if err != nil {
		t.Fatalf("MarkCompletedOnOrBefore: %v", err)
	}
	if completed != 2 {
		t.Fatalf("completed = %d, want 2", completed)
	}
}
