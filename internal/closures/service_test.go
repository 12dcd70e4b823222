package closures_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"venueledger/internal/closures"
	"venueledger/internal/events"
	"venueledger/internal/fnb"
	"venueledger/internal/sessions"
	"venueledger/internal/shared/apperror"
	"venueledger/internal/shared/businessday"
	"venueledger/internal/shared/database/dbtest"
	"venueledger/internal/tables"
	"venueledger/internal/tickets"
	"venueledger/pkg/broker"
	"venueledger/pkg/broker/brokertest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var closeClock = time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)

type venue struct {
	db       *gorm.DB
	recorder *brokertest.Recorder
	event    *events.Event
	tickets  tickets.Service
}

func newVenue(t *testing.T) *venue {
	t.Helper()
	db := dbtest.Open(t)
	v := &venue{db: db, recorder: &brokertest.Recorder{}}

	v.event = &events.Event{
		Name:             "Friday Jazz",
		StartsAt:         time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC),
		TicketPrice:      decimal.NewFromInt(500),
		TicketCodePrefix: "JAZ",
	}
	if err := events.NewRepository(db).Create(context.Background(), v.event); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return v
}

func (v *venue) service(opts ...closures.Option) closures.Service {
	opts = append([]closures.Option{closures.WithClock(func() time.Time { return closeClock })}, opts...)
	return closures.NewService(v.db, v.recorder, closures.Config{Location: time.UTC}, opts...)
}

func (v *venue) sellTickets(t *testing.T, at time.Time, quantity int) uuid.UUID {
	t.Helper()
	svc := tickets.NewService(tickets.NewRepository(v.db), events.NewService(events.NewRepository(v.db)), v.recorder,
		tickets.WithClock(func() time.Time { return at }))
	order, err := svc.CreateOrder(context.Background(), uuid.New(), tickets.CreateOrderRequest{
		EventID:  v.event.ID,
		Quantity: quantity,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return uuid.MustParse(order.ID)
}

func (v *venue) table(t *testing.T, name string) *tables.Table {
	t.Helper()
	table := &tables.Table{Name: name, Capacity: 4, IsActive: true}
	if err := v.db.Create(table).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	return table
}

func (v *venue) reservation(t *testing.T, at time.Time, status tables.ReservationStatus, tableID *uuid.UUID) *tables.Reservation {
	t.Helper()
	res := &tables.Reservation{
		BuyerID:         uuid.New(),
		EventID:         v.event.ID,
		PartySize:       2,
		ReservedAt:      at,
		Status:          status,
		AssignedTableID: tableID,
	}
	if err := v.db.Create(res).Error; err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	return res
}

func (v *venue) fnbOrder(t *testing.T, at time.Time, amount int64, status fnb.Status) *fnb.Order {
	t.Helper()
	order := &fnb.Order{Status: status, TotalAmount: decimal.NewFromInt(amount), OrderedAt: at}
	if err := v.db.Create(order).Error; err != nil {
		t.Fatalf("create fnb order: %v", err)
	}
	return order
}

func (v *venue) session(t *testing.T, tableID uuid.UUID, at time.Time, note *string) *sessions.Session {
	t.Helper()
	session := &sessions.Session{TableID: tableID, Status: sessions.StatusOpen, StartedAt: at, Note: note}
	if err := v.db.Create(session).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}

func (v *venue) reload(t *testing.T, dest interface{}, id uuid.UUID) {
	t.Helper()
	if err := v.db.First(dest, "id = ?", id).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
}

func TestCloseDaySettlesEverythingOnOrBefore(t *testing.T) {
	v := newVenue(t)
	ctx := context.Background()

	table := v.table(t, "T1")
	stale := v.reservation(t, time.Date(2024, 2, 28, 19, 0, 0, 0, time.UTC), tables.StatusPending, &table.ID)
	tomorrow := v.reservation(t, time.Date(2024, 3, 2, 19, 0, 0, 0, time.UTC), tables.StatusConfirmed, nil)
	drinks := v.fnbOrder(t, time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC), 250, fnb.StatusPending)
	v.fnbOrder(t, time.Date(2024, 3, 1, 21, 30, 0, 0, time.UTC), 90, fnb.StatusCancelled)
	staffNote := "spilled wine"
	noted := v.session(t, table.ID, time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC), &staffNote)
	silent := v.session(t, table.ID, time.Date(2024, 3, 1, 20, 30, 0, 0, time.UTC), nil)
	orderID := v.sellTickets(t, time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC), 2)

	svc := v.service()
	before, err := svc.Summary(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if before.Tickets.Count != 2 || !before.Tickets.Amount.Equal(decimal.NewFromInt(1000)) || before.Tickets.Orders != 1 {
		t.Fatalf("ticket totals = %+v", before.Tickets)
	}
	if before.Fnb.Count != 1 || !before.Fnb.Amount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("fnb totals = %+v", before.Fnb)
	}
	if !before.Cash.Equal(decimal.NewFromInt(1250)) {
		t.Fatalf("cash = %s", before.Cash)
	}

	result, err := svc.CloseDay(ctx, "2024-03-01", nil, nil)
	if err != nil {
		t.Fatalf("CloseDay: %v", err)
	}

	closure := result.Closure
	if closure.Status != closures.StatusClosed || closure.ClosedAt == nil {
		t.Fatalf("closure = %+v", closure)
	}
	if closure.TicketCount != before.Tickets.Count || !closure.TicketAmount.Equal(before.Tickets.Amount) ||
		closure.FnbCount != before.Fnb.Count || !closure.FnbAmount.Equal(before.Fnb.Amount) ||
		!closure.CashTotal.Equal(before.Cash) {
		t.Fatalf("closure totals %+v differ from summary %+v", closure, before)
	}
	if result.SummaryDate != "2024-03-02" || result.Summary.Date != "2024-03-02" {
		t.Fatalf("summary date = %s / %s", result.SummaryDate, result.Summary.Date)
	}
	if result.Summary.Tickets.Count != 0 || !result.Summary.Cash.IsZero() {
		t.Fatalf("next day summary = %+v", result.Summary)
	}

	var staleRes tables.Reservation
	v.reload(t, &staleRes, stale.ID)
	if staleRes.Status != tables.StatusCompleted || staleRes.AssignedTableID != nil {
		t.Fatalf("stale reservation = %s table %v", staleRes.Status, staleRes.AssignedTableID)
	}
	var futureRes tables.Reservation
	v.reload(t, &futureRes, tomorrow.ID)
	if futureRes.ID != tomorrow.ID || futureRes.Status != tables.StatusConfirmed {
		t.Fatalf("future reservation touched: %s", futureRes.Status)
	}

	var order fnb.Order
	v.reload(t, &order, drinks.ID)
	if order.Status != fnb.StatusCompleted {
		t.Fatalf("fnb order = %s", order.Status)
	}

	var notedSession sessions.Session
	v.reload(t, &notedSession, noted.ID)
	if notedSession.Status != sessions.StatusClosed || notedSession.Note == nil || *notedSession.Note != staffNote {
		t.Fatalf("noted session = %s %v", notedSession.Status, notedSession.Note)
	}
	var silentSession sessions.Session
	v.reload(t, &silentSession, silent.ID)
	if silentSession.ID != silent.ID || silentSession.Note == nil || *silentSession.Note != closures.DefaultClosureNote ||
		silentSession.EndedAt == nil {
		t.Fatalf("silent session note = %v", silentSession.Note)
	}

	var ticketOrder tickets.Order
	v.reload(t, &ticketOrder, orderID)
	if ticketOrder.Status != tickets.OrderStatusCompleted {
		t.Fatalf("ticket order = %s", ticketOrder.Status)
	}

	want := closures.Cascade{
		ReservationsCompleted: 1,
		TablesReleased:        1,
		SessionsClosed:        2,
		FnbOrdersCompleted:    1,
		TicketOrdersCompleted: 1,
	}
	if result.Cascade != want {
		t.Fatalf("cascade = %+v, want %+v", result.Cascade, want)
	}

	types := v.recorder.Types()
	if len(types) == 0 || types[len(types)-1] != broker.TypeDayClosed {
		t.Fatalf("published = %v", types)
	}
}

func TestCloseDayIsTerminal(t *testing.T) {
	v := newVenue(t)
	ctx := context.Background()
	svc := v.service()

	note := "quiet night"
	closedBy := uuid.New()
	first, err := svc.CloseDay(ctx, "2024-03-01", &note, &closedBy)
	if err != nil {
		t.Fatalf("CloseDay: %v", err)
	}
	if first.Closure.Note == nil || *first.Closure.Note != note || first.Closure.ClosedBy == nil || *first.Closure.ClosedBy != closedBy {
		t.Fatalf("closure = %+v", first.Closure)
	}

	_, err = svc.CloseDay(ctx, "2024-03-01", nil, nil)
	if !errors.Is(err, closures.ErrDayClosed) || !apperror.IsConflict(err) {
		t.Fatalf("second close err = %v", err)
	}

	got, err := svc.GetClosure(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("GetClosure: %v", err)
	}
	if got.Note == nil || *got.Note != note {
		t.Fatalf("second close must not overwrite the row: %+v", got)
	}
}

func TestCloseDayAfterStartDay(t *testing.T) {
	v := newVenue(t)
	ctx := context.Background()
	svc := v.service()

	started, err := svc.StartDay(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("StartDay: %v", err)
	}
	if started.Status != closures.StatusOpen {
		t.Fatalf("started status = %s", started.Status)
	}

	if _, err := svc.StartDay(ctx, "2024-03-01"); !errors.Is(err, closures.ErrDayStarted) {
		t.Fatalf("second StartDay err = %v", err)
	}

	result, err := svc.CloseDay(ctx, "2024-03-01", nil, nil)
	if err != nil {
		t.Fatalf("CloseDay: %v", err)
	}
	if result.Closure.ID != started.ID {
		t.Fatalf("close created a new row")
	}

	if _, err := svc.StartDay(ctx, "2024-03-01"); !errors.Is(err, closures.ErrDayStarted) {
		t.Fatalf("StartDay on closed day err = %v", err)
	}
}

// failingFnb reads totals normally but fails the cascade step
type failingFnb struct {
	closures.FnbLedger
}

func (failingFnb) MarkCompletedOnOrBefore(context.Context, businessday.Day) (int64, error) {
	return 0, errors.New("fnb ledger unavailable")
}

func TestCloseDayRollsBackOnCascadeFailure(t *testing.T) {
	v := newVenue(t)
	ctx := context.Background()

	table := v.table(t, "T1")
	res := v.reservation(t, time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC), tables.StatusConfirmed, &table.ID)
	session := v.session(t, table.ID, time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC), nil)
	orderID := v.sellTickets(t, time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC), 1)

	collab := closures.DefaultCollaborators()
	realFnb := collab.Fnb
	collab.Fnb = func(db *gorm.DB) closures.FnbLedger { return failingFnb{realFnb(db)} }
	svc := v.service(closures.WithCollaborators(collab))

	if _, err := svc.CloseDay(ctx, "2024-03-01", nil, nil); err == nil {
		t.Fatal("expected cascade failure")
	}

	if _, err := svc.GetClosure(ctx, "2024-03-01"); !errors.Is(err, closures.ErrClosureNotFound) {
		t.Fatalf("closure row must roll back, err = %v", err)
	}

	var reservation tables.Reservation
	v.reload(t, &reservation, res.ID)
	if reservation.Status != tables.StatusConfirmed || reservation.AssignedTableID == nil {
		t.Fatalf("reservation changed: %s %v", reservation.Status, reservation.AssignedTableID)
	}
	var s sessions.Session
	v.reload(t, &s, session.ID)
	if s.Status != sessions.StatusOpen {
		t.Fatalf("session changed: %s", s.Status)
	}
	var order tickets.Order
	v.reload(t, &order, orderID)
	if order.Status != tickets.OrderStatusPending {
		t.Fatalf("ticket order changed: %s", order.Status)
	}

	// the failure leaves the day closable once the ledger recovers
	if _, err := v.service().CloseDay(ctx, "2024-03-01", nil, nil); err != nil {
		t.Fatalf("retry CloseDay: %v", err)
	}
}

func TestCloseDayLeavesCancelledOrdersCancelled(t *testing.T) {
	v := newVenue(t)
	ctx := context.Background()

	voided := v.fnbOrder(t, time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC), 120, fnb.StatusCancelled)
	refunded := v.sellTickets(t, time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC), 2)
	if err := v.db.Model(&tickets.Order{}).Where("id = ?", refunded).
		Update("status", tickets.OrderStatusCancelled).Error; err != nil {
		t.Fatalf("cancel: %v", err)
	}

	result, err := v.service().CloseDay(ctx, "2024-03-01", nil, nil)
	if err != nil {
		t.Fatalf("CloseDay: %v", err)
	}
	if result.Cascade.FnbOrdersCompleted != 0 || result.Cascade.TicketOrdersCompleted != 0 {
		t.Fatalf("cascade = %+v", result.Cascade)
	}
	if !result.Closure.CashTotal.IsZero() {
		t.Fatalf("cash = %s", result.Closure.CashTotal)
	}

	var order fnb.Order
	v.reload(t, &order, voided.ID)
	if order.Status != fnb.StatusCancelled {
		t.Fatalf("fnb order = %s", order.Status)
	}
	var ticketOrder tickets.Order
	v.reload(t, &ticketOrder, refunded)
	if ticketOrder.Status != tickets.OrderStatusCancelled {
		t.Fatalf("ticket order = %s", ticketOrder.Status)
	}
}

func TestSummaryExcludesCancelledTicketOrders(t *testing.T) {
	v := newVenue(t)
	ctx := context.Background()

	v.sellTickets(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), 3)
	cancelled := v.sellTickets(t, time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC), 2)
	v.sellTickets(t, time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC), 5)

	if err := v.db.Model(&tickets.Order{}).Where("id = ?", cancelled).
		Update("status", tickets.OrderStatusCancelled).Error; err != nil {
		t.Fatalf("cancel: %v", err)
	}

	summary, err := v.service().Summary(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Tickets.Count != 3 || summary.Tickets.Orders != 1 || !summary.Tickets.Amount.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("tickets = %+v", summary.Tickets)
	}
}

func TestSummaryRejectsBadDate(t *testing.T) {
	v := newVenue(t)
	_, err := v.service().Summary(context.Background(), "01/03/2024")
	if !errors.Is(err, closures.ErrInvalidDate) || !apperror.IsValidation(err) {
		t.Fatalf("err = %v", err)
	}
}

func TestSummaryUsesVenueTimeZone(t *testing.T) {
	v := newVenue(t)
	loc := time.FixedZone("UTC+7", 7*60*60)

	// 2024-03-01 20:00 UTC is already 2024-03-02 at the venue
	v.sellTickets(t, time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC), 1)

	svc := closures.NewService(v.db, v.recorder, closures.Config{Location: loc})
	first, err := svc.Summary(context.Background(), "2024-03-01")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	second, err := svc.Summary(context.Background(), "2024-03-02")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if first.Tickets.Count != 0 || second.Tickets.Count != 1 {
		t.Fatalf("counts = %d / %d", first.Tickets.Count, second.Tickets.Count)
	}
}

func TestListClosures(t *testing.T) {
	v := newVenue(t)
	ctx := context.Background()
	svc := v.service()

	for _, date := range []string{"2024-02-28", "2024-02-29", "2024-03-01"} {
		if _, err := svc.CloseDay(ctx, date, nil, nil); err != nil {
			t.Fatalf("CloseDay %s: %v", date, err)
		}
	}

	list, err := svc.ListClosures(ctx, closures.ListQuery{From: "2024-02-29"})
	if err != nil {
		t.Fatalf("ListClosures: %v", err)
	}
	if len(list) != 2 || list[0].BusinessDate != "2024-03-01" || list[1].BusinessDate != "2024-02-29" {
		t.Fatalf("list = %+v", list)
	}
}
