package sessions_test

import (
	"context"
	"testing"
	"time"

	"venueledger/internal/sessions"
	"venueledger/internal/shared/apperror"
	"venueledger/internal/shared/businessday"
	"venueledger/internal/shared/database/dbtest"
	"venueledger/internal/tables"

	"github.com/google/uuid"
)

func TestOpenAndCloseSession(t *testing.T) {
	db := dbtest.Open(t)
	tableRepo := tables.NewRepository(db)
	svc := sessions.NewService(sessions.NewRepository(db), tableRepo)
	ctx := context.Background()

	table := &tables.Table{Name: "T1", Capacity: 4, IsActive: true}
	if err := tableRepo.CreateTable(ctx, table); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	if _, err := svc.Open(ctx, sessions.OpenRequest{TableID: uuid.New()}); !apperror.IsNotFound(err) {
		t.Fatalf("unknown table: %v", err)
	}

	session, err := svc.Open(ctx, sessions.OpenRequest{TableID: table.ID})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := svc.Open(ctx, sessions.OpenRequest{TableID: table.ID}); !apperror.IsConflict(err) {
		t.Fatalf("second open session: %v", err)
	}

	note := "party left early"
	closed, err := svc.Close(ctx, session.ID, &note)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed.Status != sessions.StatusClosed || closed.EndedAt == nil || *closed.Note != note {
		t.Fatalf("closed = %+v", closed)
	}
	if _, err := svc.Close(ctx, session.ID, nil); !apperror.IsConflict(err) {
		t.Fatalf("double close: %v", err)
	}
}

func TestCloseOpenOnOrBeforeKeepsStaffNotes(t *testing.T) {
	db := dbtest.Open(t)
	repo := sessions.NewRepository(db)
	ctx := context.Background()
	day := businessday.Of(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), time.UTC)

	staffNote := "birthday"
	blank, spaces := "", "   "
	rows := []sessions.Session{
		{TableID: uuid.New(), Status: sessions.StatusOpen, StartedAt: day.Start.Add(19 * time.Hour)},
		{TableID: uuid.New(), Status: sessions.StatusOpen, StartedAt: day.Start.Add(20 * time.Hour), Note: &staffNote},
		{TableID: uuid.New(), Status: sessions.StatusOpen, StartedAt: day.End.Add(time.Hour)},
		{TableID: uuid.New(), Status: sessions.StatusOpen, StartedAt: day.Start.Add(21 * time.Hour), Note: &blank},
		{TableID: uuid.New(), Status: sessions.StatusOpen, StartedAt: day.Start.Add(22 * time.Hour), Note: &spaces},
	}
	for i := range rows {
		if err := repo.Create(ctx, &rows[i]); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	closed, err := repo.CloseOpenOnOrBefore(ctx, day, "Auto-closed by day closure", day.End)
	if err != nil {
		t.Fatalf("CloseOpenOnOrBefore: %v", err)
	}
	if closed != 4 {
		t.Fatalf("closed = %d", closed)
	}

	first, _ := repo.GetByID(ctx, rows[0].ID)
	second, _ := repo.GetByID(ctx, rows[1].ID)
	third, _ := repo.GetByID(ctx, rows[2].ID)
	if first.Note == nil || *first.Note != "Auto-closed by day closure" {
		t.Fatalf("first note = %v", first.Note)
	}
	if *second.Note != staffNote {
		t.Fatalf("staff note overwritten: %s", *second.Note)
	}
	if third.Status != sessions.StatusOpen {
		t.Fatalf("next day session closed")
	}
	for _, row := range rows[3:] {
		got, err := repo.GetByID(ctx, row.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Note == nil || *got.Note != "Auto-closed by day closure" {
			t.Fatalf("blank note not replaced: %q", *row.Note)
		}
	}
}
