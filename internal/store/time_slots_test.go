package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/courtbook/courtbook/internal/domain"
	"github.com/courtbook/courtbook/internal/store"
	"github.com/courtbook/courtbook/internal/testutil"
)

func TestReserveTimeSlotConditional(t *testing.T) {
	database := testutil.NewTestDB(t)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	slot := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)

	ctx := context.Background()

	reserved, err := database.Store.ReserveTimeSlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if !reserved {
		t.Fatal("expected first reserve to win")
	}

	// The second reserve sees the cleared flag and affects no rows.
	reserved, err = database.Store.ReserveTimeSlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("second reserve: %v", err)
	}
	if reserved {
		t.Fatal("expected second reserve to lose")
	}

	if err := database.Store.ReleaseTimeSlot(ctx, slot.ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	reserved, err = database.Store.ReserveTimeSlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("reserve after release: %v", err)
	}
	if !reserved {
		t.Fatal("expected reserve to win after release")
	}
}

func TestSlotHasLiveBooking(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, database, "alice", domain.RoleUser)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	slot := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)

	ctx := context.Background()

	live, err := database.Store.SlotHasLiveBooking(ctx, slot.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if live {
		t.Fatal("fresh slot must not have a live booking")
	}

	created, err := database.Store.CreateBooking(ctx, store.CreateBookingParams{
		UserID:          user.ID,
		TimeSlotID:      slot.ID,
		Status:          domain.StatusPending,
		TotalPriceCents: 2000,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	live, err = database.Store.SlotHasLiveBooking(ctx, slot.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !live {
		t.Fatal("pending booking must count as live")
	}

	if err := database.Store.SetBookingStatus(ctx, created.ID, domain.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	live, err = database.Store.SlotHasLiveBooking(ctx, slot.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if live {
		t.Fatal("cancelled booking must not count as live")
	}
}

func TestSlotExistsForWindow(t *testing.T) {
	database := testutil.NewTestDB(t)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)

	ctx := context.Background()

	exists, err := database.Store.SlotExistsForWindow(ctx, court.ID, "2026-03-16", "10:00")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !exists {
		t.Fatal("expected window to exist")
	}

	exists, err = database.Store.SlotExistsForWindow(ctx, court.ID, "2026-03-16", "11:00")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if exists {
		t.Fatal("expected window to be free")
	}
}

func TestGetTimeSlotNotFound(t *testing.T) {
	database := testutil.NewTestDB(t)

	_, err := database.Store.GetTimeSlot(context.Background(), 404)
	if !errors.Is(err, domain.ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected err to wrap ErrNotFound, got %v", err)
	}
}

func TestListAvailableSlotsExcludesInactiveCourts(t *testing.T) {
	database := testutil.NewTestDB(t)
	active := testutil.SeedCourt(t, database, "Court A", 3000)
	other := testutil.SeedCourt(t, database, "Court B", 3000)
	testutil.SeedSlot(t, database, active.ID, "2026-03-16", "10:00", "11:00", 2000)
	testutil.SeedSlot(t, database, other.ID, "2026-03-16", "10:00", "11:00", 2000)

	ctx := context.Background()
	inactive := false
	if _, err := database.Store.UpdateCourt(ctx, other.ID, store.UpdateCourtParams{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	slots, err := database.Store.ListAvailableSlotsByDate(ctx, "2026-03-16")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].CourtID != active.ID {
		t.Fatalf("expected slot on active court, got court %d", slots[0].CourtID)
	}
}
