package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/courtbook/courtbook/internal/authz"
	"github.com/courtbook/courtbook/internal/domain"
	"github.com/courtbook/courtbook/internal/testutil"
)

func TestCreateBookingReservesSlot(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, database, "alice", domain.RoleUser)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	slot := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)

	svc := NewService(database)
	ctx := context.Background()
	actor := authz.Actor{ID: user.ID, Role: user.Role}

	detail, err := svc.CreateBooking(ctx, actor, slot.ID)
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if detail.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %q", detail.Status)
	}
	if detail.TotalPriceCents != 2000 {
		t.Fatalf("expected 2000, got %d", detail.TotalPriceCents)
	}
	if detail.UserID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, detail.UserID)
	}

	stored, err := database.Store.GetTimeSlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("load slot: %v", err)
	}
	if stored.IsAvailable {
		t.Fatal("slot must be unavailable after booking")
	}
}

func TestCreateBookingUnavailableSlot(t *testing.T) {
	database := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, database, "alice", domain.RoleUser)
	bob := testutil.SeedUser(t, database, "bob", domain.RoleUser)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	slot := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)

	svc := NewService(database)
	ctx := context.Background()

	if _, err := svc.CreateBooking(ctx, authz.Actor{ID: alice.ID, Role: alice.Role}, slot.ID); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	_, err := svc.CreateBooking(ctx, authz.Actor{ID: bob.ID, Role: bob.Role}, slot.ID)
	if !errors.Is(err, domain.ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
}

func TestCreateBookingMissingSlot(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, database, "alice", domain.RoleUser)

	svc := NewService(database)
	_, err := svc.CreateBooking(context.Background(), authz.Actor{ID: user.ID, Role: user.Role}, 404)
	if !errors.Is(err, domain.ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestCreateBookingConcurrentSingleWinner(t *testing.T) {
	database := testutil.NewTestDB(t)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	slot := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)

	const contenders = 8
	actors := make([]authz.Actor, contenders)
	for i := range actors {
		user := testutil.SeedUser(t, database, "user"+string(rune('a'+i)), domain.RoleUser)
		actors[i] = authz.Actor{ID: user.ID, Role: user.Role}
	}

	svc := NewService(database)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.CreateBooking(ctx, actors[i], slot.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, domain.ErrSlotUnavailable):
		default:
			t.Fatalf("contender %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}

	count, err := database.Store.CountBookings(ctx)
	if err != nil {
		t.Fatalf("count bookings: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one booking row, got %d", count)
	}
}

func TestCancelBookingReleasesSlot(t *testing.T) {
	database := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, database, "alice", domain.RoleUser)
	bob := testutil.SeedUser(t, database, "bob", domain.RoleUser)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	slot := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)

	svc := NewService(database)
	ctx := context.Background()
	aliceActor := authz.Actor{ID: alice.ID, Role: alice.Role}

	created, err := svc.CreateBooking(ctx, aliceActor, slot.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, err := svc.CancelBooking(ctx, aliceActor, created.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Fatalf("expected cancelled, got %q", cancelled.Status)
	}

	// The released slot is immediately bookable again.
	rebooked, err := svc.CreateBooking(ctx, authz.Actor{ID: bob.ID, Role: bob.Role}, slot.ID)
	if err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
	if rebooked.UserID != bob.ID {
		t.Fatalf("expected bob's booking, got user %d", rebooked.UserID)
	}
}

func TestCancelBookingTwice(t *testing.T) {
	database := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, database, "alice", domain.RoleUser)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	slot := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)

	svc := NewService(database)
	ctx := context.Background()
	actor := authz.Actor{ID: alice.ID, Role: alice.Role}

	created, err := svc.CreateBooking(ctx, actor, slot.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CancelBooking(ctx, actor, created.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if _, err := svc.CancelBooking(ctx, actor, created.ID); !errors.Is(err, domain.ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestCancelBookingForbiddenForOtherUser(t *testing.T) {
	database := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, database, "alice", domain.RoleUser)
	mallory := testutil.SeedUser(t, database, "mallory", domain.RoleUser)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	slot := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)

	svc := NewService(database)
	ctx := context.Background()

	created, err := svc.CreateBooking(ctx, authz.Actor{ID: alice.ID, Role: alice.Role}, slot.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CancelBooking(ctx, authz.Actor{ID: mallory.ID, Role: mallory.Role}, created.ID); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	stored, err := database.Store.GetBooking(ctx, created.ID)
	if err != nil {
		t.Fatalf("load booking: %v", err)
	}
	if stored.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %q", stored.Status)
	}
}

func TestCancelBookingAllowedForOperator(t *testing.T) {
	database := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, database, "alice", domain.RoleUser)
	vendor := testutil.SeedUser(t, database, "vendor", domain.RoleVendor)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	slot := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)

	svc := NewService(database)
	ctx := context.Background()

	created, err := svc.CreateBooking(ctx, authz.Actor{ID: alice.ID, Role: alice.Role}, slot.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	cancelled, err := svc.CancelBooking(ctx, authz.Actor{ID: vendor.ID, Role: vendor.Role}, created.ID)
	if err != nil {
		t.Fatalf("operator cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Fatalf("expected cancelled, got %q", cancelled.Status)
	}
}

func TestUpdateStatusConfirms(t *testing.T) {
	database := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, database, "alice", domain.RoleUser)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	slot := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)

	svc := NewService(database)
	ctx := context.Background()
	actor := authz.Actor{ID: alice.ID, Role: alice.Role}

	created, err := svc.CreateBooking(ctx, actor, slot.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	confirmed, err := svc.UpdateStatus(ctx, actor, created.ID, domain.StatusConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != domain.StatusConfirmed {
		t.Fatalf("expected confirmed, got %q", confirmed.Status)
	}
}

func TestUpdateStatusToCancelledReleasesSlot(t *testing.T) {
	database := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, database, "alice", domain.RoleUser)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	slot := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)

	svc := NewService(database)
	ctx := context.Background()
	actor := authz.Actor{ID: alice.ID, Role: alice.Role}

	created, err := svc.CreateBooking(ctx, actor, slot.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, actor, created.ID, domain.StatusCancelled); err != nil {
		t.Fatalf("cancel via status: %v", err)
	}

	stored, err := database.Store.GetTimeSlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("load slot: %v", err)
	}
	if !stored.IsAvailable {
		t.Fatal("slot must be released when status moves to cancelled")
	}
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	database := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, database, "alice", domain.RoleUser)

	svc := NewService(database)
	_, err := svc.UpdateStatus(context.Background(), authz.Actor{ID: alice.ID, Role: alice.Role}, 1, "archived")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUpdateStatusLeavingCancelledRejected(t *testing.T) {
	database := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, database, "alice", domain.RoleUser)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	slot := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)

	svc := NewService(database)
	ctx := context.Background()
	actor := authz.Actor{ID: alice.ID, Role: alice.Role}

	created, err := svc.CreateBooking(ctx, actor, slot.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CancelBooking(ctx, actor, created.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, actor, created.ID, domain.StatusConfirmed); !errors.Is(err, domain.ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestListBookingsScopedByRole(t *testing.T) {
	database := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, database, "alice", domain.RoleUser)
	bob := testutil.SeedUser(t, database, "bob", domain.RoleUser)
	admin := testutil.SeedUser(t, database, "admin", domain.RoleAdmin)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	slotA := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)
	slotB := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "11:00", "12:00", 2000)

	svc := NewService(database)
	ctx := context.Background()

	if _, err := svc.CreateBooking(ctx, authz.Actor{ID: alice.ID, Role: alice.Role}, slotA.ID); err != nil {
		t.Fatalf("alice booking: %v", err)
	}
	if _, err := svc.CreateBooking(ctx, authz.Actor{ID: bob.ID, Role: bob.Role}, slotB.ID); err != nil {
		t.Fatalf("bob booking: %v", err)
	}

	own, err := svc.ListBookings(ctx, authz.Actor{ID: alice.ID, Role: alice.Role})
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	if len(own) != 1 || own[0].UserID != alice.ID {
		t.Fatalf("expected only alice's booking, got %d entries", len(own))
	}

	all, err := svc.ListBookings(ctx, authz.Actor{ID: admin.ID, Role: admin.Role})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two bookings, got %d", len(all))
	}
}

func TestGetBookingOwnership(t *testing.T) {
	database := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, database, "alice", domain.RoleUser)
	mallory := testutil.SeedUser(t, database, "mallory", domain.RoleUser)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	slot := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)

	svc := NewService(database)
	ctx := context.Background()

	created, err := svc.CreateBooking(ctx, authz.Actor{ID: alice.ID, Role: alice.Role}, slot.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.GetBooking(ctx, authz.Actor{ID: alice.ID, Role: alice.Role}, created.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := svc.GetBooking(ctx, authz.Actor{ID: mallory.ID, Role: mallory.Role}, created.ID); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
