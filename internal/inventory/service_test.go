package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/courtbook/courtbook/internal/authz"
	"github.com/courtbook/courtbook/internal/booking"
	"github.com/courtbook/courtbook/internal/domain"
	"github.com/courtbook/courtbook/internal/store"
	"github.com/courtbook/courtbook/internal/testutil"
)

func TestCreateSlotResolverPricesIt(t *testing.T) {
	database := testutil.NewTestDB(t)
	court := testutil.SeedCourt(t, database, "Court A", 3000)

	svc := NewService(database)
	slot, err := svc.CreateSlot(context.Background(), CreateSlotParams{
		CourtID:   court.ID,
		Date:      "2026-03-16",
		StartTime: "10:00",
		EndTime:   "11:00",
	})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if slot.PriceCents != 3000 {
		t.Fatalf("expected 3000, got %d", slot.PriceCents)
	}
	if !slot.IsAvailable {
		t.Fatal("new slot must be available")
	}
}

func TestCreateSlotPriceOverride(t *testing.T) {
	database := testutil.NewTestDB(t)
	court := testutil.SeedCourt(t, database, "Court A", 3000)

	override := int64(1500)
	svc := NewService(database)
	slot, err := svc.CreateSlot(context.Background(), CreateSlotParams{
		CourtID:    court.ID,
		Date:       "2026-03-16",
		StartTime:  "10:00",
		EndTime:    "11:00",
		PriceCents: &override,
	})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if slot.PriceCents != 1500 {
		t.Fatalf("expected 1500, got %d", slot.PriceCents)
	}
}

func TestCreateSlotOutsideOperatingHours(t *testing.T) {
	database := testutil.NewTestDB(t)
	court := testutil.SeedCourt(t, database, "Court A", 3000)

	svc := NewService(database)
	_, err := svc.CreateSlot(context.Background(), CreateSlotParams{
		CourtID:   court.ID,
		Date:      "2026-03-16",
		StartTime: "06:00",
		EndTime:   "07:00",
	})
	if !errors.Is(err, domain.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestCreateSlotInvertedWindow(t *testing.T) {
	database := testutil.NewTestDB(t)
	court := testutil.SeedCourt(t, database, "Court A", 3000)

	svc := NewService(database)
	_, err := svc.CreateSlot(context.Background(), CreateSlotParams{
		CourtID:   court.ID,
		Date:      "2026-03-16",
		StartTime: "11:00",
		EndTime:   "10:00",
	})
	if !errors.Is(err, domain.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestCreateSlotMissingCourt(t *testing.T) {
	database := testutil.NewTestDB(t)

	svc := NewService(database)
	_, err := svc.CreateSlot(context.Background(), CreateSlotParams{
		CourtID:   404,
		Date:      "2026-03-16",
		StartTime: "10:00",
		EndTime:   "11:00",
	})
	if !errors.Is(err, domain.ErrCourtNotFound) {
		t.Fatalf("expected ErrCourtNotFound, got %v", err)
	}
}

func TestDeleteSlotWithLiveBooking(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, database, "alice", domain.RoleUser)
	court := testutil.SeedCourt(t, database, "Court A", 3000)
	slot := testutil.SeedSlot(t, database, court.ID, "2026-03-16", "10:00", "11:00", 2000)

	ctx := context.Background()
	bookingSvc := booking.NewService(database)
	created, err := bookingSvc.CreateBooking(ctx, authz.Actor{ID: user.ID, Role: user.Role}, slot.ID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	svc := NewService(database)
	if err := svc.DeleteSlot(ctx, slot.ID); !errors.Is(err, domain.ErrSlotInUse) {
		t.Fatalf("expected ErrSlotInUse, got %v", err)
	}

	// A cancelled booking no longer pins the slot.
	if _, err := bookingSvc.CancelBooking(ctx, authz.Actor{ID: user.ID, Role: user.Role}, created.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := svc.DeleteSlot(ctx, slot.ID); err != nil {
		t.Fatalf("delete after cancel: %v", err)
	}
}

func TestUpsertPricingRuleIdempotent(t *testing.T) {
	database := testutil.NewTestDB(t)
	court := testutil.SeedCourt(t, database, "Court A", 3000)

	svc := NewService(database)
	ctx := context.Background()

	first, err := svc.UpsertPricingRule(ctx, domain.PricingRule{
		CourtID:    court.ID,
		DayOfWeek:  1,
		TimeWindow: "18:00-21:00",
		PriceCents: 5000,
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second, err := svc.UpsertPricingRule(ctx, domain.PricingRule{
		CourtID:    court.ID,
		DayOfWeek:  1,
		TimeWindow: "18:00-21:00",
		PriceCents: 5500,
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same rule row, got ids %d and %d", first.ID, second.ID)
	}
	if second.PriceCents != 5500 {
		t.Fatalf("expected 5500, got %d", second.PriceCents)
	}

	rules, err := svc.ListPricingRules(ctx, court.ID)
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected one rule, got %d", len(rules))
	}
}

func TestUpsertPricingRuleValidation(t *testing.T) {
	database := testutil.NewTestDB(t)
	court := testutil.SeedCourt(t, database, "Court A", 3000)

	svc := NewService(database)
	ctx := context.Background()

	if _, err := svc.UpsertPricingRule(ctx, domain.PricingRule{
		CourtID: court.ID, DayOfWeek: 7, TimeWindow: "18:00-21:00", PriceCents: 5000,
	}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for day 7, got %v", err)
	}
	if _, err := svc.UpsertPricingRule(ctx, domain.PricingRule{
		CourtID: court.ID, DayOfWeek: 1, TimeWindow: "18:00", PriceCents: 5000,
	}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for bad window, got %v", err)
	}
	if _, err := svc.UpsertPricingRule(ctx, domain.PricingRule{
		CourtID: 404, DayOfWeek: 1, TimeWindow: "18:00-21:00", PriceCents: 5000,
	}); !errors.Is(err, domain.ErrCourtNotFound) {
		t.Fatalf("expected ErrCourtNotFound, got %v", err)
	}
}

func TestGenerateSlotsForDate(t *testing.T) {
	database := testutil.NewTestDB(t)
	court := testutil.SeedCourt(t, database, "Court A", 3000)

	svc := NewService(database)
	ctx := context.Background()

	created, err := svc.GenerateSlotsForDate(ctx, court.ID, "2026-03-16")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// 08:00 through 22:00 yields fourteen hourly slots.
	if len(created) != 14 {
		t.Fatalf("expected 14 slots, got %d", len(created))
	}
	if created[0].StartTime != "08:00" || created[0].EndTime != "09:00" {
		t.Fatalf("unexpected first slot window %s-%s", created[0].StartTime, created[0].EndTime)
	}
	if created[0].PriceCents != 3000 {
		t.Fatalf("expected base rate price, got %d", created[0].PriceCents)
	}
}

func TestGenerateSlotsForDateSkipsExisting(t *testing.T) {
	database := testutil.NewTestDB(t)
	court := testutil.SeedCourt(t, database, "Court A", 3000)

	svc := NewService(database)
	ctx := context.Background()

	if _, err := svc.GenerateSlotsForDate(ctx, court.ID, "2026-03-16"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	again, err := svc.GenerateSlotsForDate(ctx, court.ID, "2026-03-16")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no new slots, got %d", len(again))
	}
}

func TestGenerateSlotsForInactiveCourt(t *testing.T) {
	database := testutil.NewTestDB(t)
	court := testutil.SeedCourt(t, database, "Court A", 3000)

	ctx := context.Background()
	inactive := false
	if _, err := database.Store.UpdateCourt(ctx, court.ID, store.UpdateCourtParams{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate court: %v", err)
	}

	svc := NewService(database)
	if _, err := svc.GenerateSlotsForDate(ctx, court.ID, "2026-03-16"); !errors.Is(err, domain.ErrNoActiveCourt) {
		t.Fatalf("expected ErrNoActiveCourt, got %v", err)
	}
}

func TestCreateCourtWithInlineRules(t *testing.T) {
	database := testutil.NewTestDB(t)

	svc := NewService(database)
	ctx := context.Background()

	court, err := svc.CreateCourt(ctx, CreateCourtParams{
		Name:            "Center Court",
		Description:     "show court",
		OpenTime:        "09:00",
		CloseTime:       "21:00",
		HourlyRateCents: 4000,
		PricingRules: []InlineRule{
			{DayOfWeek: 5, TimeWindow: "17:00-21:00", PriceCents: 6000},
		},
	})
	if err != nil {
		t.Fatalf("create court: %v", err)
	}

	rules, err := svc.ListPricingRules(ctx, court.ID)
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	if len(rules) != 1 || rules[0].PriceCents != 6000 {
		t.Fatalf("expected one 6000-cent rule, got %+v", rules)
	}
}

func TestCreateCourtRejectsInvertedHours(t *testing.T) {
	database := testutil.NewTestDB(t)

	svc := NewService(database)
	_, err := svc.CreateCourt(context.Background(), CreateCourtParams{
		Name:            "Backwards",
		OpenTime:        "21:00",
		CloseTime:       "09:00",
		HourlyRateCents: 4000,
	})
	if !errors.Is(err, domain.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}
