package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/courtbook/courtbook/internal/db"
	"github.com/courtbook/courtbook/internal/domain"
	"github.com/courtbook/courtbook/internal/store"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// SeedUser inserts a user with the given role and returns it.
func SeedUser(t *testing.T, database *db.DB, username, role string) domain.User {
	t.Helper()

	user, err := database.Store.CreateUser(context.Background(), store.CreateUserParams{
		Username:     username,
		PasswordHash: "x",
		Email:        username + "@example.com",
		Gender:       "female",
		Role:         role,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

// SeedCourt inserts an active court open 08:00 to 22:00 at the given hourly rate.
func SeedCourt(t *testing.T, database *db.DB, name string, hourlyRateCents int64) domain.Court {
	t.Helper()

	court, err := database.Store.CreateCourt(context.Background(), store.CreateCourtParams{
		Name:            name,
		Description:     "indoor court",
		OpenTime:        "08:00",
		CloseTime:       "22:00",
		HourlyRateCents: hourlyRateCents,
		IsActive:        true,
	})
	if err != nil {
		t.Fatalf("seed court %s: %v", name, err)
	}
	return court
}

// SeedSlot inserts an available slot on the court for the given window.
func SeedSlot(t *testing.T, database *db.DB, courtID int64, date, startTime, endTime string, priceCents int64) domain.TimeSlot {
	t.Helper()

	slot, err := database.Store.CreateTimeSlot(context.Background(), store.CreateTimeSlotParams{
		CourtID:    courtID,
		Date:       date,
		StartTime:  startTime,
		EndTime:    endTime,
		PriceCents: priceCents,
	})
	if err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	return slot
}
