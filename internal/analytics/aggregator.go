// Package analytics derives occupancy and revenue figures from the booking
// ledger. Everything here is read-only and tolerates an empty ledger.
package analytics

import (
	"context"
	"math"
	"time"

	"github.com/courtbook/courtbook/internal/domain"
	"github.com/courtbook/courtbook/internal/store"
)

type Aggregator struct {
	store *store.Store
	now   func() time.Time
}

func NewAggregator(s *store.Store) *Aggregator {
	return &Aggregator{store: s, now: time.Now}
}

// NewAggregatorAt pins the clock, for tests exercising the revenue windows.
func NewAggregatorAt(s *store.Store, now func() time.Time) *Aggregator {
	return &Aggregator{store: s, now: now}
}

type Stats struct {
	TotalUsers      int64 `json:"totalUsers"`
	TotalCourts     int64 `json:"totalCourts"`
	ActiveBookings  int64 `json:"activeBookings"`
	PendingBookings int64 `json:"pendingBookings"`
	BlockedUsers    int64 `json:"blockedUsers"`
	// RevenueCents sums totalPrice over confirmed bookings.
	RevenueCents        int64 `json:"revenueCents"`
	DailyRevenueCents   int64 `json:"dailyRevenueCents"`
	WeeklyRevenueCents  int64 `json:"weeklyRevenueCents"`
	MonthlyRevenueCents int64 `json:"monthlyRevenueCents"`
	TotalBookings       int64 `json:"totalBookings"`
	// OccupancyRate is confirmed bookings over all bookings, as a rounded
	// integer percentage. Zero when the ledger is empty.
	OccupancyRate int `json:"occupancyRate"`
}

// Snapshot computes the full stats block over the current ledger. Revenue
// windows compare the slot's calendar date, not the booking creation time.
func (a *Aggregator) Snapshot(ctx context.Context) (Stats, error) {
	var stats Stats
	var err error

	if stats.TotalUsers, err = a.store.CountUsers(ctx); err != nil {
		return Stats{}, err
	}
	if stats.BlockedUsers, err = a.store.CountBlockedUsers(ctx); err != nil {
		return Stats{}, err
	}
	if stats.TotalCourts, err = a.store.CountActiveCourts(ctx); err != nil {
		return Stats{}, err
	}
	if stats.TotalBookings, err = a.store.CountBookings(ctx); err != nil {
		return Stats{}, err
	}
	if stats.ActiveBookings, err = a.store.CountBookingsByStatus(ctx, domain.StatusConfirmed); err != nil {
		return Stats{}, err
	}
	if stats.PendingBookings, err = a.store.CountBookingsByStatus(ctx, domain.StatusPending); err != nil {
		return Stats{}, err
	}

	today := a.now()
	todayStr := today.Format(domain.DateLayout)
	weekAgo := today.AddDate(0, 0, -7).Format(domain.DateLayout)
	monthAgo := today.AddDate(0, 0, -30).Format(domain.DateLayout)

	if stats.RevenueCents, err = a.store.SumConfirmedRevenue(ctx, "", ""); err != nil {
		return Stats{}, err
	}
	if stats.DailyRevenueCents, err = a.store.SumConfirmedRevenue(ctx, todayStr, todayStr); err != nil {
		return Stats{}, err
	}
	if stats.WeeklyRevenueCents, err = a.store.SumConfirmedRevenue(ctx, weekAgo, ""); err != nil {
		return Stats{}, err
	}
	if stats.MonthlyRevenueCents, err = a.store.SumConfirmedRevenue(ctx, monthAgo, ""); err != nil {
		return Stats{}, err
	}

	stats.OccupancyRate = OccupancyRate(stats.ActiveBookings, stats.TotalBookings)
	return stats, nil
}

// OccupancyRate is confirmed-count over total-booking-count as a rounded
// integer percent, defined as 0 for an empty population.
func OccupancyRate(confirmed, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(confirmed) / float64(total) * 100))
}

// CalendarBookings lists bookings whose slot date falls inside
// [startDate, endDate], with user and slot+court detail.
func (a *Aggregator) CalendarBookings(ctx context.Context, startDate, endDate string) ([]domain.BookingDetail, error) {
	if _, err := domain.ParseDate(startDate); err != nil {
		return nil, err
	}
	if _, err := domain.ParseDate(endDate); err != nil {
		return nil, err
	}
	return a.store.ListBookingsBySlotDateRange(ctx, startDate, endDate)
}
