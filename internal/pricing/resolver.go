// Package pricing resolves the price a slot is sold at. The resolved value is
// captured on the slot when it is materialized; bookings never re-price.
package pricing

import (
	"context"
	"fmt"

	"github.com/courtbook/courtbook/internal/domain"
	"github.com/courtbook/courtbook/internal/store"
)

type Resolver struct {
	store *store.Store
}

func NewResolver(s *store.Store) *Resolver {
	return &Resolver{store: s}
}

// ResolvePrice returns the price in cents for booking court time on date over
// [startTime, endTime). Active pricing rules for the date's day of week whose
// window contains the requested range win over the court's base rate; when
// several rules contain the range the most recently created one (highest id)
// wins. With no matching rule the price is the base hourly rate scaled by the
// slot duration.
func (r *Resolver) ResolvePrice(ctx context.Context, court domain.Court, date, startTime, endTime string) (int64, error) {
	if !court.IsActive {
		return 0, domain.ErrNoActiveCourt
	}

	day, err := domain.ParseDate(date)
	if err != nil {
		return 0, err
	}
	start, err := domain.ParseMinutes(startTime)
	if err != nil {
		return 0, err
	}
	end, err := domain.ParseMinutes(endTime)
	if err != nil {
		return 0, err
	}
	if start >= end {
		return 0, fmt.Errorf("%w: start %s is not before end %s", domain.ErrInvalidWindow, startTime, endTime)
	}

	rules, err := r.store.ListRulesForCourtDay(ctx, court.ID, int(day.Weekday()))
	if err != nil {
		return 0, fmt.Errorf("list pricing rules: %w", err)
	}

	// Rules arrive newest-first, so the first containing window wins.
	for _, rule := range rules {
		ruleStart, ruleEnd, err := domain.ParseWindow(rule.TimeWindow)
		if err != nil {
			continue
		}
		if ruleStart <= start && end <= ruleEnd {
			return rule.PriceCents, nil
		}
	}

	return baseRatePrice(court.HourlyRateCents, start, end), nil
}

// baseRatePrice scales the hourly rate by the window duration. Sub-hour
// remainders are charged proportionally, rounded down to the cent.
func baseRatePrice(hourlyRateCents int64, start, end int) int64 {
	return hourlyRateCents * int64(end-start) / 60
}
