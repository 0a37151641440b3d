// Package inventory owns the catalogue of courts, pricing rules, and
// bookable time slots.
package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	appdb "github.com/courtbook/courtbook/internal/db"
	"github.com/courtbook/courtbook/internal/domain"
	"github.com/courtbook/courtbook/internal/pricing"
	"github.com/courtbook/courtbook/internal/store"
)

type Service struct {
	db       *appdb.DB
	resolver *pricing.Resolver
}

func NewService(database *appdb.DB) *Service {
	return &Service{
		db:       database,
		resolver: pricing.NewResolver(database.Store),
	}
}

type CreateSlotParams struct {
	CourtID   int64
	Date      string
	StartTime string
	EndTime   string
	// PriceCents overrides the resolver when set.
	PriceCents *int64
}

// CreateSlot materializes one bookable slot. The price defaults to the
// pricing resolver's result; the window must sit inside the court's
// operating hours.
func (s *Service) CreateSlot(ctx context.Context, params CreateSlotParams) (domain.TimeSlot, error) {
	court, err := s.db.Store.GetCourt(ctx, params.CourtID)
	if err != nil {
		return domain.TimeSlot{}, err
	}

	if err := validateWindow(court, params.StartTime, params.EndTime); err != nil {
		return domain.TimeSlot{}, err
	}
	if _, err := domain.ParseDate(params.Date); err != nil {
		return domain.TimeSlot{}, err
	}

	price := int64(0)
	if params.PriceCents != nil {
		price = *params.PriceCents
	} else {
		price, err = s.resolver.ResolvePrice(ctx, court, params.Date, params.StartTime, params.EndTime)
		if err != nil {
			return domain.TimeSlot{}, err
		}
	}

	return s.db.Store.CreateTimeSlot(ctx, store.CreateTimeSlotParams{
		CourtID:    params.CourtID,
		Date:       params.Date,
		StartTime:  params.StartTime,
		EndTime:    params.EndTime,
		PriceCents: price,
	})
}

func (s *Service) ListSlotsForDate(ctx context.Context, date string) ([]domain.TimeSlotWithCourt, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return nil, err
	}
	return s.db.Store.ListSlotsByDate(ctx, date)
}

func (s *Service) ListAvailableSlotsForDate(ctx context.Context, date string) ([]domain.TimeSlotWithCourt, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return nil, err
	}
	return s.db.Store.ListAvailableSlotsByDate(ctx, date)
}

func (s *Service) ListSlotsInRange(ctx context.Context, startDate, endDate string) ([]domain.CalendarSlot, error) {
	if _, err := domain.ParseDate(startDate); err != nil {
		return nil, err
	}
	if _, err := domain.ParseDate(endDate); err != nil {
		return nil, err
	}
	return s.db.Store.ListSlotsByDateRange(ctx, startDate, endDate)
}

// UpdateSlot changes a slot's price or availability flag. Time boundaries are
// immutable once the slot exists.
func (s *Service) UpdateSlot(ctx context.Context, id int64, params store.UpdateTimeSlotParams) (domain.TimeSlot, error) {
	return s.db.Store.UpdateTimeSlot(ctx, id, params)
}

// DeleteSlot removes a slot. A slot with a live booking cannot be deleted;
// the booking must be cancelled first.
func (s *Service) DeleteSlot(ctx context.Context, id int64) error {
	return s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		live, err := txdb.Store.SlotHasLiveBooking(ctx, id)
		if err != nil {
			return err
		}
		if live {
			return domain.ErrSlotInUse
		}
		return txdb.Store.DeleteTimeSlot(ctx, id)
	})
}

// UpsertPricingRule creates or updates the rule keyed by
// (court, dayOfWeek, timeWindow). Re-submitting an existing tuple updates the
// price instead of inserting a second row.
func (s *Service) UpsertPricingRule(ctx context.Context, rule domain.PricingRule) (domain.PricingRule, error) {
	if rule.DayOfWeek < 0 || rule.DayOfWeek > 6 {
		return domain.PricingRule{}, fmt.Errorf("%w: day of week %d out of range", domain.ErrValidation, rule.DayOfWeek)
	}
	if _, _, err := domain.ParseWindow(rule.TimeWindow); err != nil {
		return domain.PricingRule{}, err
	}
	if rule.PriceCents < 0 {
		return domain.PricingRule{}, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if _, err := s.db.Store.GetCourt(ctx, rule.CourtID); err != nil {
		return domain.PricingRule{}, err
	}
	return s.db.Store.UpsertPricingRule(ctx, rule)
}

func (s *Service) ListPricingRules(ctx context.Context, courtID int64) ([]domain.PricingRule, error) {
	if courtID > 0 {
		return s.db.Store.ListRulesForCourt(ctx, courtID)
	}
	return s.db.Store.ListActiveRules(ctx)
}

// GenerateSlotsForDate materializes hourly slots across the court's operating
// hours for one date, each priced by the resolver. Windows that already have
// a slot are skipped, so repeated runs are safe.
func (s *Service) GenerateSlotsForDate(ctx context.Context, courtID int64, date string) ([]domain.TimeSlot, error) {
	court, err := s.db.Store.GetCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	if !court.IsActive {
		return nil, domain.ErrNoActiveCourt
	}
	if _, err := domain.ParseDate(date); err != nil {
		return nil, err
	}

	open, err := domain.ParseMinutes(court.OpenTime)
	if err != nil {
		return nil, err
	}
	close, err := domain.ParseMinutes(court.CloseTime)
	if err != nil {
		return nil, err
	}

	var created []domain.TimeSlot
	for start := open; start+60 <= close; start += 60 {
		startTime := domain.FormatMinutes(start)
		endTime := domain.FormatMinutes(start + 60)

		exists, err := s.db.Store.SlotExistsForWindow(ctx, courtID, date, startTime)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		price, err := s.resolver.ResolvePrice(ctx, court, date, startTime, endTime)
		if err != nil {
			return nil, err
		}
		slot, err := s.db.Store.CreateTimeSlot(ctx, store.CreateTimeSlotParams{
			CourtID:    courtID,
			Date:       date,
			StartTime:  startTime,
			EndTime:    endTime,
			PriceCents: price,
		})
		if err != nil {
			return nil, err
		}
		created = append(created, slot)
	}

	if len(created) > 0 {
		log.Ctx(ctx).Info().
			Int64("court_id", courtID).
			Str("date", date).
			Int("slots", len(created)).
			Msg("Generated time slots")
	}
	return created, nil
}

// validateWindow rejects inverted windows and windows outside the court's
// operating hours.
func validateWindow(court domain.Court, startTime, endTime string) error {
	start, err := domain.ParseMinutes(startTime)
	if err != nil {
		return err
	}
	end, err := domain.ParseMinutes(endTime)
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("%w: start %s is not before end %s", domain.ErrInvalidWindow, startTime, endTime)
	}

	open, err := domain.ParseMinutes(court.OpenTime)
	if err != nil {
		return err
	}
	close, err := domain.ParseMinutes(court.CloseTime)
	if err != nil {
		return err
	}
	if start < open || end > close {
		return fmt.Errorf("%w: %s-%s is outside operating hours %s-%s",
			domain.ErrInvalidWindow, startTime, endTime, court.OpenTime, court.CloseTime)
	}
	return nil
}
