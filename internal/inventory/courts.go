package inventory

import (
	"context"
	"fmt"

	appdb "github.com/courtbook/courtbook/internal/db"
	"github.com/courtbook/courtbook/internal/domain"
	"github.com/courtbook/courtbook/internal/store"
)

// InlineRule is a pricing rule supplied alongside court create/update.
type InlineRule struct {
	DayOfWeek  int
	TimeWindow string
	PriceCents int64
}

type CreateCourtParams struct {
	Name            string
	Description     string
	OpenTime        string
	CloseTime       string
	HourlyRateCents int64
	PricingRules    []InlineRule
}

// CreateCourt inserts the court and any inline pricing rules in one
// transaction.
func (s *Service) CreateCourt(ctx context.Context, params CreateCourtParams) (domain.Court, error) {
	if err := validateCourtHours(params.OpenTime, params.CloseTime); err != nil {
		return domain.Court{}, err
	}
	if params.Name == "" {
		return domain.Court{}, fmt.Errorf("%w: court name is required", domain.ErrValidation)
	}
	if params.HourlyRateCents < 0 {
		return domain.Court{}, fmt.Errorf("%w: hourly rate must not be negative", domain.ErrValidation)
	}

	var court domain.Court
	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		var err error
		court, err = txdb.Store.CreateCourt(ctx, store.CreateCourtParams{
			Name:            params.Name,
			Description:     params.Description,
			OpenTime:        params.OpenTime,
			CloseTime:       params.CloseTime,
			HourlyRateCents: params.HourlyRateCents,
			IsActive:        true,
		})
		if err != nil {
			return err
		}
		return upsertInlineRules(ctx, txdb.Store, court.ID, params.PricingRules)
	})
	return court, err
}

type UpdateCourtParams struct {
	Name            *string
	Description     *string
	OpenTime        *string
	CloseTime       *string
	HourlyRateCents *int64
	IsActive        *bool
	// PricingRules, when non-nil, replaces the court's whole rule set.
	PricingRules []InlineRule
	ReplaceRules bool
}

func (s *Service) UpdateCourt(ctx context.Context, id int64, params UpdateCourtParams) (domain.Court, error) {
	if params.OpenTime != nil || params.CloseTime != nil {
		existing, err := s.db.Store.GetCourt(ctx, id)
		if err != nil {
			return domain.Court{}, err
		}
		open, close := existing.OpenTime, existing.CloseTime
		if params.OpenTime != nil {
			open = *params.OpenTime
		}
		if params.CloseTime != nil {
			close = *params.CloseTime
		}
		if err := validateCourtHours(open, close); err != nil {
			return domain.Court{}, err
		}
	}

	var court domain.Court
	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		var err error
		court, err = txdb.Store.UpdateCourt(ctx, id, store.UpdateCourtParams{
			Name:            params.Name,
			Description:     params.Description,
			OpenTime:        params.OpenTime,
			CloseTime:       params.CloseTime,
			HourlyRateCents: params.HourlyRateCents,
			IsActive:        params.IsActive,
		})
		if err != nil {
			return err
		}
		if !params.ReplaceRules {
			return nil
		}
		if err := txdb.Store.DeleteRulesForCourt(ctx, id); err != nil {
			return err
		}
		return upsertInlineRules(ctx, txdb.Store, id, params.PricingRules)
	})
	return court, err
}

func (s *Service) GetCourt(ctx context.Context, id int64) (domain.Court, error) {
	return s.db.Store.GetCourt(ctx, id)
}

func (s *Service) ListActiveCourts(ctx context.Context) ([]domain.Court, error) {
	return s.db.Store.ListActiveCourts(ctx)
}

func (s *Service) DeleteCourt(ctx context.Context, id int64) error {
	return s.db.Store.DeleteCourt(ctx, id)
}

func upsertInlineRules(ctx context.Context, txStore *store.Store, courtID int64, rules []InlineRule) error {
	for _, rule := range rules {
		if rule.DayOfWeek < 0 || rule.DayOfWeek > 6 {
			return fmt.Errorf("%w: day of week %d out of range", domain.ErrValidation, rule.DayOfWeek)
		}
		if _, _, err := domain.ParseWindow(rule.TimeWindow); err != nil {
			return err
		}
		if _, err := txStore.UpsertPricingRule(ctx, domain.PricingRule{
			CourtID:    courtID,
			DayOfWeek:  rule.DayOfWeek,
			TimeWindow: rule.TimeWindow,
			PriceCents: rule.PriceCents,
		}); err != nil {
			return err
		}
	}
	return nil
}

func validateCourtHours(openTime, closeTime string) error {
	open, err := domain.ParseMinutes(openTime)
	if err != nil {
		return err
	}
	close, err := domain.ParseMinutes(closeTime)
	if err != nil {
		return err
	}
	if open >= close {
		return fmt.Errorf("%w: open %s is not before close %s", domain.ErrInvalidWindow, openTime, closeTime)
	}
	return nil
}
