package store

import (
	"context"

	"github.com/courtbook/courtbook/internal/domain"
)

const ruleColumns = "id, court_id, day_of_week, time_window, price_cents, is_active"

func scanRule(row interface{ Scan(...any) error }) (domain.PricingRule, error) {
	var r domain.PricingRule
	err := row.Scan(&r.ID, &r.CourtID, &r.DayOfWeek, &r.TimeWindow, &r.PriceCents, &r.IsActive)
	return r, err
}

// UpsertPricingRule inserts a rule or, when the (court, day, window) tuple
// already exists, updates the existing rule's price in place.
func (s *Store) UpsertPricingRule(ctx context.Context, rule domain.PricingRule) (domain.PricingRule, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO court_pricing_rules (court_id, day_of_week, time_window, price_cents, is_active)
		 VALUES (?, ?, ?, ?, 1)
		 ON CONFLICT (court_id, day_of_week, time_window)
		 DO UPDATE SET price_cents = excluded.price_cents
		 RETURNING `+ruleColumns,
		rule.CourtID, rule.DayOfWeek, rule.TimeWindow, rule.PriceCents,
	)
	return scanRule(row)
}

// ListRulesForCourtDay returns active rules for one court and day of week,
// newest rule first so the tie-break favors the highest id.
func (s *Store) ListRulesForCourtDay(ctx context.Context, courtID int64, dayOfWeek int) ([]domain.PricingRule, error) {
	return s.listRules(ctx,
		"SELECT "+ruleColumns+" FROM court_pricing_rules WHERE court_id = ? AND day_of_week = ? AND is_active = 1 ORDER BY id DESC",
		courtID, dayOfWeek,
	)
}

func (s *Store) ListRulesForCourt(ctx context.Context, courtID int64) ([]domain.PricingRule, error) {
	return s.listRules(ctx,
		"SELECT "+ruleColumns+" FROM court_pricing_rules WHERE court_id = ? ORDER BY day_of_week ASC, time_window ASC",
		courtID,
	)
}

func (s *Store) ListActiveRules(ctx context.Context) ([]domain.PricingRule, error) {
	return s.listRules(ctx,
		"SELECT "+ruleColumns+" FROM court_pricing_rules WHERE is_active = 1 ORDER BY court_id ASC, day_of_week ASC, time_window ASC",
	)
}

func (s *Store) DeleteRulesForCourt(ctx context.Context, courtID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM court_pricing_rules WHERE court_id = ?", courtID)
	return err
}

func (s *Store) listRules(ctx context.Context, query string, args ...any) ([]domain.PricingRule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []domain.PricingRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}
