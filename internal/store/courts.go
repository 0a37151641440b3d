package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/courtbook/courtbook/internal/domain"
)

const courtColumns = "id, name, description, open_time, close_time, hourly_rate_cents, is_active"

func scanCourt(row interface{ Scan(...any) error }) (domain.Court, error) {
	var c domain.Court
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.OpenTime, &c.CloseTime, &c.HourlyRateCents, &c.IsActive)
	return c, err
}

func (s *Store) GetCourt(ctx context.Context, id int64) (domain.Court, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+courtColumns+" FROM courts WHERE id = ?", id)
	c, err := scanCourt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Court{}, domain.ErrCourtNotFound
	}
	return c, err
}

// ListActiveCourts returns active courts ordered by name; deactivated courts
// are hidden from discovery but keep their history.
func (s *Store) ListActiveCourts(ctx context.Context) ([]domain.Court, error) {
	return s.listCourts(ctx, "SELECT "+courtColumns+" FROM courts WHERE is_active = 1 ORDER BY name ASC")
}

func (s *Store) ListCourts(ctx context.Context) ([]domain.Court, error) {
	return s.listCourts(ctx, "SELECT "+courtColumns+" FROM courts ORDER BY name ASC")
}

func (s *Store) listCourts(ctx context.Context, query string) ([]domain.Court, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courts []domain.Court
	for rows.Next() {
		c, err := scanCourt(rows)
		if err != nil {
			return nil, err
		}
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

type CreateCourtParams struct {
	Name            string
	Description     string
	OpenTime        string
	CloseTime       string
	HourlyRateCents int64
	IsActive        bool
}

func (s *Store) CreateCourt(ctx context.Context, params CreateCourtParams) (domain.Court, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO courts (name, description, open_time, close_time, hourly_rate_cents, is_active) VALUES (?, ?, ?, ?, ?, ?)",
		params.Name, params.Description, params.OpenTime, params.CloseTime, params.HourlyRateCents, params.IsActive,
	)
	if err != nil {
		return domain.Court{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return domain.Court{}, err
	}
	return s.GetCourt(ctx, id)
}

type UpdateCourtParams struct {
	Name            *string
	Description     *string
	OpenTime        *string
	CloseTime       *string
	HourlyRateCents *int64
	IsActive        *bool
}

func (s *Store) UpdateCourt(ctx context.Context, id int64, params UpdateCourtParams) (domain.Court, error) {
	assignments := make([]string, 0, 6)
	args := make([]any, 0, 7)
	appendSet := func(column string, value any) {
		assignments = append(assignments, column+" = ?")
		args = append(args, value)
	}
	if params.Name != nil {
		appendSet("name", *params.Name)
	}
	if params.Description != nil {
		appendSet("description", *params.Description)
	}
	if params.OpenTime != nil {
		appendSet("open_time", *params.OpenTime)
	}
	if params.CloseTime != nil {
		appendSet("close_time", *params.CloseTime)
	}
	if params.HourlyRateCents != nil {
		appendSet("hourly_rate_cents", *params.HourlyRateCents)
	}
	if params.IsActive != nil {
		appendSet("is_active", *params.IsActive)
	}
	if len(assignments) == 0 {
		return s.GetCourt(ctx, id)
	}

	args = append(args, id)
	if _, err := s.db.ExecContext(ctx, "UPDATE courts SET "+strings.Join(assignments, ", ")+" WHERE id = ?", args...); err != nil {
		return domain.Court{}, err
	}
	return s.GetCourt(ctx, id)
}

func (s *Store) DeleteCourt(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM courts WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrCourtNotFound
	}
	return nil
}

func (s *Store) CountActiveCourts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM courts WHERE is_active = 1").Scan(&count)
	return count, err
}
