package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/courtbook/courtbook/internal/domain"
)

const slotColumns = "id, court_id, date, start_time, end_time, price_cents, is_available"

func scanSlot(row interface{ Scan(...any) error }) (domain.TimeSlot, error) {
	var t domain.TimeSlot
	err := row.Scan(&t.ID, &t.CourtID, &t.Date, &t.StartTime, &t.EndTime, &t.PriceCents, &t.IsAvailable)
	return t, err
}

func (s *Store) GetTimeSlot(ctx context.Context, id int64) (domain.TimeSlot, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+slotColumns+" FROM time_slots WHERE id = ?", id)
	t, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TimeSlot{}, domain.ErrSlotNotFound
	}
	return t, err
}

func (s *Store) GetTimeSlotWithCourt(ctx context.Context, id int64) (domain.TimeSlotWithCourt, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT ts.id, ts.court_id, ts.date, ts.start_time, ts.end_time, ts.price_cents, ts.is_available,
		       c.id, c.name, c.description, c.open_time, c.close_time, c.hourly_rate_cents, c.is_active
		FROM time_slots ts
		JOIN courts c ON c.id = ts.court_id
		WHERE ts.id = ?`, id)

	var out domain.TimeSlotWithCourt
	err := row.Scan(
		&out.ID, &out.CourtID, &out.Date, &out.StartTime, &out.EndTime, &out.PriceCents, &out.IsAvailable,
		&out.Court.ID, &out.Court.Name, &out.Court.Description, &out.Court.OpenTime, &out.Court.CloseTime,
		&out.Court.HourlyRateCents, &out.Court.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TimeSlotWithCourt{}, domain.ErrSlotNotFound
	}
	return out, err
}

// ListSlotsByDate returns the slots for one date joined with their court,
// ordered by start time then court name.
func (s *Store) ListSlotsByDate(ctx context.Context, date string) ([]domain.TimeSlotWithCourt, error) {
	return s.listSlotsWithCourt(ctx, `
		SELECT ts.id, ts.court_id, ts.date, ts.start_time, ts.end_time, ts.price_cents, ts.is_available,
		       c.id, c.name, c.description, c.open_time, c.close_time, c.hourly_rate_cents, c.is_active
		FROM time_slots ts
		JOIN courts c ON c.id = ts.court_id
		WHERE ts.date = ?
		ORDER BY ts.start_time ASC, c.name ASC`, date)
}

// ListAvailableSlotsByDate additionally filters on the slot availability flag
// and the court active flag.
func (s *Store) ListAvailableSlotsByDate(ctx context.Context, date string) ([]domain.TimeSlotWithCourt, error) {
	return s.listSlotsWithCourt(ctx, `
		SELECT ts.id, ts.court_id, ts.date, ts.start_time, ts.end_time, ts.price_cents, ts.is_available,
		       c.id, c.name, c.description, c.open_time, c.close_time, c.hourly_rate_cents, c.is_active
		FROM time_slots ts
		JOIN courts c ON c.id = ts.court_id
		WHERE ts.date = ? AND ts.is_available = 1 AND c.is_active = 1
		ORDER BY ts.start_time ASC, c.name ASC`, date)
}

func (s *Store) listSlotsWithCourt(ctx context.Context, query string, args ...any) ([]domain.TimeSlotWithCourt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []domain.TimeSlotWithCourt
	for rows.Next() {
		var out domain.TimeSlotWithCourt
		if err := rows.Scan(
			&out.ID, &out.CourtID, &out.Date, &out.StartTime, &out.EndTime, &out.PriceCents, &out.IsAvailable,
			&out.Court.ID, &out.Court.Name, &out.Court.Description, &out.Court.OpenTime, &out.Court.CloseTime,
			&out.Court.HourlyRateCents, &out.Court.IsActive,
		); err != nil {
			return nil, err
		}
		slots = append(slots, out)
	}
	return slots, rows.Err()
}

// ListSlotsByDateRange returns slots in [startDate, endDate] with their court
// and, when a non-cancelled booking references the slot, that booking and its
// user. Ordered by date, start time, court name.
func (s *Store) ListSlotsByDateRange(ctx context.Context, startDate, endDate string) ([]domain.CalendarSlot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts.id, ts.court_id, ts.date, ts.start_time, ts.end_time, ts.price_cents, ts.is_available,
		       c.id, c.name, c.description, c.open_time, c.close_time, c.hourly_rate_cents, c.is_active,
		       b.id, b.user_id, b.time_slot_id, b.status, b.total_price_cents, b.created_at,
		       u.id, u.username, u.email, u.gender, u.role, u.is_blocked, u.created_at
		FROM time_slots ts
		JOIN courts c ON c.id = ts.court_id
		LEFT JOIN bookings b ON b.time_slot_id = ts.id AND b.status != 'cancelled'
		LEFT JOIN users u ON u.id = b.user_id
		WHERE ts.date >= ? AND ts.date <= ?
		ORDER BY ts.date ASC, ts.start_time ASC, c.name ASC`, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []domain.CalendarSlot
	for rows.Next() {
		var out domain.CalendarSlot
		var (
			bookingID    sql.NullInt64
			bookingUser  sql.NullInt64
			bookingSlot  sql.NullInt64
			status       sql.NullString
			totalPrice   sql.NullInt64
			bookedAt     sql.NullTime
			userID       sql.NullInt64
			username     sql.NullString
			email        sql.NullString
			gender       sql.NullString
			role         sql.NullString
			isBlocked    sql.NullBool
			userCreated  sql.NullTime
		)
		if err := rows.Scan(
			&out.ID, &out.CourtID, &out.Date, &out.StartTime, &out.EndTime, &out.PriceCents, &out.IsAvailable,
			&out.Court.ID, &out.Court.Name, &out.Court.Description, &out.Court.OpenTime, &out.Court.CloseTime,
			&out.Court.HourlyRateCents, &out.Court.IsActive,
			&bookingID, &bookingUser, &bookingSlot, &status, &totalPrice, &bookedAt,
			&userID, &username, &email, &gender, &role, &isBlocked, &userCreated,
		); err != nil {
			return nil, err
		}
		if bookingID.Valid {
			out.Booking = &domain.CalendarEntry{
				Booking: domain.Booking{
					ID:              bookingID.Int64,
					UserID:          bookingUser.Int64,
					TimeSlotID:      bookingSlot.Int64,
					Status:          status.String,
					TotalPriceCents: totalPrice.Int64,
					CreatedAt:       bookedAt.Time,
				},
				User: domain.User{
					ID:        userID.Int64,
					Username:  username.String,
					Email:     email.String,
					Gender:    gender.String,
					Role:      role.String,
					IsBlocked: isBlocked.Bool,
					CreatedAt: userCreated.Time,
				},
			}
		}
		slots = append(slots, out)
	}
	return slots, rows.Err()
}

type CreateTimeSlotParams struct {
	CourtID    int64
	Date       string
	StartTime  string
	EndTime    string
	PriceCents int64
}

func (s *Store) CreateTimeSlot(ctx context.Context, params CreateTimeSlotParams) (domain.TimeSlot, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO time_slots (court_id, date, start_time, end_time, price_cents) VALUES (?, ?, ?, ?, ?)",
		params.CourtID, params.Date, params.StartTime, params.EndTime, params.PriceCents,
	)
	if err != nil {
		return domain.TimeSlot{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return domain.TimeSlot{}, err
	}
	return s.GetTimeSlot(ctx, id)
}

// UpdateTimeSlotParams carries the mutable slot fields. Time boundaries are
// immutable once a slot exists.
type UpdateTimeSlotParams struct {
	PriceCents  *int64
	IsAvailable *bool
}

func (s *Store) UpdateTimeSlot(ctx context.Context, id int64, params UpdateTimeSlotParams) (domain.TimeSlot, error) {
	assignments := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if params.PriceCents != nil {
		assignments = append(assignments, "price_cents = ?")
		args = append(args, *params.PriceCents)
	}
	if params.IsAvailable != nil {
		assignments = append(assignments, "is_available = ?")
		args = append(args, *params.IsAvailable)
	}
	if len(assignments) == 0 {
		return s.GetTimeSlot(ctx, id)
	}

	args = append(args, id)
	if _, err := s.db.ExecContext(ctx, "UPDATE time_slots SET "+strings.Join(assignments, ", ")+" WHERE id = ?", args...); err != nil {
		return domain.TimeSlot{}, err
	}
	return s.GetTimeSlot(ctx, id)
}

func (s *Store) DeleteTimeSlot(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM time_slots WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrSlotNotFound
	}
	return nil
}

// ReserveTimeSlot flips the availability flag from true to false, guarded by a
// condition that the flag was still true at write time. It reports whether the
// flip happened; false means another booking won the slot.
func (s *Store) ReserveTimeSlot(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE time_slots SET is_available = 0 WHERE id = ? AND is_available = 1", id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// ReleaseTimeSlot marks the slot available again after a cancellation.
func (s *Store) ReleaseTimeSlot(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "UPDATE time_slots SET is_available = 1 WHERE id = ?", id)
	return err
}

// SlotHasLiveBooking reports whether a non-cancelled booking references the slot.
func (s *Store) SlotHasLiveBooking(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE time_slot_id = ? AND status != 'cancelled'", id).Scan(&count)
	return count > 0, err
}

// SlotExistsForWindow reports whether a slot already occupies the exact
// (court, date, start) position, used to keep bulk generation idempotent.
func (s *Store) SlotExistsForWindow(ctx context.Context, courtID int64, date, startTime string) (bool, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM time_slots WHERE court_id = ? AND date = ? AND start_time = ?",
		courtID, date, startTime).Scan(&count)
	return count > 0, err
}
