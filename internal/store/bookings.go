package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/courtbook/courtbook/internal/domain"
)

const bookingColumns = "id, user_id, time_slot_id, status, total_price_cents, created_at"

func scanBooking(row interface{ Scan(...any) error }) (domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.TimeSlotID, &b.Status, &b.TotalPriceCents, &b.CreatedAt)
	return b, err
}

func (s *Store) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return b, err
}

const bookingDetailQuery = `
	SELECT b.id, b.user_id, b.time_slot_id, b.status, b.total_price_cents, b.created_at,
	       u.id, u.username, u.email, u.gender, u.role, u.is_blocked, u.created_at,
	       ts.id, ts.court_id, ts.date, ts.start_time, ts.end_time, ts.price_cents, ts.is_available,
	       c.id, c.name, c.description, c.open_time, c.close_time, c.hourly_rate_cents, c.is_active
	FROM bookings b
	JOIN users u ON u.id = b.user_id
	JOIN time_slots ts ON ts.id = b.time_slot_id
	JOIN courts c ON c.id = ts.court_id`

func scanBookingDetail(row interface{ Scan(...any) error }) (domain.BookingDetail, error) {
	var d domain.BookingDetail
	err := row.Scan(
		&d.ID, &d.UserID, &d.TimeSlotID, &d.Status, &d.TotalPriceCents, &d.CreatedAt,
		&d.User.ID, &d.User.Username, &d.User.Email, &d.User.Gender, &d.User.Role, &d.User.IsBlocked, &d.User.CreatedAt,
		&d.Slot.ID, &d.Slot.CourtID, &d.Slot.Date, &d.Slot.StartTime, &d.Slot.EndTime, &d.Slot.PriceCents, &d.Slot.IsAvailable,
		&d.Slot.Court.ID, &d.Slot.Court.Name, &d.Slot.Court.Description, &d.Slot.Court.OpenTime, &d.Slot.Court.CloseTime,
		&d.Slot.Court.HourlyRateCents, &d.Slot.Court.IsActive,
	)
	return d, err
}

// GetBookingDetail returns the booking with its user and slot+court
// materialized, the read-back shape returned by the lifecycle operations.
func (s *Store) GetBookingDetail(ctx context.Context, id int64) (domain.BookingDetail, error) {
	row := s.db.QueryRowContext(ctx, bookingDetailQuery+" WHERE b.id = ?", id)
	d, err := scanBookingDetail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BookingDetail{}, domain.ErrBookingNotFound
	}
	return d, err
}

func (s *Store) ListBookingsForUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	return s.listBookingDetails(ctx, bookingDetailQuery+" WHERE b.user_id = ? ORDER BY b.created_at DESC, b.id DESC", userID)
}

func (s *Store) ListAllBookings(ctx context.Context) ([]domain.BookingDetail, error) {
	return s.listBookingDetails(ctx, bookingDetailQuery+" ORDER BY b.created_at DESC, b.id DESC")
}

// ListBookingsBySlotDateRange returns bookings whose slot date falls inside
// [startDate, endDate], used by the vendor calendar.
func (s *Store) ListBookingsBySlotDateRange(ctx context.Context, startDate, endDate string) ([]domain.BookingDetail, error) {
	return s.listBookingDetails(ctx,
		bookingDetailQuery+" WHERE ts.date >= ? AND ts.date <= ? ORDER BY ts.date ASC, ts.start_time ASC",
		startDate, endDate)
}

func (s *Store) listBookingDetails(ctx context.Context, query string, args ...any) ([]domain.BookingDetail, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []domain.BookingDetail
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

type CreateBookingParams struct {
	UserID          int64
	TimeSlotID      int64
	Status          string
	TotalPriceCents int64
}

func (s *Store) CreateBooking(ctx context.Context, params CreateBookingParams) (domain.Booking, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO bookings (user_id, time_slot_id, status, total_price_cents) VALUES (?, ?, ?, ?)",
		params.UserID, params.TimeSlotID, params.Status, params.TotalPriceCents,
	)
	if err != nil {
		return domain.Booking{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return domain.Booking{}, err
	}
	return s.GetBooking(ctx, id)
}

// SetBookingStatus performs a bare status write. Transitions into "cancelled"
// must go through the lifecycle manager's cancel path instead so the slot is
// released in the same transaction.
func (s *Store) SetBookingStatus(ctx context.Context, id int64, status string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE bookings SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (s *Store) CountBookings(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings").Scan(&count)
	return count, err
}

func (s *Store) CountBookingsByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings WHERE status = ?", status).Scan(&count)
	return count, err
}

// SumConfirmedRevenue totals confirmed bookings. The window bounds compare the
// slot's calendar date, not the booking creation timestamp; empty strings
// leave that side unbounded.
func (s *Store) SumConfirmedRevenue(ctx context.Context, minDate, maxDate string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(b.total_price_cents), 0)
		FROM bookings b
		JOIN time_slots ts ON ts.id = b.time_slot_id
		WHERE b.status = 'confirmed'`
	args := []any{}
	if minDate != "" {
		query += " AND ts.date >= ?"
		args = append(args, minDate)
	}
	if maxDate != "" {
		query += " AND ts.date <= ?"
		args = append(args, maxDate)
	}

	var total int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&total)
	return total, err
}
