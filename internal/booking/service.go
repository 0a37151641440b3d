// Package booking implements the reservation lifecycle: atomically reserving
// a slot, transitioning booking status, and releasing the slot on
// cancellation. The conditional update inside one transaction is the only
// mechanism that serializes concurrent reservations; there is no in-process
// locking.
package booking

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/courtbook/courtbook/internal/authz"
	appdb "github.com/courtbook/courtbook/internal/db"
	"github.com/courtbook/courtbook/internal/domain"
	"github.com/courtbook/courtbook/internal/store"
)

type Service struct {
	db *appdb.DB
}

func NewService(database *appdb.DB) *Service {
	return &Service{db: database}
}

// CreateBooking reserves the slot for the actor. The booking row is inserted
// and the slot's availability flag flipped in one transaction, guarded by a
// check that the flag was still set at write time. When two requests race,
// exactly one commits; the other observes zero affected rows and fails with
// ErrSlotUnavailable.
func (s *Service) CreateBooking(ctx context.Context, actor authz.Actor, timeSlotID int64) (domain.BookingDetail, error) {
	slot, err := s.db.Store.GetTimeSlotWithCourt(ctx, timeSlotID)
	if err != nil {
		return domain.BookingDetail{}, err
	}
	if !slot.IsAvailable || !slot.Court.IsActive {
		return domain.BookingDetail{}, domain.ErrSlotUnavailable
	}

	var created domain.Booking
	err = s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		reserved, err := txdb.Store.ReserveTimeSlot(ctx, timeSlotID)
		if err != nil {
			return fmt.Errorf("reserve slot: %w", err)
		}
		if !reserved {
			return domain.ErrSlotUnavailable
		}

		created, err = txdb.Store.CreateBooking(ctx, store.CreateBookingParams{
			UserID:          actor.ID,
			TimeSlotID:      timeSlotID,
			Status:          domain.StatusPending,
			TotalPriceCents: slot.PriceCents,
		})
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.BookingDetail{}, err
	}

	log.Ctx(ctx).Info().
		Int64("booking_id", created.ID).
		Int64("time_slot_id", timeSlotID).
		Int64("user_id", actor.ID).
		Int64("total_price_cents", created.TotalPriceCents).
		Msg("Booking created")

	// Read-back with user and slot+court detail; the transaction above is
	// the source of truth.
	return s.db.Store.GetBookingDetail(ctx, created.ID)
}

// CancelBooking marks the booking cancelled and releases its slot in one
// transaction. Cancelling an already-cancelled booking reports
// ErrAlreadyCancelled without touching the slot.
func (s *Service) CancelBooking(ctx context.Context, actor authz.Actor, id int64) (domain.BookingDetail, error) {
	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		existing, err := txdb.Store.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if !authz.CanManageBooking(actor, existing.UserID) {
			return authz.ErrForbidden
		}
		if existing.Status == domain.StatusCancelled {
			return domain.ErrAlreadyCancelled
		}

		if err := txdb.Store.SetBookingStatus(ctx, id, domain.StatusCancelled); err != nil {
			return err
		}
		return txdb.Store.ReleaseTimeSlot(ctx, existing.TimeSlotID)
	})
	if err != nil {
		return domain.BookingDetail{}, err
	}

	log.Ctx(ctx).Info().
		Int64("booking_id", id).
		Int64("actor_id", actor.ID).
		Msg("Booking cancelled")

	return s.db.Store.GetBookingDetail(ctx, id)
}

// UpdateStatus transitions the booking's state. pending may become confirmed;
// a transition into cancelled routes through the same slot-release path as
// CancelBooking, never a bare status write. Nothing leaves cancelled.
func (s *Service) UpdateStatus(ctx context.Context, actor authz.Actor, id int64, status string) (domain.BookingDetail, error) {
	if !domain.ValidStatus(status) {
		return domain.BookingDetail{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	if status == domain.StatusCancelled {
		return s.CancelBooking(ctx, actor, id)
	}

	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		existing, err := txdb.Store.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if !authz.CanManageBooking(actor, existing.UserID) {
			return authz.ErrForbidden
		}
		if existing.Status == domain.StatusCancelled {
			return domain.ErrAlreadyCancelled
		}
		if existing.Status == status {
			return nil
		}
		return txdb.Store.SetBookingStatus(ctx, id, status)
	})
	if err != nil {
		return domain.BookingDetail{}, err
	}

	return s.db.Store.GetBookingDetail(ctx, id)
}

// GetBooking returns one booking with detail, applying the ownership policy.
func (s *Service) GetBooking(ctx context.Context, actor authz.Actor, id int64) (domain.BookingDetail, error) {
	detail, err := s.db.Store.GetBookingDetail(ctx, id)
	if err != nil {
		return domain.BookingDetail{}, err
	}
	if !authz.CanManageBooking(actor, detail.UserID) {
		return domain.BookingDetail{}, authz.ErrForbidden
	}
	return detail, nil
}

// ListBookings returns all bookings for operators and the actor's own
// bookings otherwise.
func (s *Service) ListBookings(ctx context.Context, actor authz.Actor) ([]domain.BookingDetail, error) {
	if authz.IsOperator(actor) {
		return s.db.Store.ListAllBookings(ctx)
	}
	return s.db.Store.ListBookingsForUser(ctx, actor.ID)
}
