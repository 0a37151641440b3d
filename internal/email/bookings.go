package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/courtbook/courtbook/internal/api/apiutil"
	"github.com/courtbook/courtbook/internal/domain"
)

const sendTimeout = 5 * time.Second

// SendBookingConfirmation delivers a confirmation for a fresh booking
// asynchronously. A nil sender disables email entirely.
func SendBookingConfirmation(sender Sender, detail domain.BookingDetail, logger zerolog.Logger) {
	subject := fmt.Sprintf("Booking confirmed: %s on %s", detail.Slot.Court.Name, detail.Slot.Date)
	body := fmt.Sprintf(
		"Your booking for %s on %s from %s to %s is recorded.\nTotal: %s\nBooking reference: %d\n",
		detail.Slot.Court.Name, detail.Slot.Date, detail.Slot.StartTime, detail.Slot.EndTime,
		apiutil.FormatPriceCents(detail.TotalPriceCents), detail.ID,
	)
	sendAsync(sender, detail.User.Email, subject, body, logger)
}

// SendBookingCancellation notifies the user their booking was cancelled.
func SendBookingCancellation(sender Sender, detail domain.BookingDetail, logger zerolog.Logger) {
	subject := fmt.Sprintf("Booking cancelled: %s on %s", detail.Slot.Court.Name, detail.Slot.Date)
	body := fmt.Sprintf(
		"Your booking for %s on %s from %s to %s has been cancelled.\nBooking reference: %d\n",
		detail.Slot.Court.Name, detail.Slot.Date, detail.Slot.StartTime, detail.Slot.EndTime, detail.ID,
	)
	sendAsync(sender, detail.User.Email, subject, body, logger)
}

func sendAsync(sender Sender, recipient, subject, body string, logger zerolog.Logger) {
	if sender == nil {
		return
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := sender.Send(ctx, recipient, subject, body); err != nil {
			logger.Error().Err(err).Str("recipient", recipient).Msg("Failed to send booking email")
		}
	}()
}
