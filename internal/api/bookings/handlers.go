// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtbook/courtbook/internal/api/apiutil"
	"github.com/courtbook/courtbook/internal/booking"
	"github.com/courtbook/courtbook/internal/email"
)

var (
	service     *booking.Service
	emailSender email.Sender
	serviceOnce sync.Once
)

const bookingQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
// A nil sender disables booking emails.
func InitHandlers(svc *booking.Service, sender email.Sender) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
		emailSender = sender
	})
}

// GET /api/v1/bookings
func HandleBookingsList(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	actor, ok := apiutil.RequireActor(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	bookingsList, err := svc.ListBookings(ctx, actor)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, bookingsList); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write bookings response")
	}
}

type createBookingRequest struct {
	TimeSlotID int64 `json:"timeSlotId" validate:"required,gt=0"`
}

// POST /api/v1/bookings
func HandleBookingCreate(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	actor, ok := apiutil.RequireActor(w, r)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()
	ctx = log.Ctx(r.Context()).WithContext(ctx)

	detail, err := svc.CreateBooking(ctx, actor, req.TimeSlotID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	email.SendBookingConfirmation(emailSender, detail, *log.Ctx(r.Context()))

	if err := apiutil.WriteJSON(w, http.StatusCreated, detail); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("booking_id", detail.ID).Msg("Failed to write booking response")
	}
}

type updateBookingRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

// PUT /api/v1/bookings/{id}
func HandleBookingUpdate(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	actor, ok := apiutil.RequireActor(w, r)
	if !ok {
		return
	}

	id, err := apiutil.ParsePositiveInt64Field(r.PathValue("id"), "booking id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req updateBookingRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()
	ctx = log.Ctx(r.Context()).WithContext(ctx)

	detail, err := svc.UpdateStatus(ctx, actor, id, req.Status)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, detail); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("booking_id", id).Msg("Failed to write booking response")
	}
}

// DELETE /api/v1/bookings/{id}
func HandleBookingCancel(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	actor, ok := apiutil.RequireActor(w, r)
	if !ok {
		return
	}

	id, err := apiutil.ParsePositiveInt64Field(r.PathValue("id"), "booking id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()
	ctx = log.Ctx(r.Context()).WithContext(ctx)

	detail, err := svc.CancelBooking(ctx, actor, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	email.SendBookingCancellation(emailSender, detail, *log.Ctx(r.Context()))

	if err := apiutil.WriteJSON(w, http.StatusOK, detail); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("booking_id", id).Msg("Failed to write booking response")
	}
}

func loadService() *booking.Service {
	return service
}
