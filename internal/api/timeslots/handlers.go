// internal/api/timeslots/handlers.go
package timeslots

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtbook/courtbook/internal/api/apiutil"
	"github.com/courtbook/courtbook/internal/inventory"
	"github.com/courtbook/courtbook/internal/store"
)

var (
	service     *inventory.Service
	serviceOnce sync.Once
)

const slotsQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *inventory.Service) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
	})
}

// GET /api/v1/time-slots?date=
func HandleSlotsList(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	date, err := apiutil.RequiredQuery(r, "date")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), slotsQueryTimeout)
	defer cancel()

	slots, err := svc.ListSlotsForDate(ctx, date)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeSlots(w, r, slots)
}

// GET /api/v1/time-slots/available?date=
func HandleAvailableSlots(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	date, err := apiutil.RequiredQuery(r, "date")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), slotsQueryTimeout)
	defer cancel()

	slots, err := svc.ListAvailableSlotsForDate(ctx, date)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeSlots(w, r, slots)
}

// GET /api/v1/time-slots/range?startDate=&endDate=
func HandleSlotsRange(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	startDate, err := apiutil.RequiredQuery(r, "startDate")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	endDate, err := apiutil.RequiredQuery(r, "endDate")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), slotsQueryTimeout)
	defer cancel()

	slots, err := svc.ListSlotsInRange(ctx, startDate, endDate)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, slots); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write slot range response")
	}
}

type createSlotRequest struct {
	CourtID    int64  `json:"courtId" validate:"required,gt=0"`
	Date       string `json:"date" validate:"required"`
	StartTime  string `json:"startTime" validate:"required"`
	EndTime    string `json:"endTime" validate:"required"`
	PriceCents *int64 `json:"priceCents"`
}

// POST /api/v1/time-slots
func HandleSlotCreate(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireAdmin(w, r); !ok {
		return
	}

	var req createSlotRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), slotsQueryTimeout)
	defer cancel()

	slot, err := svc.CreateSlot(ctx, inventory.CreateSlotParams{
		CourtID:    req.CourtID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		PriceCents: req.PriceCents,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Int64("time_slot_id", slot.ID).
		Int64("court_id", slot.CourtID).
		Str("date", slot.Date).
		Msg("Time slot created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, slot); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write slot response")
	}
}

type updateSlotRequest struct {
	PriceCents  *int64 `json:"priceCents"`
	IsAvailable *bool  `json:"isAvailable"`
}

// PUT /api/v1/time-slots/{id}
func HandleSlotUpdate(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireAdmin(w, r); !ok {
		return
	}

	id, err := apiutil.ParsePositiveInt64Field(r.PathValue("id"), "time slot id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req updateSlotRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), slotsQueryTimeout)
	defer cancel()

	slot, err := svc.UpdateSlot(ctx, id, store.UpdateTimeSlotParams{
		PriceCents:  req.PriceCents,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, slot); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write slot response")
	}
}

// DELETE /api/v1/time-slots/{id}
func HandleSlotDelete(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireAdmin(w, r); !ok {
		return
	}

	id, err := apiutil.ParsePositiveInt64Field(r.PathValue("id"), "time slot id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), slotsQueryTimeout)
	defer cancel()

	if err := svc.DeleteSlot(ctx, id); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().Int64("time_slot_id", id).Msg("Time slot deleted")
	w.WriteHeader(http.StatusNoContent)
}

type generateSlotsRequest struct {
	CourtID int64  `json:"courtId" validate:"required,gt=0"`
	Date    string `json:"date" validate:"required"`
}

// POST /api/v1/time-slots/generate
func HandleSlotsGenerate(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireAdmin(w, r); !ok {
		return
	}

	var req generateSlotsRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), slotsQueryTimeout)
	defer cancel()

	slots, err := svc.GenerateSlotsForDate(ctx, req.CourtID, req.Date)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, slots); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write generated slots response")
	}
}

func writeSlots(w http.ResponseWriter, r *http.Request, slots any) {
	if err := apiutil.WriteJSON(w, http.StatusOK, slots); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write slots response")
	}
}

func loadService() *inventory.Service {
	return service
}
