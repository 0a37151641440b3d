// internal/api/courts/handlers.go
package courts

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtbook/courtbook/internal/api/apiutil"
	"github.com/courtbook/courtbook/internal/inventory"
)

var (
	service     *inventory.Service
	serviceOnce sync.Once
)

const courtsQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *inventory.Service) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
	})
}

type inlineRuleRequest struct {
	DayOfWeek  int    `json:"dayOfWeek" validate:"min=0,max=6"`
	TimeWindow string `json:"timeWindow" validate:"required"`
	PriceCents int64  `json:"priceCents" validate:"min=0"`
}

type createCourtRequest struct {
	Name            string              `json:"name" validate:"required"`
	Description     string              `json:"description"`
	OpenTime        string              `json:"openTime" validate:"required"`
	CloseTime       string              `json:"closeTime" validate:"required"`
	HourlyRateCents int64               `json:"hourlyRateCents" validate:"min=0"`
	PricingRules    []inlineRuleRequest `json:"pricingRules"`
}

// GET /api/v1/courts
func HandleCourtsList(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	courts, err := svc.ListActiveCourts(ctx)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to list courts")
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, courts); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write courts response")
	}
}

// POST /api/v1/courts
func HandleCourtCreate(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireAdmin(w, r); !ok {
		return
	}

	var req createCourtRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	court, err := svc.CreateCourt(ctx, inventory.CreateCourtParams{
		Name:            req.Name,
		Description:     req.Description,
		OpenTime:        req.OpenTime,
		CloseTime:       req.CloseTime,
		HourlyRateCents: req.HourlyRateCents,
		PricingRules:    toInlineRules(req.PricingRules),
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().Int64("court_id", court.ID).Str("name", court.Name).Msg("Court created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, court); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write court response")
	}
}

type updateCourtRequest struct {
	Name            *string             `json:"name"`
	Description     *string             `json:"description"`
	OpenTime        *string             `json:"openTime"`
	CloseTime       *string             `json:"closeTime"`
	HourlyRateCents *int64              `json:"hourlyRateCents"`
	IsActive        *bool               `json:"isActive"`
	PricingRules    []inlineRuleRequest `json:"pricingRules"`
}

// PUT /api/v1/courts/{id}
func HandleCourtUpdate(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireAdmin(w, r); !ok {
		return
	}

	id, err := apiutil.ParsePositiveInt64Field(r.PathValue("id"), "court id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req updateCourtRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	court, err := svc.UpdateCourt(ctx, id, inventory.UpdateCourtParams{
		Name:            req.Name,
		Description:     req.Description,
		OpenTime:        req.OpenTime,
		CloseTime:       req.CloseTime,
		HourlyRateCents: req.HourlyRateCents,
		IsActive:        req.IsActive,
		PricingRules:    toInlineRules(req.PricingRules),
		ReplaceRules:    req.PricingRules != nil,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, court); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write court response")
	}
}

// DELETE /api/v1/courts/{id}
func HandleCourtDelete(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireAdmin(w, r); !ok {
		return
	}

	id, err := apiutil.ParsePositiveInt64Field(r.PathValue("id"), "court id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	if err := svc.DeleteCourt(ctx, id); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().Int64("court_id", id).Msg("Court deleted")
	w.WriteHeader(http.StatusNoContent)
}

func toInlineRules(rules []inlineRuleRequest) []inventory.InlineRule {
	if len(rules) == 0 {
		return nil
	}
	out := make([]inventory.InlineRule, 0, len(rules))
	for _, rule := range rules {
		out = append(out, inventory.InlineRule{
			DayOfWeek:  rule.DayOfWeek,
			TimeWindow: rule.TimeWindow,
			PriceCents: rule.PriceCents,
		})
	}
	return out
}

func loadService() *inventory.Service {
	return service
}
