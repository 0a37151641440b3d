// internal/api/pricingrules/handlers.go
package pricingrules

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtbook/courtbook/internal/api/apiutil"
	"github.com/courtbook/courtbook/internal/domain"
	"github.com/courtbook/courtbook/internal/inventory"
)

var (
	service     *inventory.Service
	serviceOnce sync.Once
)

const rulesQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *inventory.Service) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
	})
}

// GET /api/v1/pricing-rules?courtId=
func HandleRulesList(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireOperator(w, r); !ok {
		return
	}

	var courtID int64
	if raw := strings.TrimSpace(r.URL.Query().Get("courtId")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			http.Error(w, "courtId must be a positive integer", http.StatusBadRequest)
			return
		}
		courtID = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), rulesQueryTimeout)
	defer cancel()

	rules, err := svc.ListPricingRules(ctx, courtID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, rules); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write pricing rules response")
	}
}

type upsertRuleRequest struct {
	CourtID    int64  `json:"courtId" validate:"required,gt=0"`
	DayOfWeek  int    `json:"dayOfWeek" validate:"min=0,max=6"`
	TimeWindow string `json:"timeWindow" validate:"required"`
	PriceCents int64  `json:"priceCents" validate:"min=0"`
}

// POST /api/v1/pricing-rules
func HandleRuleUpsert(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireOperator(w, r); !ok {
		return
	}

	var req upsertRuleRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), rulesQueryTimeout)
	defer cancel()

	rule, err := svc.UpsertPricingRule(ctx, domain.PricingRule{
		CourtID:    req.CourtID,
		DayOfWeek:  req.DayOfWeek,
		TimeWindow: req.TimeWindow,
		PriceCents: req.PriceCents,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, rule); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write pricing rule response")
	}
}

type batchRulesRequest struct {
	Updates []upsertRuleRequest `json:"updates" validate:"required,min=1,dive"`
}

// POST /api/v1/pricing-rules/batch
func HandleRulesBatch(w http.ResponseWriter, r *http.Request) {
	svc := loadService()
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireOperator(w, r); !ok {
		return
	}

	var req batchRulesRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), rulesQueryTimeout)
	defer cancel()

	results := make([]domain.PricingRule, 0, len(req.Updates))
	for _, update := range req.Updates {
		rule, err := svc.UpsertPricingRule(ctx, domain.PricingRule{
			CourtID:    update.CourtID,
			DayOfWeek:  update.DayOfWeek,
			TimeWindow: update.TimeWindow,
			PriceCents: update.PriceCents,
		})
		if err != nil {
			apiutil.WriteError(w, r, err)
			return
		}
		results = append(results, rule)
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, results); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write batch rules response")
	}
}

func loadService() *inventory.Service {
	return service
}
