// internal/api/stats/handlers.go
package stats

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtbook/courtbook/internal/analytics"
	"github.com/courtbook/courtbook/internal/api/apiutil"
)

var (
	aggregator     *analytics.Aggregator
	aggregatorOnce sync.Once
)

const statsQueryTimeout = 10 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(agg *analytics.Aggregator) {
	if agg == nil {
		return
	}
	aggregatorOnce.Do(func() {
		aggregator = agg
	})
}

// GET /api/v1/stats and GET /api/v1/admin/stats
func HandleStats(w http.ResponseWriter, r *http.Request) {
	agg := loadAggregator()
	if agg == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireOperator(w, r); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), statsQueryTimeout)
	defer cancel()

	snapshot, err := agg.Snapshot(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, snapshot); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write stats response")
	}
}

// GET /api/v1/admin/calendar?startDate=&endDate=
func HandleCalendar(w http.ResponseWriter, r *http.Request) {
	agg := loadAggregator()
	if agg == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireOperator(w, r); !ok {
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

	ctx, cancel := context.WithTimeout(r.Context(), statsQueryTimeout)
	defer cancel()

	bookingsList, err := agg.CalendarBookings(ctx, startDate, endDate)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, bookingsList); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write calendar response")
	}
}

func loadAggregator() *analytics.Aggregator {
	return aggregator
}
