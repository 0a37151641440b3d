// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtbook/courtbook/internal/analytics"
	"github.com/courtbook/courtbook/internal/api"
	"github.com/courtbook/courtbook/internal/api/bookings"
	"github.com/courtbook/courtbook/internal/api/courts"
	"github.com/courtbook/courtbook/internal/api/pricingrules"
	"github.com/courtbook/courtbook/internal/api/stats"
	"github.com/courtbook/courtbook/internal/api/timeslots"
	"github.com/courtbook/courtbook/internal/api/users"
	"github.com/courtbook/courtbook/internal/booking"
	"github.com/courtbook/courtbook/internal/config"
	"github.com/courtbook/courtbook/internal/db"
	"github.com/courtbook/courtbook/internal/email"
	"github.com/courtbook/courtbook/internal/inventory"
	"github.com/courtbook/courtbook/internal/scheduler"
)

func newServer(cfg *config.Config, database *db.DB) (*http.Server, error) {
	inventoryService := inventory.NewService(database)
	bookingService := booking.NewService(database)
	aggregator := analytics.NewAggregator(database.Store)

	var sender email.Sender
	if cfg.Email.Enabled {
		client, err := email.NewSESClient(cfg.Email.AccessKeyID, cfg.Email.SecretAccessKey, cfg.Email.Region, cfg.Email.Sender)
		if err != nil {
			return nil, fmt.Errorf("configure email client: %w", err)
		}
		sender = client
	} else {
		log.Info().Msg("Email delivery disabled")
	}

	courts.InitHandlers(inventoryService)
	timeslots.InitHandlers(inventoryService)
	pricingrules.InitHandlers(inventoryService)
	bookings.InitHandlers(bookingService, sender)
	stats.InitHandlers(aggregator)
	users.InitHandlers(database.Store)

	if cfg.Scheduler.Enabled {
		if err := scheduler.Init(); err != nil {
			return nil, fmt.Errorf("init scheduler: %w", err)
		}
		if err := scheduler.RegisterSlotGenerationJob(inventoryService, cfg.Scheduler); err != nil {
			return nil, fmt.Errorf("register slot generation job: %w", err)
		}
		if err := scheduler.Start(); err != nil {
			return nil, fmt.Errorf("start scheduler: %w", err)
		}
	}

	router := http.NewServeMux()
	registerRoutes(router)

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithActor(database.Store),
		api.WithRequestID,
	)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, nil
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Courts
	mux.HandleFunc("GET /api/v1/courts", courts.HandleCourtsList)
	mux.HandleFunc("POST /api/v1/courts", courts.HandleCourtCreate)
	mux.HandleFunc("PUT /api/v1/courts/{id}", courts.HandleCourtUpdate)
	mux.HandleFunc("DELETE /api/v1/courts/{id}", courts.HandleCourtDelete)

	// Time slots
	mux.HandleFunc("GET /api/v1/time-slots", timeslots.HandleSlotsList)
	mux.HandleFunc("GET /api/v1/time-slots/available", timeslots.HandleAvailableSlots)
	mux.HandleFunc("GET /api/v1/time-slots/range", timeslots.HandleSlotsRange)
	mux.HandleFunc("POST /api/v1/time-slots", timeslots.HandleSlotCreate)
	mux.HandleFunc("PUT /api/v1/time-slots/{id}", timeslots.HandleSlotUpdate)
	mux.HandleFunc("DELETE /api/v1/time-slots/{id}", timeslots.HandleSlotDelete)
	mux.HandleFunc("POST /api/v1/time-slots/generate", timeslots.HandleSlotsGenerate)

	// Pricing rules
	mux.HandleFunc("GET /api/v1/pricing-rules", pricingrules.HandleRulesList)
	mux.HandleFunc("POST /api/v1/pricing-rules", pricingrules.HandleRuleUpsert)
	mux.HandleFunc("POST /api/v1/pricing-rules/batch", pricingrules.HandleRulesBatch)

	// Bookings
	mux.HandleFunc("GET /api/v1/bookings", bookings.HandleBookingsList)
	mux.HandleFunc("POST /api/v1/bookings", bookings.HandleBookingCreate)
	mux.HandleFunc("PUT /api/v1/bookings/{id}", bookings.HandleBookingUpdate)
	mux.HandleFunc("DELETE /api/v1/bookings/{id}", bookings.HandleBookingCancel)

	// Users
	mux.HandleFunc("GET /api/v1/users", users.HandleUsersList)
	mux.HandleFunc("POST /api/v1/users", users.HandleUserCreate)
	mux.HandleFunc("PUT /api/v1/users/{id}", users.HandleUserUpdate)
	mux.HandleFunc("DELETE /api/v1/users/{id}", users.HandleUserDelete)
	mux.HandleFunc("POST /api/v1/users/{id}/block", users.HandleUserBlock)
	mux.HandleFunc("POST /api/v1/users/{id}/unblock", users.HandleUserUnblock)

	// Stats and calendar
	mux.HandleFunc("GET /api/v1/stats", stats.HandleStats)
	mux.HandleFunc("GET /api/v1/admin/stats", stats.HandleStats)
	mux.HandleFunc("GET /api/v1/admin/calendar", stats.HandleCalendar)
}
