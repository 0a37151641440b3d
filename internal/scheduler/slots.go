// internal/scheduler/slots.go
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/courtbook/courtbook/internal/config"
	"github.com/courtbook/courtbook/internal/domain"
	"github.com/courtbook/courtbook/internal/inventory"
)

const slotGenerationTimeout = 2 * time.Minute

// RegisterSlotGenerationJob schedules the job that materializes bookable
// slots ahead of time for every active court.
func RegisterSlotGenerationJob(inv *inventory.Service, cfg config.SchedulerConfig) error {
	if inv == nil {
		return fmt.Errorf("slot generation job requires inventory service")
	}

	jobName := "slot_generation"
	jobLogger := log.With().
		Str("component", "slot_generation_job").
		Str("job_name", jobName).
		Str("cron", cfg.SlotGenerationCron).
		Logger()

	_, err := AddJob(jobName, cfg.SlotGenerationCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), slotGenerationTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		courts, err := inv.ListActiveCourts(ctx)
		if err != nil {
			jobLogger.Error().Err(err).Msg("Failed to load courts for slot generation")
			return
		}

		today := time.Now().UTC()
		generated := 0
		for day := 0; day < cfg.SlotGenerationDays; day++ {
			date := today.AddDate(0, 0, day).Format(domain.DateLayout)
			for _, court := range courts {
				slots, err := inv.GenerateSlotsForDate(ctx, court.ID, date)
				if err != nil {
					jobLogger.Error().Err(err).
						Int64("court_id", court.ID).
						Str("date", date).
						Msg("Failed to generate slots")
					continue
				}
				generated += len(slots)
			}
		}
		jobLogger.Info().Int("slots_created", generated).Msg("Slot generation run finished")
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add slot generation job: %w", err)
	}

	jobLogger.Info().Msg("Slot generation job registered")
	return nil
}
