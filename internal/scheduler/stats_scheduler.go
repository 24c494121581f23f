package scheduler

import (
	"context"

	"github.com/coderr-app/coderr-backend/internal/app/service"
	"github.com/coderr-app/coderr-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// StatsScheduler refreshes the platform-stats cache on a fixed schedule so
// /base-info/ rarely has to recompute on a cold cache.
type StatsScheduler struct {
	cron         *cron.Cron
	statsService service.StatsService
	schedule     string
}

func NewStatsScheduler(statsService service.StatsService, schedule string) *StatsScheduler {
	return &StatsScheduler{
		cron:         cron.New(),
		statsService: statsService,
		schedule:     schedule,
	}
}

func (s *StatsScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		logger.Info("Starting scheduled platform stats refresh", nil)

		if _, err := s.statsService.Refresh(context.Background()); err != nil {
			logger.Error("Failed to refresh platform stats from scheduler", err, nil)
			return
		}

		logger.Info("Successfully refreshed platform stats from scheduler", nil)
	})

	if err != nil {
		logger.Error("Failed to add cron job for stats refresh", err, nil)
		return err
	}

	s.cron.Start()
	logger.Info("Stats scheduler started successfully", map[string]interface{}{
		"schedule": s.schedule,
	})

	return nil
}

func (s *StatsScheduler) Stop() {
	logger.Info("Stopping stats scheduler...", nil)
	s.cron.Stop()
	logger.Info("Stats scheduler stopped", nil)
}
