// Package scheduler runs the periodic leaderboard digest job.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kirkpatrick8/eventpool/internal/config"
	prommetrics "github.com/kirkpatrick8/eventpool/internal/metrics"
	"github.com/kirkpatrick8/eventpool/internal/service/leaderboard"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

// LeaderboardService interface for standings reads.
type LeaderboardService interface {
	Get(ctx context.Context) ([]leaderboard.Entry, error)
}

// Notifier interface for digest delivery.
type Notifier interface {
	LeaderboardDigest(entries []leaderboard.Entry) error
}

// Service schedules the daily leaderboard digest.
type Service struct {
	cron        *cron.Cron
	cfg         *config.SchedulerConfig
	leaderboard LeaderboardService
	notifier    Notifier
	log         *logger.Logger
}

// NewService creates a new scheduler service.
func NewService(cfg *config.SchedulerConfig, lb LeaderboardService, notifier Notifier, log *logger.Logger) (*Service, error) {
	location, err := cfg.GetLocation()
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone: %w", err)
	}

	return &Service{
		cron:        cron.New(cron.WithLocation(location)),
		cfg:         cfg,
		leaderboard: lb,
		notifier:    notifier,
		log:         log,
	}, nil
}

// Start registers the digest job and starts the cron loop.
func (s *Service) Start() error {
	if !s.cfg.Enabled {
		s.log.Info().Msg("Scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.DigestCron, s.RunDigest); err != nil {
		return fmt.Errorf("failed to schedule digest job: %w", err)
	}

	s.cron.Start()
	s.log.Info().Str("cron", s.cfg.DigestCron).Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish.
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// RunDigest computes the current standings and posts them to the webhook.
func (s *Service) RunDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entries, err := s.leaderboard.Get(ctx)
	if err != nil {
		prommetrics.DigestRunsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Msg("Failed to compute leaderboard for digest")
		return
	}

	if err := s.notifier.LeaderboardDigest(entries); err != nil {
		prommetrics.DigestRunsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Msg("Failed to send leaderboard digest")
		return
	}

	prommetrics.DigestRunsTotal.WithLabelValues("success").Inc()
	s.log.Info().Int("entries", len(entries)).Msg("Sent leaderboard digest")
}
