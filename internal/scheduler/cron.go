package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/mlenoir/vidvault/internal/services/syncer"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs the background auto-sync: periodically pushing local
// progress to the remote blob and pulling the other devices' updates back
type Scheduler struct {
	cron            *cron.Cron
	engine          *syncer.Engine
	intervalMinutes int
	logger          *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(engine *syncer.Engine, intervalMinutes int, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(),
		engine:          engine,
		intervalMinutes: intervalMinutes,
		logger:          logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	spec := fmt.Sprintf("@every %dm", s.intervalMinutes)
	_, err := s.cron.AddFunc(spec, func() {
		s.runSync()
	})
	if err != nil {
		return fmt.Errorf("failed to add sync job: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("interval_minutes", s.intervalMinutes).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runSync pushes then pulls. Unpaired devices skip silently; transient
// failures are logged and retried on the next tick.
func (s *Scheduler) runSync() {
	if s.engine.ActiveCode() == "" {
		s.logger.Debug("No active sync code, skipping auto-sync")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.engine.Push(ctx); err != nil {
		s.logger.WithError(err).Warn("Auto-sync push failed")
		return
	}
	if err := s.engine.Pull(ctx); err != nil {
		s.logger.WithError(err).Warn("Auto-sync pull failed")
		return
	}

	s.logger.Debug("Auto-sync completed")
}
