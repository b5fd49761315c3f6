package tasks

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/facility-maintenance/internal/pm"
)

const sweepTimeout = 30 * time.Second

// Sweeper runs the two periodic background sweeps: overdue promotion and
// notification evaluation. Both are idempotent, so an extra run never hurts.
type Sweeper struct {
	lifecycle *pm.Lifecycle
	evaluator *pm.Evaluator
}

// NewSweeper creates a sweeper over the lifecycle manager and evaluator.
func NewSweeper(lifecycle *pm.Lifecycle, evaluator *pm.Evaluator) *Sweeper {
	return &Sweeper{lifecycle: lifecycle, evaluator: evaluator}
}

// RunOverdueSweep promotes past-due schedules to overdue.
func (s *Sweeper) RunOverdueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	if _, err := s.lifecycle.RunOverdueSweep(ctx); err != nil {
		log.WithError(err).Error("Overdue sweep failed")
	}
}

// RunNotificationSweep evaluates reminder thresholds and emits events.
func (s *Sweeper) RunNotificationSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	if _, err := s.evaluator.RunSweep(ctx); err != nil {
		log.WithError(err).Error("Notification sweep failed")
	}
}

// InitScheduler starts the cron scheduler with both sweeps. Overdue promotion
// runs hourly, notification evaluation every 15 minutes; both also run once
// at startup so a restarted server catches up immediately.
func InitScheduler(sweeper *Sweeper) *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("@hourly", sweeper.RunOverdueSweep); err != nil {
		log.WithError(err).Error("Failed to register overdue sweep")
	}
	if _, err := c.AddFunc("@every 15m", sweeper.RunNotificationSweep); err != nil {
		log.WithError(err).Error("Failed to register notification sweep")
	}

	c.Start()
	log.Info("Background sweep scheduler started")

	go func() {
		sweeper.RunOverdueSweep()
		sweeper.RunNotificationSweep()
	}()

	return c
}
