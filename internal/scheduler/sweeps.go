package scheduler

import (
	"context"
	"time"

	"transport_broker_backend/internal/notifications"
	"transport_broker_backend/platform/config"
	"transport_broker_backend/platform/logger"
)

// SweepRunner drives the notification sweeps on a fixed wall-clock cadence.
// Runs inside the scheduler binary alongside the asynq worker.
type SweepRunner struct {
	engine               *notifications.Engine
	confirmationInterval time.Duration
	surveyInterval       time.Duration
	preserveFlags        bool
	log                  *logger.Logger
}

// NewSweepRunner creates the ticker-driven sweep runner.
func NewSweepRunner(engine *notifications.Engine, schedCfg config.SchedulerConfig, notifCfg config.NotificationConfig, log *logger.Logger) *SweepRunner {
	confirmation := schedCfg.GetConfirmationSweepInterval()
	if confirmation <= 0 {
		confirmation = 4 * time.Hour
	}
	survey := schedCfg.GetSurveySweepInterval()
	if survey <= 0 {
		survey = 24 * time.Hour
	}

	return &SweepRunner{
		engine:               engine,
		confirmationInterval: confirmation,
		surveyInterval:       survey,
		preserveFlags:        notifCfg.GetPreserveNotificationFlags(),
		log:                  log,
	}
}

// Run blocks running both sweep loops until the context is canceled. Each
// sweep also fires once shortly after startup so a restart never loses a
// cycle.
func (r *SweepRunner) Run(ctx context.Context) {
	go r.loop(ctx, "confirmation_sweep", r.confirmationInterval, func(ctx context.Context) error {
		return r.engine.RunConfirmationSweep(ctx, notifications.SweepOptions{PreserveFlags: r.preserveFlags})
	})
	r.loop(ctx, "survey_sweep", r.surveyInterval, r.engine.RunSurveySweep)
}

func (r *SweepRunner) loop(ctx context.Context, name string, interval time.Duration, sweep func(context.Context) error) {
	r.log.Info("sweep loop started", "sweep", name, "interval", interval.String())

	startup := time.NewTimer(time.Minute)
	defer startup.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	run := func() {
		start := time.Now()
		if err := sweep(ctx); err != nil {
			r.log.Error("sweep failed", "sweep", name, "error", err)
			return
		}
		r.log.Info("sweep completed", "sweep", name, "duration_ms", time.Since(start).Milliseconds())
	}

	for {
		select {
		case <-ctx.Done():
			r.log.Info("sweep loop stopped", "sweep", name)
			return
		case <-startup.C:
			run()
		case <-ticker.C:
			run()
		}
	}
}
