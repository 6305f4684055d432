// The scheduler binary runs the background side of the system: the asynq
// worker for on-demand pulls and the ticker-driven notification sweeps.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transport_broker_backend/internal/email"
	ievents "transport_broker_backend/internal/events"
	"transport_broker_backend/internal/notifications"
	"transport_broker_backend/internal/orders/reconcile"
	orderrepo "transport_broker_backend/internal/orders/repository"
	"transport_broker_backend/internal/orders/tms"
	"transport_broker_backend/internal/portals"
	"transport_broker_backend/internal/scheduler"
	"transport_broker_backend/platform/config"
	"transport_broker_backend/platform/db"
	"transport_broker_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := withRetry(ctx, log, "database connect", func() (*pgxpool.Pool, error) {
		return db.NewPool(ctx, cfg)
	})
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	bus := ievents.NewInMemoryBus(log)
	registerScheduleChangeLogger(bus, log)

	orderRepo := orderrepo.NewRepository(pool)
	portalRepo := portals.NewRepository(pool)
	tmsClient := tms.NewClient(cfg, log)
	reconcileSvc := reconcile.NewService(orderRepo, portalRepo, tmsClient, bus, cfg, log)

	sender := email.NewSender(cfg, log)
	engine := notifications.NewEngine(orderRepo, portalRepo, sender, bus, cfg, cfg, log)

	runner := scheduler.NewSweepRunner(engine, cfg, cfg, log)

	if cfg.GetRedisURL() != "" {
		worker, err := scheduler.NewWorker(cfg, reconcileSvc, engine, log)
		if err != nil {
			log.Error("worker init failed", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := worker.Run(); err != nil {
				log.Error("worker stopped", "error", err)
				stop()
			}
		}()
		defer worker.Shutdown()
	} else {
		log.Info("no redis configured, running sweeps only")
	}

	log.Info("scheduler started",
		"confirmation_interval", cfg.GetConfirmationSweepInterval().String(),
		"survey_interval", cfg.GetSurveySweepInterval().String(),
	)
	runner.Run(ctx)

	log.Info("scheduler stopped")
}

// registerScheduleChangeLogger consumes schedule-change events. The carrier
// notification transport lives outside this service; the trigger is recorded
// here.
func registerScheduleChangeLogger(bus ievents.Bus, log *logger.Logger) {
	bus.Subscribe(ievents.OrderScheduleChangedEvent, ievents.HandlerFunc(func(_ context.Context, event ievents.Event) error {
		if e, ok := event.(ievents.OrderScheduleChanged); ok {
			log.Info("order schedule changed",
				"order_id", e.OrderID,
				"pickup_estimated", e.PickupEstimated,
				"delivery_estimated", e.DeliveryEstimated,
			)
		}
		return nil
	}))
}

// withRetry retries startup dependencies with a fixed backoff so the binary
// survives slow infrastructure.
func withRetry[T any](ctx context.Context, log *logger.Logger, name string, fn func() (T, error)) (T, error) {
	var zero T
	for attempt := 1; attempt <= 5; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		log.Warn("startup dependency not ready", "dependency", name, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}
	result, err := fn()
	if err != nil {
		return zero, err
	}
	return result, nil
}
