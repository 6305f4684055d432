// The api binary serves the HTTP surface: TMS webhook intake, admin
// endpoints, and the health check.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transport_broker_backend/internal/email"
	ievents "transport_broker_backend/internal/events"
	apphttp "transport_broker_backend/internal/http"
	"transport_broker_backend/internal/http/router"
	"transport_broker_backend/internal/notifications"
	"transport_broker_backend/internal/orders"
	"transport_broker_backend/internal/orders/handler"
	"transport_broker_backend/internal/orders/reconcile"
	orderrepo "transport_broker_backend/internal/orders/repository"
	"transport_broker_backend/internal/orders/tms"
	"transport_broker_backend/internal/portals"
	"transport_broker_backend/internal/scheduler"
	"transport_broker_backend/platform/config"
	"transport_broker_backend/platform/db"
	"transport_broker_backend/platform/logger"
	"transport_broker_backend/platform/validator"

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

	if err := db.RunMigrations(ctx, cfg, "migrations"); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	bus := ievents.NewInMemoryBus(log)
	registerScheduleChangeLogger(bus, log)

	v := validator.New()
	orderRepo := orderrepo.NewRepository(pool)
	portalRepo := portals.NewRepository(pool)
	tmsClient := tms.NewClient(cfg, log)
	reconcileSvc := reconcile.NewService(orderRepo, portalRepo, tmsClient, bus, cfg, log)

	sender := email.NewSender(cfg, log)
	engine := notifications.NewEngine(orderRepo, portalRepo, sender, bus, cfg, cfg, log)

	taskClient, err := scheduler.NewClient(cfg, log)
	if err != nil {
		log.Error("task client init failed", "error", err)
		os.Exit(1)
	}
	defer taskClient.Close()

	ordersHandler := handler.NewHandler(reconcileSvc, orderRepo, taskClient, v, log)

	app := &apphttp.App{
		Config: router.Config{
			Environment:    cfg.Env,
			AllowedOrigins: corsOrigins(cfg),
		},
		Logger:    log,
		Validator: v,
		Health:    db.NewPoolAdapter(pool),
		EventBus:  bus,
		Modules: []apphttp.Module{
			orders.NewModule(ordersHandler, cfg, log),
			notifications.NewModule(engine, cfg, log),
		},
	}

	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           app.BuildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

func corsOrigins(cfg *config.Config) []string {
	if cfg.GetCORSAllowAll() {
		return nil
	}
	return cfg.GetCORSOrigins()
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
