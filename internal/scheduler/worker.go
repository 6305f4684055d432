package scheduler

import (
	"context"

	"transport_broker_backend/internal/notifications"
	"transport_broker_backend/internal/orders/reconcile"
	"transport_broker_backend/platform/config"
	"transport_broker_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes background tasks from redis.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	reconcile *reconcile.Service
	engine    *notifications.Engine
	log       *logger.Logger
}

// NewWorker creates the asynq worker with all task handlers registered.
func NewWorker(cfg config.SchedulerConfig, reconcileSvc *reconcile.Service, engine *notifications.Engine, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency <= 0 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{cfg.GetAsynqQueueName(): 1},
	})

	w := &Worker{
		server:    server,
		mux:       asynq.NewServeMux(),
		reconcile: reconcileSvc,
		engine:    engine,
		log:       log,
	}
	w.mux.HandleFunc(TaskOrderPull, w.handleOrderPull)
	w.mux.HandleFunc(TaskConfirmationSweep, w.handleConfirmationSweep)
	w.mux.HandleFunc(TaskSurveySweep, w.handleSurveySweep)
	return w, nil
}

// Run blocks serving tasks until Shutdown is called.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown stops the worker gracefully.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleOrderPull(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseOrderPullPayload(task)
	if err != nil {
		return err
	}
	if err := w.reconcile.Reconcile(ctx, payload.OrderID); err != nil {
		w.log.ReconciliationError(payload.OrderID, err)
		return err
	}
	return nil
}

func (w *Worker) handleConfirmationSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseConfirmationSweepPayload(task)
	if err != nil {
		return err
	}
	return w.engine.RunConfirmationSweep(ctx, notifications.SweepOptions{PreserveFlags: payload.PreserveFlags})
}

func (w *Worker) handleSurveySweep(ctx context.Context, _ *asynq.Task) error {
	return w.engine.RunSurveySweep(ctx)
}
