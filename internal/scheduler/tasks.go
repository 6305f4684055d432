// Package scheduler runs the background work: asynq tasks for on-demand
// order pulls and ticker-driven notification sweeps.
package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type names.
const (
	TaskOrderPull         = "orders.pull"
	TaskConfirmationSweep = "notifications.confirmation_sweep"
	TaskSurveySweep       = "notifications.survey_sweep"
)

// OrderPullPayload identifies the order to pull and reconcile.
type OrderPullPayload struct {
	OrderID string `json:"orderId"`
}

// NewOrderPullTask creates an asynq task for one order pull.
func NewOrderPullTask(orderID string) (*asynq.Task, error) {
	payload, err := json.Marshal(OrderPullPayload{OrderID: orderID})
	if err != nil {
		return nil, fmt.Errorf("marshal order pull payload: %w", err)
	}
	return asynq.NewTask(TaskOrderPull, payload), nil
}

// ParseOrderPullPayload decodes an order pull task payload.
func ParseOrderPullPayload(task *asynq.Task) (OrderPullPayload, error) {
	var payload OrderPullPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("unmarshal order pull payload: %w", err)
	}
	if payload.OrderID == "" {
		return payload, fmt.Errorf("order pull payload missing orderId")
	}
	return payload, nil
}

// ConfirmationSweepPayload carries the sweep mode.
type ConfirmationSweepPayload struct {
	PreserveFlags bool `json:"preserveFlags"`
}

// NewConfirmationSweepTask creates an asynq task for a confirmation sweep.
func NewConfirmationSweepTask(preserveFlags bool) (*asynq.Task, error) {
	payload, err := json.Marshal(ConfirmationSweepPayload{PreserveFlags: preserveFlags})
	if err != nil {
		return nil, fmt.Errorf("marshal confirmation sweep payload: %w", err)
	}
	return asynq.NewTask(TaskConfirmationSweep, payload), nil
}

// ParseConfirmationSweepPayload decodes a confirmation sweep task payload.
func ParseConfirmationSweepPayload(task *asynq.Task) (ConfirmationSweepPayload, error) {
	var payload ConfirmationSweepPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("unmarshal confirmation sweep payload: %w", err)
	}
	return payload, nil
}

// NewSurveySweepTask creates an asynq task for a survey sweep.
func NewSurveySweepTask() *asynq.Task {
	return asynq.NewTask(TaskSurveySweep, nil)
}
