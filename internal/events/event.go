// Package events defines the domain events emitted by the order pipeline.
package events

import (
	"time"

	"transport_broker_backend/platform/events"
)

// Event names for the order lifecycle.
const (
	OrderReconciledEvent        = "order.reconciled"
	OrderScheduleChangedEvent   = "order.schedule_changed"
	NotificationDispatchedEvent = "notification.dispatched"
)

// OrderReconciled is published after an order is merged with an external
// snapshot and persisted.
type OrderReconciled struct {
	events.BaseEvent
	OrderID    string
	ExternalID string
	Status     string
	Warnings   []string
}

func (e OrderReconciled) EventName() string { return OrderReconciledEvent }

// NewOrderReconciled creates an OrderReconciled event.
func NewOrderReconciled(orderID, externalID, status string, warnings []string) OrderReconciled {
	return OrderReconciled{
		BaseEvent:  events.NewBaseEvent(),
		OrderID:    orderID,
		ExternalID: externalID,
		Status:     status,
		Warnings:   warnings,
	}
}

// OrderScheduleChanged is published when reconciliation moves an order's
// estimated pickup or delivery window.
type OrderScheduleChanged struct {
	events.BaseEvent
	OrderID           string
	PickupEstimated   *time.Time
	DeliveryEstimated *time.Time
}

func (e OrderScheduleChanged) EventName() string { return OrderScheduleChangedEvent }

// NewOrderScheduleChanged creates an OrderScheduleChanged event.
func NewOrderScheduleChanged(orderID string, pickupEstimated, deliveryEstimated *time.Time) OrderScheduleChanged {
	return OrderScheduleChanged{
		BaseEvent:         events.NewBaseEvent(),
		OrderID:           orderID,
		PickupEstimated:   pickupEstimated,
		DeliveryEstimated: deliveryEstimated,
	}
}

// NotificationDispatched is published after a notification batch completes
// for an order.
type NotificationDispatched struct {
	events.BaseEvent
	OrderID    string
	Kind       string
	Recipients []string
	Sent       int
	Failed     int
}

func (e NotificationDispatched) EventName() string { return NotificationDispatchedEvent }

// NewNotificationDispatched creates a NotificationDispatched event.
func NewNotificationDispatched(orderID, kind string, recipients []string, sent, failed int) NotificationDispatched {
	return NotificationDispatched{
		BaseEvent:  events.NewBaseEvent(),
		OrderID:    orderID,
		Kind:       kind,
		Recipients: recipients,
		Sent:       sent,
		Failed:     failed,
	}
}
