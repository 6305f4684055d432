// Package transport holds the HTTP-facing types for the orders module.
package transport

// Webhook event types accepted on the TMS intake route. The payload shape is
// the same snapshot for every event; the event name is informational.
const (
	EventPickup       = "pickup"
	EventDelivery     = "delivery"
	EventModification = "modification"
	EventCancellation = "cancellation"
)

// AllowedEvent reports whether an intake path parameter names a known event.
func AllowedEvent(event string) bool {
	switch event {
	case EventPickup, EventDelivery, EventModification, EventCancellation:
		return true
	}
	return false
}

// WebhookAccepted is the intake success response.
type WebhookAccepted struct {
	Status string `json:"status"`
	Event  string `json:"event"`
}

// PullQueued is the on-demand pull response.
type PullQueued struct {
	Status  string `json:"status"`
	OrderID string `json:"orderId"`
}
