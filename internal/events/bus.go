package events

import (
	"transport_broker_backend/platform/events"
	"transport_broker_backend/platform/logger"
)

// Bus re-exports the platform event bus interface so modules only depend on
// internal packages.
type Bus = events.Bus

// Event re-exports the platform event interface.
type Event = events.Event

// Handler re-exports the platform handler interface.
type Handler = events.Handler

// HandlerFunc re-exports the platform handler adapter.
type HandlerFunc = events.HandlerFunc

// NewInMemoryBus creates the default in-process bus.
func NewInMemoryBus(log *logger.Logger) Bus {
	return events.NewInMemoryBus(log)
}
