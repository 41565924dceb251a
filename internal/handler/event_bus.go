// internal/handler/event_bus.go
package handler

import (
	"encoding/json"

	"go.uber.org/zap"

	"usb-inventory-service/internal/model"
)

// EventBus buffers scan lifecycle events and fans them out to the
// WebSocket clients. It implements service.EventPublisher.
type EventBus struct {
	events      chan model.Event
	connections *ConnectionManager
	logger      *zap.Logger
}

// NewEventBus creates a new event bus
func NewEventBus(connections *ConnectionManager, logger *zap.Logger) *EventBus {
	return &EventBus{
		events:      make(chan model.Event, 1000),
		connections: connections,
		logger:      logger,
	}
}

// Start starts the event bus distribution loop
func (eb *EventBus) Start() {
	for event := range eb.events {
		eb.distributeEvent(event)
	}
}

// Publish publishes an event. Publication never blocks the scanner: when
// the buffer is full the event is dropped with a warning.
func (eb *EventBus) Publish(event model.Event) {
	select {
	case eb.events <- event:
	default:
		if eb.logger != nil {
			eb.logger.Warn("Event bus full, dropping event",
				zap.String("event_type", string(event.Type)),
			)
		}
	}
}

// distributeEvent distributes an event to all connected clients
func (eb *EventBus) distributeEvent(event model.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		eb.logger.Error("Failed to encode event", zap.Error(err))
		return
	}
	eb.connections.Broadcast(payload)
}
