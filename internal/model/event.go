// internal/model/event.go
package model

import "time"

// EventType identifies a scan lifecycle event
type EventType string

const (
	EventScanStarted   EventType = "scan.started"
	EventScanCompleted EventType = "scan.completed"
	EventDeviceAdded   EventType = "device.added"
	EventDeviceRemoved EventType = "device.removed"
)

// Event is the payload streamed to WebSocket subscribers.
type Event struct {
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType EventType, source string, data map[string]interface{}) Event {
	return Event{
		Type:      eventType,
		Source:    source,
		Data:      data,
		Timestamp: time.Now(),
	}
}
