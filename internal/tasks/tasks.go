package tasks

import (
	"encoding/json"
	"time"
)

// Asynq task types.
const (
	// TypeNotificationCleanup drives the notification retention sweep. It
	// is enqueued on a schedule, not by request handlers.
	TypeNotificationCleanup = "notification:cleanup"

	// eventTaskPrefix namespaces domain-event tasks ("event:message.sent",
	// "event:room.deleted", ...).
	eventTaskPrefix = "event:"
)

// NotificationCleanupPayload carries the enqueue time so the handler can
// report sweep lag.
type NotificationCleanupPayload struct {
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewNotificationCleanupTask builds the payload for a retention sweep.
func NewNotificationCleanupTask() ([]byte, error) {
	return json.Marshal(NotificationCleanupPayload{EnqueuedAt: time.Now()})
}

// EventPayload wraps a domain event for asynq transport.
type EventPayload struct {
	Event      string          `json:"event"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// EventTaskType returns the asynq task type for a domain event name.
func EventTaskType(event string) string {
	return eventTaskPrefix + event
}

// NewEventTask serializes a domain event payload.
func NewEventTask(event string, data interface{}) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(EventPayload{
		Event:      event,
		OccurredAt: time.Now(),
		Data:       raw,
	})
}
