package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "CONVERSATION_STARTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func NewConversationStarted(conversationID string) Event {
	return BaseEvent{
		Type:       "CONVERSATION_STARTED",
		Data:       map[string]interface{}{"conversation_id": conversationID},
		OccurredAt: time.Now(),
	}
}

func NewConversationEnded(conversationID string, reason string) Event {
	return BaseEvent{
		Type: "CONVERSATION_ENDED",
		Data: map[string]interface{}{
			"conversation_id": conversationID,
			"reason":          reason,
		},
		OccurredAt: time.Now(),
	}
}
