package events

import (
	"context"
	"encoding/json"
	"time"
)

const (
	TypeUserRegistered     = "USER_REGISTERED"
	TypeUserLoggedIn       = "USER_LOGIN"
	TypeChatSessionCreated = "CHAT_SESSION_CREATED"
	TypeChatTurnCompleted  = "CHAT_TURN_COMPLETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "USER_LOGIN").
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

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
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

// Publisher sends events to a bus. Publishing is best effort: callers log
// failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Handler processes one event. A returned error asks the bus to redeliver.
type Handler func(ctx context.Context, event Event) error

// Subscriber delivers events of one type to a handler until ctx ends.
type Subscriber interface {
	Subscribe(ctx context.Context, eventType string, handler Handler) error
}

func Subject(eventType string) string {
	return "events." + eventType
}

type envelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// Marshal encodes an event with its type and timestamp so any bus can carry it.
func Marshal(event Event) ([]byte, error) {
	return json.Marshal(envelope{
		Type:       event.EventType(),
		OccurredAt: event.Timestamp(),
		Data:       event.Payload(),
	})
}

func Unmarshal(data []byte) (BaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return BaseEvent{}, err
	}
	return BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}, nil
}
