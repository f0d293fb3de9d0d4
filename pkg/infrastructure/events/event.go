// Package events records what happens during planning runs. Streams are keyed by run ID.
package events

import (
	"time"
)

// Event is an immutable fact about a planning run published to an EventStore
type Event interface {
	// Type is one of the planning event names, e.g. WeekPlannedEvent
	Type() string
	// StreamID is the run ID the event belongs to
	StreamID() string
	// Data holds the typed payload, e.g. WeekPlanned
	Data() any
	Timestamp() time.Time
	// Version is the 1-based position of the event within its stream
	Version() int
}

// EventHandler reacts to published events. Handlers are called on their own
// goroutine and must be safe for concurrent use.
type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// EventStore appends events to streams and fans them out to subscribers
type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

// BaseEvent is the Event implementation used by every planning event.
// The store assigns EventVersion on append.
type BaseEvent struct {
	EventType    string
	Stream       string
	EventData    any
	EventTime    time.Time
	EventVersion int
}

func (e BaseEvent) Type() string {
	return e.EventType
}

func (e BaseEvent) StreamID() string {
	return e.Stream
}

func (e BaseEvent) Data() any {
	return e.EventData
}

func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func (e BaseEvent) Version() int {
	return e.EventVersion
}

// NewEvent stamps data with the current time. Its version is replaced when appended.
func NewEvent(eventType, streamID string, data any) Event {
	return BaseEvent{
		EventType:    eventType,
		Stream:       streamID,
		EventData:    data,
		EventTime:    time.Now(),
		EventVersion: 1,
	}
}
