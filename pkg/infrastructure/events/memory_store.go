package events

import (
	"sync"

	"github.com/go-logr/logr"
)

type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	position    int
	allEvents   []Event

	logger     logr.Logger
	deliveries sync.WaitGroup
}

func NewInMemoryEventStore(logger logr.Logger) *InMemoryEventStore {
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		logger:      logger,
	}
}

var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	eventWithVersion := BaseEvent{
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}

	s.streams[streamID] = append(s.streams[streamID], eventWithVersion)
	s.allEvents = append(s.allEvents, eventWithVersion)
	s.position++

	handlers := make([]EventHandler, 0, len(s.subscribers[event.Type()]))
	for _, h := range s.subscribers[event.Type()] {
		if h.CanHandle(event.Type()) {
			handlers = append(handlers, h)
		}
	}
	s.notifySubscribers(eventWithVersion, handlers)

	return nil
}

// Publish appends the event to its own stream
func (s *InMemoryEventStore) Publish(event Event) error {
	return s.AppendEvent(event.StreamID(), event)
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	if fromVersion < 1 {
		fromVersion = 1
	}

	if fromVersion > len(events) {
		return []Event{}, nil
	}

	return append([]Event(nil), events[fromVersion-1:]...), nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}

	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	return append([]Event(nil), s.allEvents[fromPosition:]...), nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}

	return nil
}

// Unsubscribe removes handler from every event type. Handlers must be comparable.
func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		newHandlers := make([]EventHandler, 0, len(handlers))
		for _, h := range handlers {
			if h != handler {
				newHandlers = append(newHandlers, h)
			}
		}
		s.subscribers[eventType] = newHandlers
	}

	return nil
}

// Wait blocks until every handler invocation started so far has returned
func (s *InMemoryEventStore) Wait() {
	s.deliveries.Wait()
}

func (s *InMemoryEventStore) notifySubscribers(event Event, handlers []EventHandler) {
	for _, handler := range handlers {
		s.deliveries.Add(1)
		go func(h EventHandler, e Event) {
			defer s.deliveries.Done()
			if err := h.Handle(e); err != nil {
				s.logger.Error(err, "Event handler failed", "type", e.Type(), "stream", e.StreamID())
			}
		}(handler, event)
	}
}
