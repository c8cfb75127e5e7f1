// Package events provides in-process pub/sub so calendar views can refresh
// after schedule writes without a shared global callback.
package events

import (
	"sync"
	"time"
)

// Topics published by the booking service.
const (
	TopicTemplateSaved    = "schedule.template_saved"
	TopicOverrideSaved    = "schedule.override_saved"
	TopicBookingCreated   = "booking.created"
	TopicBookingCancelled = "booking.cancelled"
	TopicBookingMoved     = "booking.moved"
)

// Event is a lightweight domain notification.
type Event struct {
	Topic     string
	StaffID   string
	EntityID  string
	CreatedAt time.Time
}

// Handler reacts to an event. Handlers run synchronously on the
// publisher's goroutine; subscribers decide their own concurrency.
type Handler func(event Event)

// Bus provides in-process pub/sub for schedule events.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[topic] = append(b.subscribers[topic], handler)
}

// Publish notifies subscribers of the topic. A nil bus is a no-op so
// callers can leave wiring optional.
func (b *Bus) Publish(event Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Topic]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	for _, handler := range handlers {
		handler(event)
	}
}
