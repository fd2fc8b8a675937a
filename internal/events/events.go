// file: internal/events/events.go
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// ===============================
// EVENT INTERFACE
// ===============================

// Event represents a domain event
type Event interface {
	GetEventID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetUserID() *int64
	GetMetadata() map[string]interface{}
}

// BaseEvent provides common event functionality
type BaseEvent struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	UserID    *int64                 `json:"user_id,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewBaseEvent creates a base event with a fresh ID and timestamp.
func NewBaseEvent(eventType string, userID *int64) BaseEvent {
	id, err := uuid.NewV4()
	eventID := ""
	if err == nil {
		eventID = id.String()
	}
	return BaseEvent{
		EventID:   eventID,
		EventType: eventType,
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// GetEventID returns the event ID
func (e *BaseEvent) GetEventID() string { return e.EventID }

// GetEventType returns the event type
func (e *BaseEvent) GetEventType() string { return e.EventType }

// GetTimestamp returns the event timestamp
func (e *BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// GetUserID returns the user ID associated with the event
func (e *BaseEvent) GetUserID() *int64 { return e.UserID }

// GetMetadata returns the event metadata
func (e *BaseEvent) GetMetadata() map[string]interface{} { return e.Metadata }

// ===============================
// EVENT BUS
// ===============================

// Handler processes one event.
type Handler func(ctx context.Context, event Event) error

// EventBus defines the event publishing and subscription interface
type EventBus interface {
	Publish(ctx context.Context, event Event) error
	PublishAsync(ctx context.Context, event Event)
	Subscribe(eventType string, handler Handler)
	Close() error
}

// inMemoryBus dispatches events to in-process subscribers. Handler
// failures are logged and never propagate back to the publisher's
// request path.
type inMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
	wg       sync.WaitGroup
	closed   bool
}

// NewInMemoryBus creates an in-process event bus.
func NewInMemoryBus(logger *zap.Logger) EventBus {
	return &inMemoryBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type.
func (b *inMemoryBus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish dispatches the event to all subscribers synchronously.
func (b *inMemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.GetEventType()]
	closed := b.closed
	b.mu.RUnlock()

	if closed {
		return fmt.Errorf("event bus is closed")
	}

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.logger.Error("Event handler failed",
				zap.String("event_type", event.GetEventType()),
				zap.String("event_id", event.GetEventID()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// PublishAsync dispatches the event in the background, detached from the
// request context.
func (b *inMemoryBus) PublishAsync(ctx context.Context, event Event) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		publishCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = b.Publish(publishCtx, event)
	}()
}

// Close waits for in-flight async publishes to drain.
func (b *inMemoryBus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}
