package common

import (
	"sync"
	"time"

	"github.com/dmarrick/novaforge/internal/domain/job"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// CompletionEvent is delivered once per job to every registered observer when
// the job reaches a terminal state
type CompletionEvent struct {
	JobID     string
	OwnerID   shared.OwnerID
	Kind      job.Kind
	Status    job.Status
	Output    map[string]int
	Timestamp time.Time
}

// CompletionObserver receives completion events. Observers must not block:
// delivery happens on the scheduler's completion path.
type CompletionObserver interface {
	OnJobCompleted(event CompletionEvent)
}

// CompletionObserverFunc adapts a function to the CompletionObserver interface
type CompletionObserverFunc func(event CompletionEvent)

func (f CompletionObserverFunc) OnJobCompleted(event CompletionEvent) {
	f(event)
}

// EventBus fans completion events out to registered observers
type EventBus struct {
	mu        sync.RWMutex
	observers []CompletionObserver
}

// NewEventBus creates an empty event bus
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers an observer for all future events
func (b *EventBus) Subscribe(observer CompletionObserver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, observer)
}

// Publish delivers the event to every registered observer in subscription order
func (b *EventBus) Publish(event CompletionEvent) {
	b.mu.RLock()
	observers := make([]CompletionObserver, len(b.observers))
	copy(observers, b.observers)
	b.mu.RUnlock()

	for _, observer := range observers {
		observer.OnJobCompleted(event)
	}
}
