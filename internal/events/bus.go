package events

import (
	"sync"

	"github.com/starstrip/starstrip-planner/internal/model"
)

// EventKind represents the type of identity event.
type EventKind string

const (
	IdentityChanged EventKind = "identity_changed"
)

// Event carries the identity before and after a change.
type Event struct {
	Kind     EventKind
	Previous model.Identity
	Current  model.Identity
}

// Handler receives published events.
type Handler func(Event)

// Bus is a synchronous in-process observer. Handlers run on the publisher's
// goroutine in subscription order.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers []subscription
}

type subscription struct {
	id int
	fn Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus { return &Bus{} }

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.handlers = append(b.handlers, subscription{id: id, fn: h})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.handlers {
				if s.id == id {
					b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers evt to every current subscriber. The lock is not held while
// handlers run, so a handler may publish or subscribe.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	snapshot := make([]Handler, 0, len(b.handlers))
	for _, s := range b.handlers {
		snapshot = append(snapshot, s.fn)
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		h(evt)
	}
}
