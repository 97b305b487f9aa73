package dashboard

import "sync"

// Event is published on the Bus after state that other components derive
// from has changed.
type Event int

const (
	// DataChanged follows every successful submit, moderation or delete.
	DataChanged Event = iota + 1

	// SessionChanged follows login and logout.
	SessionChanged
)

func (e Event) String() string {
	switch e {
	case DataChanged:
		return "DataChanged"
	case SessionChanged:
		return "SessionChanged"
	}
	return "Unknown"
}

// Bus is a synchronous publish/subscribe hub. Handlers run on the
// publisher's goroutine and must not block.
type Bus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(Event)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[int]func(Event))}
}

// Subscribe registers handler and returns a function that removes it.
func (b *Bus) Subscribe(handler func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Publish delivers e to every current subscriber in subscription order.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	handlers := make([]func(Event), 0, len(b.handlers))
	for id := 0; id < b.nextID; id++ {
		if h, ok := b.handlers[id]; ok {
			handlers = append(handlers, h)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
}
