package events

import "sync"

// Event is anything publishable on the bus.
type Event interface {
	Kind() string
}

// Handler receives published events.
type Handler func(Event)

// Bus is a synchronous publish/subscribe hub. Handlers run on the
// publishing goroutine in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	all      []Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for one event kind.
func (b *Bus) Subscribe(kind string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], h)
}

// SubscribeAll registers a handler for every event kind.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Publish delivers e to all matching handlers.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	kind := b.handlers[e.Kind()]
	all := b.all
	b.mu.RUnlock()
	for _, h := range kind {
		h(e)
	}
	for _, h := range all {
		h(e)
	}
}
