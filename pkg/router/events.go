package router

import "sync"

// Event types emitted by the core.
const (
	// EventNavigate is emitted by callers observing navigation-style
	// transitions (the renderers themselves emit EventRender).
	EventNavigate = "navigate"

	// EventRender is emitted after a render pass completes.
	EventRender = "render"

	// EventManifestSwap is emitted when the manifest is replaced.
	EventManifestSwap = "manifest-swap"
)

// Event is a navigation-state notification.
type Event struct {
	Type     string
	Pathname string
	Pattern  string
	Status   int
}

// EventBus is a small synchronous pub/sub used by navigation-state
// observers. Listeners run inline on the emitting goroutine, in
// registration order.
type EventBus struct {
	mu        sync.Mutex
	nextID    int
	listeners []listenerEntry
}

type listenerEntry struct {
	id int
	fn func(Event)
}

// NewEventBus creates an empty event bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// AddListener registers a listener and returns a function that removes it.
// Removing twice is a no-op.
func (b *EventBus) AddListener(fn func(Event)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, listenerEntry{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, l := range b.listeners {
			if l.id == id {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers the event to every registered listener synchronously.
func (b *EventBus) Emit(ev Event) {
	b.mu.Lock()
	snapshot := make([]listenerEntry, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()

	for _, l := range snapshot {
		l.fn(ev)
	}
}
