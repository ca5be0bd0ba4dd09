package progress

import "sync"

// Event is one progress notification for a run.
type Event struct {
	RunID   string `json:"run_id"`
	State   string `json:"state"`
	Percent int    `json:"percent"`
	Text    string `json:"text,omitempty"`
}

// Broadcaster fans run events out to any number of subscribers. Slow
// subscribers are skipped rather than blocking the download worker.
type Broadcaster struct {
	mu        sync.Mutex
	listeners []chan Event
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe creates a new event listener channel.
func (b *Broadcaster) Subscribe() chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 100)
	b.listeners = append(b.listeners, ch)
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

// Publish sends an event to all listeners without blocking.
func (b *Broadcaster) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Skip if listener is full
		}
	}
}
