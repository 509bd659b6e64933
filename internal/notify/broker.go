// Package notify implements a small in-process change-notification broker.
// Store mutations are published as events; views subscribe on channels
// instead of re-reading the stores on a timer. Delivery is best-effort:
// a subscriber that is not draining its channel loses events, which keeps
// publishers from ever blocking on a slow consumer.
package notify

import "sync"

// Kind tags the store a change happened in.
type Kind string

const (
	KindGrants  Kind = "grants"
	KindRecords Kind = "records"
)

// Event describes one mutation of a patient's grants or records.
type Event struct {
	Kind      Kind
	PatientHH string
	Op        string // "grant", "revoke", "append", "delete"
}

// Broker fans out events to all current subscribers.
type Broker struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber and returns its channel together
// with a cancel function. The cancel function is idempotent.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers e to every subscriber that has room in its buffer.
func (b *Broker) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
