// Package events is a lightweight in-process pub/sub used to push ledger
// changes to live subscribers (log screens, websocket stream, glance
// surfaces) without re-querying.
package events

import (
	"sync"

	"github.com/nurturefox/trackd/internal/model"
)

// ChangeKind labels what happened to a ledger record.
type ChangeKind string

const (
	ChangeInserted ChangeKind = "inserted"
	ChangeUpdated  ChangeKind = "updated"
	ChangeDeleted  ChangeKind = "deleted"
	// ChangeReplaced signals a wholesale ledger replace (restore). Consumers
	// should drop caches and re-query.
	ChangeReplaced ChangeKind = "replaced"
)

// Change carries the minimum data a subscriber needs; full records can be
// re-read from the store.
type Change struct {
	Kind    ChangeKind
	EventID string
	Event   *model.Event // nil for deletes and replaces
}

// Bus fans Change notices out to all current subscribers. Publish never
// blocks: a subscriber that falls behind its buffer loses the notice and is
// expected to re-query on the next one it does see. Construct with NewBus
// and pass by reference; there is deliberately no package-level singleton.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Change
	buffer int
	closed bool
}

// NewBus creates a bus whose subscriber channels hold buffer notices.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 16
	}
	return &Bus{subs: make(map[int]chan Change), buffer: buffer}
}

// Publish delivers the change to every subscriber without blocking.
func (b *Bus) Publish(c Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- c:
		default:
			// subscriber is behind; it re-syncs from the store
		}
	}
}

// Subscribe registers a new subscriber and returns its channel plus a
// cancel function. Cancel is idempotent and closes the channel.
func (b *Bus) Subscribe() (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Change, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Close tears the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
