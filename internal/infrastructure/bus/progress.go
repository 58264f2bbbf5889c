// Package bus provides in-process broadcast primitives connecting the
// orchestrator to its frontend surfaces.
package bus

import (
	"sync"

	"github.com/turtacn/kam/internal/domain/models"
)

// ProgressBus is a last-value broadcast channel for progress snapshots.
// Each subscriber owns a single-slot buffer: a publish overwrites any
// undelivered snapshot, so slow consumers observe the latest state rather
// than a backlog. Publish never blocks.
type ProgressBus struct {
	mu          sync.Mutex
	subscribers map[int]chan models.ProgressSnapshot
	nextID      int
	last        *models.ProgressSnapshot
	closed      bool
}

// NewProgressBus returns an empty bus with no subscribers.
func NewProgressBus() *ProgressBus {
	return &ProgressBus{
		subscribers: make(map[int]chan models.ProgressSnapshot),
	}
}

// Publish delivers snapshot to every subscriber, replacing any snapshot a
// subscriber has not consumed yet.
func (b *ProgressBus) Publish(snapshot models.ProgressSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	b.last = &snapshot
	for _, ch := range b.subscribers {
		select {
		case ch <- snapshot:
		default:
			// drop the stale value, then deliver the fresh one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

// Subscribe registers a new consumer. The returned channel carries at most
// one pending snapshot; the cancel function removes the subscription.
// A subscriber joining mid-run immediately receives the latest snapshot.
func (b *ProgressBus) Subscribe() (<-chan models.ProgressSnapshot, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan models.ProgressSnapshot, 1)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch

	if b.last != nil {
		ch <- *b.last
	}

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Last returns the most recently published snapshot, if any.
func (b *ProgressBus) Last() (models.ProgressSnapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.last == nil {
		return models.ProgressSnapshot{}, false
	}
	return *b.last, true
}

// Close removes all subscribers and makes further publishes no-ops.
func (b *ProgressBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
