package bus

import (
	"context"
	"sync"

	"github.com/turtacn/kam/pkg/logger"
)

// Event is one named notification with an arbitrary payload.
type Event struct {
	Name    string      `json:"name"`
	Payload interface{} `json:"payload,omitempty"`
}

// Emitter fans out fire-and-forget events to its listeners. Unlike the
// progress bus, each listener keeps a small FIFO buffer because distinct
// events must not overwrite each other; when a listener's buffer is full
// the event is dropped for that listener only.
type Emitter struct {
	mu        sync.Mutex
	listeners map[int]chan Event
	nextID    int
	log       logger.Logger
}

const listenerBuffer = 16

// NewEmitter returns an Emitter logging dropped events through log.
func NewEmitter(log logger.Logger) *Emitter {
	return &Emitter{
		listeners: make(map[int]chan Event),
		log:       log,
	}
}

// Emit delivers the event to every listener without blocking.
func (e *Emitter) Emit(name string, payload interface{}) {
	evt := Event{Name: name, Payload: payload}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.listeners {
		select {
		case ch <- evt:
		default:
			e.log.Warn(context.Background(), "event dropped for slow listener", logger.Fields{
				"event": name,
			})
		}
	}
}

// Listen registers a new listener. The cancel function removes it.
func (e *Emitter) Listen() (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan Event, listenerBuffer)
	id := e.nextID
	e.nextID++
	e.listeners[id] = ch

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if l, ok := e.listeners[id]; ok {
			delete(e.listeners, id)
			close(l)
		}
	}
	return ch, cancel
}
