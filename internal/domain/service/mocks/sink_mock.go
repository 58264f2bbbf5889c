package mocks

import (
	"sync"

	"github.com/turtacn/kam/internal/domain/models"
)

// RecordingProgressSink captures every published snapshot for assertions.
type RecordingProgressSink struct {
	mu        sync.Mutex
	snapshots []models.ProgressSnapshot
}

func (s *RecordingProgressSink) Publish(snapshot models.ProgressSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot)
}

// Snapshots returns a copy of everything published so far.
func (s *RecordingProgressSink) Snapshots() []models.ProgressSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ProgressSnapshot, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}

// Last returns the most recent snapshot, or the zero value when none exist.
func (s *RecordingProgressSink) Last() models.ProgressSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snapshots) == 0 {
		return models.ProgressSnapshot{}
	}
	return s.snapshots[len(s.snapshots)-1]
}

// RecordedEvent is one captured Emit call.
type RecordedEvent struct {
	Name    string
	Payload interface{}
}

// RecordingEventSink captures every emitted event for assertions.
type RecordingEventSink struct {
	mu     sync.Mutex
	events []RecordedEvent
}

func (s *RecordingEventSink) Emit(name string, payload interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, RecordedEvent{Name: name, Payload: payload})
}

// Events returns a copy of everything emitted so far.
func (s *RecordingEventSink) Events() []RecordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedEvent, len(s.events))
	copy(out, s.events)
	return out
}
