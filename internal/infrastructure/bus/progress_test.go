package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/kam/internal/domain/models"
	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/logger"
)

func snap(current int) models.ProgressSnapshot {
	return models.ProgressSnapshot{
		Status:  constants.JobStatusRunning,
		Current: current,
		Total:   10,
		Step:    constants.StepRegistering,
	}
}

func TestProgressBusDeliversLatest(t *testing.T) {
	b := NewProgressBus()
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish(snap(1))
	got := <-ch
	assert.Equal(t, 1, got.Current)

	// a slow subscriber sees only the newest of several publishes
	b.Publish(snap(2))
	b.Publish(snap(3))
	b.Publish(snap(4))

	got = <-ch
	assert.Equal(t, 4, got.Current)

	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra snapshot: %+v", extra)
	default:
	}
}

func TestProgressBusLateSubscriberGetsLastValue(t *testing.T) {
	b := NewProgressBus()
	b.Publish(snap(7))

	ch, cancel := b.Subscribe()
	defer cancel()

	got := <-ch
	assert.Equal(t, 7, got.Current)

	last, ok := b.Last()
	require.True(t, ok)
	assert.Equal(t, 7, last.Current)
}

func TestProgressBusPublishNeverBlocks(t *testing.T) {
	b := NewProgressBus()
	_, cancel := b.Subscribe()
	defer cancel()

	// nobody reads; publishing many times must still return
	for i := 0; i < 1000; i++ {
		b.Publish(snap(i))
	}
}

func TestProgressBusCancelAndClose(t *testing.T) {
	b := NewProgressBus()
	ch, cancel := b.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	ch2, cancel2 := b.Subscribe()
	defer cancel2()
	b.Close()

	_, open = <-ch2
	assert.False(t, open)

	// publishing after close is a no-op
	b.Publish(snap(1))
}

func TestEmitterFanOut(t *testing.T) {
	e := NewEmitter(logger.NewNoopLogger())

	a, cancelA := e.Listen()
	bCh, cancelB := e.Listen()
	defer cancelA()
	defer cancelB()

	e.Emit(constants.EventLoginSuccess, map[string]string{"email": "x@example.com"})
	e.Emit(constants.EventRegistrationComplete, nil)

	first := <-a
	second := <-a
	assert.Equal(t, constants.EventLoginSuccess, first.Name)
	assert.Equal(t, constants.EventRegistrationComplete, second.Name)

	first = <-bCh
	assert.Equal(t, constants.EventLoginSuccess, first.Name)
}

func TestEmitterDropsWhenListenerFull(t *testing.T) {
	e := NewEmitter(logger.NewNoopLogger())
	ch, cancel := e.Listen()
	defer cancel()

	for i := 0; i < listenerBuffer+5; i++ {
		e.Emit("tick", i)
	}

	// the buffer holds the oldest events; the overflow was dropped
	assert.Len(t, ch, listenerBuffer)
	evt := <-ch
	assert.Equal(t, 0, evt.Payload)
}
