package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"openhouse_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingEvent struct {
	BaseEvent
}

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	var calls, otherCalls atomic.Int32

	for i := 0; i < 3; i++ {
		bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
			calls.Add(1)
			return nil
		}))
	}
	bus.Subscribe("test.other", HandlerFunc(func(context.Context, Event) error {
		otherCalls.Add(1)
		return nil
	}))

	bus.Publish(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()

	assert.Equal(t, int32(3), calls.Load())
	assert.Zero(t, otherCalls.Load())
}

func TestPublishSurvivesHandlerPanic(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		panic("boom")
	}))

	bus.Publish(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()
}

func TestPublishSyncJoinsErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	first := errors.New("first")
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error { return first }))
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error { return nil }))

	err := bus.PublishSync(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	require.Error(t, err)
	assert.ErrorIs(t, err, first)
}

func TestNewBaseEventAtStampsIDAndUTC(t *testing.T) {
	loc := time.FixedZone("HST", -10*60*60)
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, loc)

	first := NewBaseEventAt(at)
	second := NewBaseEventAt(at)

	assert.NotEqual(t, uuid.Nil, first.MessageID())
	assert.NotEqual(t, first.MessageID(), second.MessageID())
	assert.True(t, first.OccurredAt().Equal(at))
	assert.Equal(t, time.UTC, first.OccurredAt().Location())
}
