// file: internal/events/events_test.go
package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishDispatchesToSubscribers(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())
	defer bus.Close()

	var received *KudoCreatedEvent
	bus.Subscribe(EventKudoCreated, func(ctx context.Context, event Event) error {
		received = event.(*KudoCreatedEvent)
		return nil
	})

	event := NewKudoCreatedEvent(1, 2, 3, "Teamwork")
	require.NoError(t, bus.Publish(context.Background(), event))

	require.NotNil(t, received)
	assert.Equal(t, int64(1), received.KudoID)
	assert.Equal(t, int64(3), received.ToUserID)
	assert.NotEmpty(t, received.GetEventID())
}

func TestPublishIgnoresUnrelatedSubscribers(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())
	defer bus.Close()

	var called bool
	bus.Subscribe(EventLevelUp, func(ctx context.Context, event Event) error {
		called = true
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), NewKudoCreatedEvent(1, 2, 3, "Help")))
	assert.False(t, called)
}

func TestHandlerErrorDoesNotPropagate(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())
	defer bus.Close()

	bus.Subscribe(EventBadgeAwarded, func(ctx context.Context, event Event) error {
		return errors.New("handler boom")
	})

	err := bus.Publish(context.Background(), NewBadgeAwardedEvent(1, "First Kudos"))
	assert.NoError(t, err, "handler failures stay off the publisher's path")
}

func TestPublishAsyncDrainedOnClose(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())

	var count atomic.Int64
	bus.Subscribe(EventKudoLiked, func(ctx context.Context, event Event) error {
		count.Add(1)
		return nil
	})

	for i := 0; i < 5; i++ {
		bus.PublishAsync(context.Background(), NewKudoLikeToggledEvent(1, 2, true))
	}

	require.NoError(t, bus.Close())
	assert.Equal(t, int64(5), count.Load(), "Close waits for in-flight publishes")
}

func TestPublishAfterClose(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())
	require.NoError(t, bus.Close())

	err := bus.Publish(context.Background(), NewLevelUpEvent(1, 1, 2))
	assert.Error(t, err)
}

func TestLikeToggledEventType(t *testing.T) {
	liked := NewKudoLikeToggledEvent(1, 2, true)
	assert.Equal(t, EventKudoLiked, liked.GetEventType())

	unliked := NewKudoLikeToggledEvent(1, 2, false)
	assert.Equal(t, EventKudoUnliked, unliked.GetEventType())
}
