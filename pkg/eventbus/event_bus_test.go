package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/orbitflows/orbit/pkg/eventbus"
	"github.com/orbitflows/orbit/pkg/events"
	"github.com/orbitflows/orbit/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")

		panic("unreachable")
	}
}

func TestGoChannelEventBus_FinishedRoundTrip(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewGoChannelEventBus()
	t.Cleanup(func() { _ = bus.Close() })

	received := make(chan *events.ExecutionFinished, 1)
	bus.Handle(events.ExecutionFinishedEvent, func(_ context.Context, event any) error {
		finished, ok := event.(*events.ExecutionFinished)
		require.True(t, ok)
		received <- finished

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, bus.Subscribe(ctx))

	published := events.ExecutionFinished{
		BaseEvent: events.BaseEvent{
			ID:         bus.GenerateID(),
			Type:       events.ExecutionFinishedEvent,
			Timestamp:  time.Now().UTC(),
			WorkflowID: "wf-1",
			UserID:     "user-1",
		},
		ExecutionID: "exec-abc12345",
		Trigger:     models.TriggerKindManual,
		Status:      models.ExecutionStatusSuccess,
		Steps:       3,
	}
	require.NoError(t, bus.Publish(ctx, published.ExecutionID, published))

	got := waitFor(t, received)
	assert.Equal(t, "exec-abc12345", got.ExecutionID)
	assert.Equal(t, "wf-1", got.WorkflowID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, models.TriggerKindManual, got.Trigger)
	assert.Equal(t, models.ExecutionStatusSuccess, got.Status)
	assert.Equal(t, 3, got.Steps)
}

func TestGoChannelEventBus_RoutesByEventType(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewGoChannelEventBus()
	t.Cleanup(func() { _ = bus.Close() })

	started := make(chan *events.ExecutionStarted, 1)
	finished := make(chan *events.ExecutionFinished, 1)
	bus.Handle(events.ExecutionStartedEvent, func(_ context.Context, event any) error {
		started <- event.(*events.ExecutionStarted)

		return nil
	})
	bus.Handle(events.ExecutionFinishedEvent, func(_ context.Context, event any) error {
		finished <- event.(*events.ExecutionFinished)

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "exec-1", events.ExecutionStarted{
		BaseEvent:   events.BaseEvent{WorkflowID: "wf-1", UserID: "user-1"},
		ExecutionID: "exec-1",
		Trigger:     models.TriggerKindAutomated,
	}))
	require.NoError(t, bus.Publish(ctx, "exec-1", events.ExecutionFinished{
		BaseEvent:   events.BaseEvent{WorkflowID: "wf-1", UserID: "user-1"},
		ExecutionID: "exec-1",
		Trigger:     models.TriggerKindAutomated,
		Status:      models.ExecutionStatusFailed,
		Steps:       2,
	}))

	gotStarted := waitFor(t, started)
	assert.Equal(t, models.TriggerKindAutomated, gotStarted.Trigger)

	gotFinished := waitFor(t, finished)
	assert.Equal(t, models.ExecutionStatusFailed, gotFinished.Status)
}

func TestGenerateID_Unique(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewGoChannelEventBus()
	t.Cleanup(func() { _ = bus.Close() })

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
