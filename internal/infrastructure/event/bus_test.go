package event

import (
	"context"
	"errors"
	"testing"

	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testHandler records the events it receives
type testHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.types
}

func newTestEvent(eventType string) shared.DomainEvent {
	event := shared.NewBaseDomainEvent(eventType, "Budget", uuid.New())
	return &event
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to handlers of the event type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &testHandler{types: []string{"BudgetApproved"}}
		bus.Subscribe(handler)

		err := bus.Publish(ctx, newTestEvent("BudgetApproved"))

		require.NoError(t, err)
		assert.Len(t, handler.received, 1)
	})

	t.Run("does not deliver other event types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &testHandler{types: []string{"BudgetApproved"}}
		bus.Subscribe(handler)

		err := bus.Publish(ctx, newTestEvent("BudgetSent"))

		require.NoError(t, err)
		assert.Empty(t, handler.received)
	})

	t.Run("explicit subscription types override the handler's list", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &testHandler{types: []string{"BudgetApproved"}}
		bus.Subscribe(handler, "BudgetSent")

		require.NoError(t, bus.Publish(ctx, newTestEvent("BudgetSent")))
		require.NoError(t, bus.Publish(ctx, newTestEvent("BudgetApproved")))

		assert.Len(t, handler.received, 1)
	})

	t.Run("handler error is returned and other handlers still run", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &testHandler{types: []string{"BudgetApproved"}, err: errors.New("boom")}
		healthy := &testHandler{types: []string{"BudgetApproved"}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		err := bus.Publish(ctx, newTestEvent("BudgetApproved"))

		assert.Error(t, err)
		assert.Len(t, healthy.received, 1)
	})

	t.Run("a panicking handler does not take down the bus", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		panicking := &testHandler{types: []string{"BudgetApproved"}, panics: true}
		healthy := &testHandler{types: []string{"BudgetApproved"}}
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		err := bus.Publish(ctx, newTestEvent("BudgetApproved"))

		assert.NoError(t, err)
		assert.Len(t, healthy.received, 1)
	})

	t.Run("publishes multiple events in order", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &testHandler{types: []string{"A", "B"}}
		bus.Subscribe(handler)

		err := bus.Publish(ctx, newTestEvent("A"), newTestEvent("B"))

		require.NoError(t, err)
		require.Len(t, handler.received, 2)
		assert.Equal(t, "A", handler.received[0].EventType())
		assert.Equal(t, "B", handler.received[1].EventType())
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	ctx := context.Background()

	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &testHandler{types: []string{"BudgetApproved"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(ctx, newTestEvent("BudgetApproved")))
	assert.Empty(t, handler.received)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	ctx := context.Background()

	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Stop(ctx))
}
