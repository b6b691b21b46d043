package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeIdempotencyStore is an in-memory store with injectable failures
type fakeIdempotencyStore struct {
	marked map[string]bool
	err    error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{marked: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.marked[eventID] {
		return false, nil
	}
	s.marked[eventID] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.marked[eventID], nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

func TestIdempotentHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("first delivery reaches the wrapped handler", func(t *testing.T) {
		inner := &testHandler{types: []string{"BudgetApproved"}}
		store := newFakeIdempotencyStore()
		handler := NewIdempotentHandler(inner, store, zap.NewNop())

		err := handler.Handle(ctx, newTestEvent("BudgetApproved"))

		require.NoError(t, err)
		assert.Len(t, inner.received, 1)
		assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsProcessed)
	})

	t.Run("redelivery of the same event is dropped", func(t *testing.T) {
		inner := &testHandler{types: []string{"BudgetApproved"}}
		store := newFakeIdempotencyStore()
		handler := NewIdempotentHandler(inner, store, zap.NewNop())
		event := newTestEvent("BudgetApproved")

		require.NoError(t, handler.Handle(ctx, event))
		require.NoError(t, handler.Handle(ctx, event))

		assert.Len(t, inner.received, 1)
		stats := handler.GetMetrics().Stats()
		assert.Equal(t, int64(1), stats.EventsProcessed)
		assert.Equal(t, int64(1), stats.EventsDuplicate)
	})

	t.Run("store failure does not drop the event", func(t *testing.T) {
		inner := &testHandler{types: []string{"BudgetApproved"}}
		store := newFakeIdempotencyStore()
		store.err = errors.New("redis down")
		handler := NewIdempotentHandler(inner, store, zap.NewNop())

		err := handler.Handle(ctx, newTestEvent("BudgetApproved"))

		require.NoError(t, err)
		assert.Len(t, inner.received, 1)
	})

	t.Run("handler failure propagates and counts", func(t *testing.T) {
		inner := &testHandler{types: []string{"BudgetApproved"}, err: errors.New("boom")}
		store := newFakeIdempotencyStore()
		handler := NewIdempotentHandler(inner, store, zap.NewNop())

		err := handler.Handle(ctx, newTestEvent("BudgetApproved"))

		assert.Error(t, err)
		assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsFailed)
	})

	t.Run("disabled config bypasses the store", func(t *testing.T) {
		inner := &testHandler{types: []string{"BudgetApproved"}}
		store := newFakeIdempotencyStore()
		store.err = errors.New("must not be called")
		handler := NewIdempotentHandler(inner, store, zap.NewNop(),
			WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}),
		)
		event := newTestEvent("BudgetApproved")

		require.NoError(t, handler.Handle(ctx, event))
		require.NoError(t, handler.Handle(ctx, event))

		assert.Len(t, inner.received, 2)
	})

	t.Run("shared metrics collector aggregates across handlers", func(t *testing.T) {
		metrics := &IdempotencyMetrics{}
		store := newFakeIdempotencyStore()
		first := NewIdempotentHandler(&testHandler{}, store, zap.NewNop(), WithIdempotencyMetrics(metrics))
		second := NewIdempotentHandler(&testHandler{}, store, zap.NewNop(), WithIdempotencyMetrics(metrics))

		event := newTestEvent("BudgetApproved")
		require.NoError(t, first.Handle(ctx, event))
		require.NoError(t, second.Handle(ctx, event))

		stats := metrics.Stats()
		assert.Equal(t, int64(1), stats.EventsProcessed)
		assert.Equal(t, int64(1), stats.EventsDuplicate)
	})
}

func TestIdempotentHandler_EventTypes(t *testing.T) {
	inner := &testHandler{types: []string{"BudgetApproved", "BudgetSent"}}
	handler := NewIdempotentHandler(inner, newFakeIdempotencyStore(), zap.NewNop())

	assert.Equal(t, []string{"BudgetApproved", "BudgetSent"}, handler.EventTypes())
	assert.Same(t, inner, handler.GetWrappedHandler().(*testHandler))
}

func TestWrapHandlersWithIdempotency(t *testing.T) {
	store := newFakeIdempotencyStore()
	handlers := []shared.EventHandler{
		&testHandler{types: []string{"A"}},
		&testHandler{types: []string{"B"}},
	}

	wrapped := WrapHandlersWithIdempotency(handlers, store, zap.NewNop())

	require.Len(t, wrapped, 2)
	for i, h := range wrapped {
		idempotent, ok := h.(*IdempotentHandler)
		require.True(t, ok)
		assert.Same(t, handlers[i], idempotent.GetWrappedHandler())
	}
}
