package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerRegistry_Register(t *testing.T) {
	t.Run("registers a handler for several types", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := &testHandler{}

		registry.Register(handler, "BudgetApproved", "BudgetSent")

		assert.Len(t, registry.GetHandlers("BudgetApproved"), 1)
		assert.Len(t, registry.GetHandlers("BudgetSent"), 1)
		assert.Empty(t, registry.GetHandlers("BudgetRejected"))
	})

	t.Run("several handlers share one type", func(t *testing.T) {
		registry := NewHandlerRegistry()
		registry.Register(&testHandler{}, "BudgetApproved")
		registry.Register(&testHandler{}, "BudgetApproved")

		assert.Len(t, registry.GetHandlers("BudgetApproved"), 2)
	})
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	t.Run("removes the handler from every type", func(t *testing.T) {
		registry := NewHandlerRegistry()
		first := &testHandler{}
		second := &testHandler{}
		registry.Register(first, "BudgetApproved", "BudgetSent")
		registry.Register(second, "BudgetApproved")

		registry.Unregister(first)

		require.Len(t, registry.GetHandlers("BudgetApproved"), 1)
		assert.Same(t, second, registry.GetHandlers("BudgetApproved")[0].(*testHandler))
		assert.Empty(t, registry.GetHandlers("BudgetSent"))
	})

	t.Run("empty types disappear from the type list", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := &testHandler{}
		registry.Register(handler, "BudgetApproved")

		registry.Unregister(handler)

		assert.Empty(t, registry.EventTypes())
	})
}

func TestHandlerRegistry_GetHandlers(t *testing.T) {
	t.Run("returns a copy the caller cannot corrupt", func(t *testing.T) {
		registry := NewHandlerRegistry()
		registry.Register(&testHandler{}, "BudgetApproved")

		handlers := registry.GetHandlers("BudgetApproved")
		handlers[0] = nil

		assert.NotNil(t, registry.GetHandlers("BudgetApproved")[0])
	})
}

func TestHandlerRegistry_EventTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	registry.Register(&testHandler{}, "BudgetApproved", "BudgetSent")

	types := registry.EventTypes()

	assert.ElementsMatch(t, []string{"BudgetApproved", "BudgetSent"}, types)
}
