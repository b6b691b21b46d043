package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("first mark is new", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		isNew, err := store.MarkProcessed(ctx, "event-1", time.Minute)

		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("second mark within the TTL is a duplicate", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, err := store.MarkProcessed(ctx, "event-1", time.Minute)
		require.NoError(t, err)

		isNew, err := store.MarkProcessed(ctx, "event-1", time.Minute)

		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("expired entries can be marked again", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, err := store.MarkProcessed(ctx, "event-1", time.Nanosecond)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)

		isNew, err := store.MarkProcessed(ctx, "event-1", time.Minute)

		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("different events do not collide", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, err := store.MarkProcessed(ctx, "event-1", time.Minute)
		require.NoError(t, err)

		isNew, err := store.MarkProcessed(ctx, "event-2", time.Minute)

		require.NoError(t, err)
		assert.True(t, isNew)
		assert.Equal(t, 2, store.Size())
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	ctx := context.Background()

	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	t.Run("unknown event", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "unknown")

		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("marked event", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "event-1", time.Minute)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, "event-1")

		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired event", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "event-2", time.Nanosecond)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)

		processed, err := store.IsProcessed(ctx, "event-2")

		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
