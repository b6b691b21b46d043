package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutboxEntry(t *testing.T) {
	event := NewBaseDomainEvent("BudgetApproved", "Budget", uuid.New())
	payload := []byte(`{"budget_id":"x"}`)

	entry := NewOutboxEntry(&event, payload)

	assert.Equal(t, event.EventID(), entry.EventID)
	assert.Equal(t, "BudgetApproved", entry.EventType)
	assert.Equal(t, event.AggregateID(), entry.AggregateID)
	assert.Equal(t, "Budget", entry.AggregateType)
	assert.Equal(t, payload, entry.Payload)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, 0, entry.RetryCount)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
}

func TestOutboxEntry_MarkProcessing(t *testing.T) {
	t.Run("allowed from pending and failed", func(t *testing.T) {
		for _, status := range []OutboxStatus{OutboxStatusPending, OutboxStatusFailed} {
			entry := &OutboxEntry{ID: uuid.New(), Status: status}
			require.NoError(t, entry.MarkProcessing())
			assert.Equal(t, OutboxStatusProcessing, entry.Status)
		}
	})

	t.Run("rejected from other states", func(t *testing.T) {
		for _, status := range []OutboxStatus{OutboxStatusProcessing, OutboxStatusSent, OutboxStatusDead} {
			entry := &OutboxEntry{ID: uuid.New(), Status: status}
			assert.Error(t, entry.MarkProcessing())
		}
	})
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	entry := &OutboxEntry{ID: uuid.New(), Status: OutboxStatusProcessing}

	entry.MarkSent()

	assert.Equal(t, OutboxStatusSent, entry.Status)
	require.NotNil(t, entry.ProcessedAt)
	assert.WithinDuration(t, time.Now(), *entry.ProcessedAt, time.Second)
}

func TestOutboxEntry_MarkFailed(t *testing.T) {
	t.Run("schedules a retry with exponential backoff", func(t *testing.T) {
		entry := &OutboxEntry{ID: uuid.New(), Status: OutboxStatusProcessing, MaxRetries: 5}

		entry.MarkFailed("connection refused")

		assert.Equal(t, OutboxStatusFailed, entry.Status)
		assert.Equal(t, 1, entry.RetryCount)
		assert.Equal(t, "connection refused", entry.LastError)
		require.NotNil(t, entry.NextRetryAt)
		assert.WithinDuration(t, time.Now().Add(DefaultBaseBackoff), *entry.NextRetryAt, time.Second)
	})

	t.Run("backoff doubles per attempt", func(t *testing.T) {
		entry := &OutboxEntry{ID: uuid.New(), Status: OutboxStatusProcessing, MaxRetries: 5, RetryCount: 2}

		entry.MarkFailed("still down")

		require.NotNil(t, entry.NextRetryAt)
		assert.WithinDuration(t, time.Now().Add(4*DefaultBaseBackoff), *entry.NextRetryAt, time.Second)
	})

	t.Run("exhausting retries moves the entry to dead letter", func(t *testing.T) {
		entry := &OutboxEntry{ID: uuid.New(), Status: OutboxStatusProcessing, MaxRetries: 3, RetryCount: 2}

		entry.MarkFailed("gave up")

		assert.Equal(t, OutboxStatusDead, entry.Status)
		assert.True(t, entry.IsDead())
		assert.False(t, entry.CanRetry())
	})
}

func TestOutboxEntry_CanRetry(t *testing.T) {
	assert.True(t, (&OutboxEntry{Status: OutboxStatusFailed, RetryCount: 1, MaxRetries: 5}).CanRetry())
	assert.False(t, (&OutboxEntry{Status: OutboxStatusFailed, RetryCount: 5, MaxRetries: 5}).CanRetry())
	assert.False(t, (&OutboxEntry{Status: OutboxStatusPending, RetryCount: 0, MaxRetries: 5}).CanRetry())
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	t.Run("resets a dead letter entry", func(t *testing.T) {
		next := time.Now()
		entry := &OutboxEntry{
			ID:          uuid.New(),
			Status:      OutboxStatusDead,
			RetryCount:  5,
			MaxRetries:  5,
			LastError:   "some error",
			NextRetryAt: &next,
		}

		require.NoError(t, entry.ResetForRetry())

		assert.Equal(t, OutboxStatusPending, entry.Status)
		assert.Equal(t, 0, entry.RetryCount)
		assert.Empty(t, entry.LastError)
		assert.Nil(t, entry.NextRetryAt)
	})

	t.Run("fails for non-dead entries", func(t *testing.T) {
		for _, status := range []OutboxStatus{OutboxStatusPending, OutboxStatusProcessing, OutboxStatusSent, OutboxStatusFailed} {
			entry := &OutboxEntry{ID: uuid.New(), Status: status}
			err := entry.ResetForRetry()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "dead letter")
		}
	})
}
