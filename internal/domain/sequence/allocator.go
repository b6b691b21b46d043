package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ddmpress/backend/internal/domain/shared"
)

// CounterAllocator implements Allocator on top of a CounterRepository.
// The repository must be scoped to the caller's transaction.
type CounterAllocator struct {
	counters CounterRepository
}

// NewCounterAllocator creates an allocator over transaction-scoped counters.
func NewCounterAllocator(counters CounterRepository) *CounterAllocator {
	return &CounterAllocator{counters: counters}
}

// Allocate reads the current counter value (creating the counter at zero when
// absent), advances it by one with a compare-and-swap, and returns the new
// value. Exactly one concurrent caller wins a given value; losers surface
// shared.ErrConcurrencyConflict for the transaction layer to retry.
func (a *CounterAllocator) Allocate(ctx context.Context, counterName string) (int64, error) {
	if counterName == "" {
		return 0, shared.NewDomainError("INVALID_COUNTER", "Counter name cannot be empty")
	}

	counter, err := a.counters.Find(ctx, counterName)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		now := time.Now()
		counter = &Counter{Name: counterName, LastValue: 0, CreatedAt: now, UpdatedAt: now}
		if err := a.counters.Create(ctx, counter); err != nil {
			return 0, err
		}
	case err != nil:
		return 0, fmt.Errorf("failed to read counter %q: %w", counterName, err)
	}

	next := counter.LastValue + 1
	if err := a.counters.CompareAndSwap(ctx, counterName, counter.LastValue, next); err != nil {
		return 0, err
	}
	return next, nil
}

// Ensure CounterAllocator implements Allocator
var _ Allocator = (*CounterAllocator)(nil)
