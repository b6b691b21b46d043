// Package sequence provides named, transactionally guarded integer counters.
// Counters are the only process-wide shared mutable state in the system; they
// are read-modify-written exclusively inside transactions.
package sequence

import (
	"context"
	"time"
)

// Well-known counter names
const (
	CounterClients = "clients"
)

// Counter is a named monotonic sequence source.
// Invariant: LastValue is non-decreasing and every value in (0, LastValue]
// has been handed out to exactly one caller.
type Counter struct {
	Name      string
	LastValue int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Allocator hands out the next value of a named counter.
//
// Allocate must only be called with a repository that is scoped to an active
// transaction: the counter update commits or rolls back together with
// whatever consumed the value. Under a compare-and-swap write, a losing racer
// surfaces shared.ErrConcurrencyConflict and the caller retries the whole
// transaction; the allocator itself never retries.
type Allocator interface {
	Allocate(ctx context.Context, counterName string) (int64, error)
}

// CounterRepository is the persistence contract for counters.
type CounterRepository interface {
	// Find returns the counter, or shared.ErrNotFound when it does not exist yet.
	Find(ctx context.Context, name string) (*Counter, error)
	// Create inserts a fresh counter. A unique-name violation surfaces
	// shared.ErrConcurrencyConflict (two racers created the same counter).
	Create(ctx context.Context, counter *Counter) error
	// CompareAndSwap advances the counter from expected to next. Zero rows
	// affected surfaces shared.ErrConcurrencyConflict.
	CompareAndSwap(ctx context.Context, name string, expected, next int64) error
}
