package cascade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ddmpress/backend/internal/domain/sequence"
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommitterConfig bounds the retry policy for transient conflicts
type CommitterConfig struct {
	// MaxAttempts is the number of build+commit cycles before giving up
	MaxAttempts int
	// BaseBackoff is the first retry delay; later delays double
	BaseBackoff time.Duration
}

// DefaultCommitterConfig returns the default retry policy
func DefaultCommitterConfig() CommitterConfig {
	return CommitterConfig{
		MaxAttempts: 5,
		BaseBackoff: 50 * time.Millisecond,
	}
}

// Result describes what one committed cascade produced
type Result struct {
	// AlreadyApplied is true when the delivery was a replay and nothing was
	// written
	AlreadyApplied bool
	BudgetID       uuid.UUID
	ClientID       uuid.UUID
	// ClientCreated is true when the cascade created the client (and
	// allocated its number) rather than reusing an existing one
	ClientCreated bool
	ClientNumber  int64
	ProjectID     uuid.UUID
	OrderID       uuid.UUID
	InvoiceIDs    []uuid.UUID
	Attempts      int
}

// Committer applies a cascade write set as a single atomic unit.
//
// Each attempt opens one transaction, re-reads the budget fresh, re-runs the
// builder (whose first step is the idempotency check), allocates any numbers
// inside the same transaction, and persists every staged record. Either all
// of it lands or none of it does. Transient conflicts retry the whole
// build+commit cycle with backoff; exhaustion surfaces
// shared.ErrCascadeFailed with no partial state visible.
type Committer struct {
	scope   TransactionScope
	builder *Builder
	config  CommitterConfig
	logger  *zap.Logger
	// now is swappable for tests
	now func() time.Time
}

// NewCommitter creates a transactional committer
func NewCommitter(scope TransactionScope, builder *Builder, config CommitterConfig, logger *zap.Logger) *Committer {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.BaseBackoff <= 0 {
		config.BaseBackoff = DefaultCommitterConfig().BaseBackoff
	}
	return &Committer{
		scope:   scope,
		builder: builder,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// Commit runs the build+commit cycle for one approved budget until it
// succeeds, turns out to be a replay, or the retry budget is exhausted.
func (c *Committer) Commit(ctx context.Context, budgetID uuid.UUID) (*Result, error) {
	var lastErr error

	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		result, err := c.commitOnce(ctx, budgetID)
		if err == nil {
			result.Attempts = attempt
			return result, nil
		}

		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}

		lastErr = err
		if attempt < c.config.MaxAttempts {
			backoff := c.config.BaseBackoff * time.Duration(1<<uint(attempt-1))
			c.logger.Warn("cascade commit hit transient conflict, retrying",
				zap.String("budget_id", budgetID.String()),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	c.logger.Error("cascade retry budget exhausted",
		zap.String("budget_id", budgetID.String()),
		zap.Int("attempts", c.config.MaxAttempts),
		zap.Error(lastErr),
	)
	return nil, fmt.Errorf("cascade for budget %s gave up after %d attempts: %w",
		budgetID, c.config.MaxAttempts, shared.ErrCascadeFailed)
}

// commitOnce runs one transaction: fresh reads, idempotency re-check,
// build, allocate, write.
func (c *Committer) commitOnce(ctx context.Context, budgetID uuid.UUID) (*Result, error) {
	result := &Result{BudgetID: budgetID}

	err := c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Fresh read: a concurrent duplicate trigger that committed after
		// this delivery started is visible here.
		b, err := repos.Budgets().FindByID(ctx, budgetID)
		if err != nil {
			return fmt.Errorf("failed to load budget: %w", err)
		}

		ws, err := c.builder.Build(ctx, repos, b, c.now())
		if err != nil {
			return err
		}
		if ws.IsNoop() {
			result.AlreadyApplied = true
			if b.ClientID != nil {
				result.ClientID = *b.ClientID
			}
			if b.ConvertedProjectID != nil {
				result.ProjectID = *b.ConvertedProjectID
			}
			return nil
		}

		// Numbering happens inside the same transaction that consumes the
		// value: the counter write and the client write commit together.
		if ws.NewClient != nil {
			allocator := sequence.NewCounterAllocator(repos.Counters())
			number, err := allocator.Allocate(ctx, sequence.CounterClients)
			if err != nil {
				return err
			}
			if err := ws.NewClient.AssignNumber(number); err != nil {
				return err
			}
			if err := repos.Clients().Save(ctx, ws.NewClient); err != nil {
				return fmt.Errorf("failed to save client: %w", err)
			}
			result.ClientCreated = true
			result.ClientNumber = number
		}

		if err := repos.Projects().Save(ctx, ws.Project); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}
		if err := repos.Orders().Save(ctx, ws.Order); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		if err := repos.Invoices().SaveBatch(ctx, ws.Invoices); err != nil {
			return fmt.Errorf("failed to save invoices: %w", err)
		}

		// The optimistic lock on the budget is the last line of defense: a
		// concurrent cascade that committed between our read and this write
		// fails here and the conflict retries against its converted marker.
		if err := repos.Budgets().SaveWithLock(ctx, ws.Budget); err != nil {
			return err
		}

		result.ClientID = ws.ClientID
		result.ProjectID = ws.Project.ID
		result.OrderID = ws.Order.ID
		result.InvoiceIDs = make([]uuid.UUID, len(ws.Invoices))
		for i, inv := range ws.Invoices {
			result.InvoiceIDs[i] = inv.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
