package budget

import (
	"context"

	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BudgetRepository defines the persistence contract for budgets
type BudgetRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Budget, error)
	FindByStatus(ctx context.Context, status BudgetStatus, filter shared.Filter) ([]Budget, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Budget, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, b *Budget) error
	// SaveWithLock persists the budget with an optimistic version check.
	// Surfaces shared.ErrConcurrencyConflict when another transaction won.
	SaveWithLock(ctx context.Context, b *Budget) error
	Delete(ctx context.Context, id uuid.UUID) error
}
