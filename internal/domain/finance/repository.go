package finance

import (
	"context"

	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines the persistence contract for orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByBudgetID(ctx context.Context, budgetID uuid.UUID) (*Order, error)
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	// ExistsByBudgetID reports whether an order already references the budget
	ExistsByBudgetID(ctx context.Context, budgetID uuid.UUID) (bool, error)
	Save(ctx context.Context, order *Order) error
	SaveWithLock(ctx context.Context, order *Order) error
}

// InvoiceRepository defines the persistence contract for invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Invoice, error)
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]Invoice, error)
	FindPending(ctx context.Context, filter shared.Filter) ([]Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	SaveBatch(ctx context.Context, invoices []*Invoice) error
}
