// Package cascade implements the approval cascade: the transactional fan-out
// of one approved budget into client, project, order and invoices.
package cascade

import (
	"context"

	"github.com/ddmpress/backend/internal/domain/budget"
	"github.com/ddmpress/backend/internal/domain/finance"
	"github.com/ddmpress/backend/internal/domain/partner"
	"github.com/ddmpress/backend/internal/domain/project"
	"github.com/ddmpress/backend/internal/domain/sequence"
)

// TransactionScope provides transactional access to the repositories the
// cascade touches. When a function executes within a scope, every repository
// operation is part of the same database transaction and commits or rolls
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all cascade repositories
// within one transaction. All repositories returned share the same underlying
// database transaction; in particular Counters() is the only sanctioned way
// to touch the shared counters, so an allocated number commits or vanishes
// together with whatever consumed it.
type TransactionalRepositories interface {
	// Clients returns the client repository scoped to the current transaction
	Clients() partner.ClientRepository
	// Projects returns the project repository scoped to the current transaction
	Projects() project.ProjectRepository
	// Budgets returns the budget repository scoped to the current transaction
	Budgets() budget.BudgetRepository
	// Orders returns the order repository scoped to the current transaction
	Orders() finance.OrderRepository
	// Invoices returns the invoice repository scoped to the current transaction
	Invoices() finance.InvoiceRepository
	// Counters returns the counter repository scoped to the current transaction
	Counters() sequence.CounterRepository
}
