package persistence

import (
	"context"

	"github.com/ddmpress/backend/internal/application/cascade"
	"github.com/ddmpress/backend/internal/domain/budget"
	"github.com/ddmpress/backend/internal/domain/finance"
	"github.com/ddmpress/backend/internal/domain/partner"
	"github.com/ddmpress/backend/internal/domain/project"
	"github.com/ddmpress/backend/internal/domain/sequence"
	"github.com/ddmpress/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormTransactionScope implements cascade.TransactionScope over a GORM
// database. Every Execute call opens one transaction and hands the callback
// repositories bound to it; the counters table is only ever touched through
// such a scope.
type GormTransactionScope struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormTransactionScope creates a new transaction scope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// SetOutboxEventSaver attaches the outbox saver so budget saves inside the
// scope publish their events transactionally
func (s *GormTransactionScope) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	s.outboxSaver = saver
}

// Execute runs fn within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos cascade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		budgetRepo := NewGormBudgetRepository(tx)
		if s.outboxSaver != nil {
			budgetRepo.SetOutboxEventSaver(s.outboxSaver)
		}
		return fn(&gormTransactionalRepositories{
			clients:  NewGormClientRepository(tx),
			projects: NewGormProjectRepository(tx),
			budgets:  budgetRepo,
			orders:   NewGormOrderRepository(tx),
			invoices: NewGormInvoiceRepository(tx),
			counters: NewGormCounterRepository(tx),
		})
	})
}

// gormTransactionalRepositories bundles repositories bound to one transaction
type gormTransactionalRepositories struct {
	clients  *GormClientRepository
	projects *GormProjectRepository
	budgets  *GormBudgetRepository
	orders   *GormOrderRepository
	invoices *GormInvoiceRepository
	counters *GormCounterRepository
}

func (r *gormTransactionalRepositories) Clients() partner.ClientRepository {
	return r.clients
}

func (r *gormTransactionalRepositories) Projects() project.ProjectRepository {
	return r.projects
}

func (r *gormTransactionalRepositories) Budgets() budget.BudgetRepository {
	return r.budgets
}

func (r *gormTransactionalRepositories) Orders() finance.OrderRepository {
	return r.orders
}

func (r *gormTransactionalRepositories) Invoices() finance.InvoiceRepository {
	return r.invoices
}

func (r *gormTransactionalRepositories) Counters() sequence.CounterRepository {
	return r.counters
}

// Ensure GormTransactionScope implements cascade.TransactionScope
var _ cascade.TransactionScope = (*GormTransactionScope)(nil)
