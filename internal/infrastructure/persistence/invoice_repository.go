package persistence

import (
	"context"
	"errors"

	"github.com/ddmpress/backend/internal/domain/finance"
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements finance.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Invoice, error) {
	var invoice finance.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByOrder finds the invoices of an order, ordered by installment number
func (r *GormInvoiceRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]finance.Invoice, error) {
	var invoices []finance.Invoice
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("installment_number ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindByProject finds the invoices of a project, ordered by installment number
func (r *GormInvoiceRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]finance.Invoice, error) {
	var invoices []finance.Invoice
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("installment_number ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindPending finds pending invoices, due-date first by default
func (r *GormInvoiceRepository) FindPending(ctx context.Context, filter shared.Filter) ([]finance.Invoice, error) {
	var invoices []finance.Invoice
	query := r.db.WithContext(ctx).
		Model(&finance.Invoice{}).
		Where("status = ?", finance.InvoiceStatusPending)
	query = applyPagination(query, filter, "due_date ASC")

	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *finance.Invoice) error {
	if err := r.db.WithContext(ctx).Save(invoice).Error; err != nil {
		return err
	}
	invoice.ClearDomainEvents()
	return nil
}

// SaveWithLock saves an invoice with optimistic locking (version check)
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *finance.Invoice) error {
	result := r.db.WithContext(ctx).
		Model(invoice).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Updates(invoice)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	invoice.ClearDomainEvents()
	return nil
}

// SaveBatch creates or updates multiple invoices
func (r *GormInvoiceRepository) SaveBatch(ctx context.Context, invoices []*finance.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Save(invoices).Error; err != nil {
		return err
	}
	for _, invoice := range invoices {
		invoice.ClearDomainEvents()
	}
	return nil
}

// Ensure GormInvoiceRepository implements finance.InvoiceRepository
var _ finance.InvoiceRepository = (*GormInvoiceRepository)(nil)
