package finance

import (
	"context"
	"time"

	"github.com/ddmpress/backend/internal/domain/finance"
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceService handles installment invoice operations
type InvoiceService struct {
	invoiceRepo finance.InvoiceRepository
	orderRepo   finance.OrderRepository
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo finance.InvoiceRepository, orderRepo finance.OrderRepository) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
	}
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice, time.Now())
	return &response, nil
}

// ListByOrder retrieves the invoices of an order, ordered by installment
func (s *InvoiceService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponses(invoices, time.Now()), nil
}

// ListByProject retrieves the invoices of a project, ordered by installment
func (s *InvoiceService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponses(invoices, time.Now()), nil
}

// ListPending retrieves pending invoices ordered by due date
func (s *InvoiceService) ListPending(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "due_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}

	invoices, err := s.invoiceRepo.FindPending(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponses(invoices, time.Now()), nil
}

// MarkPaid marks an invoice as paid. When it is the last open invoice of its
// order, the order completes.
func (s *InvoiceService) MarkPaid(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.MarkPaid(time.Now()); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	if err := s.completeOrderIfSettled(ctx, invoice.OrderID); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice, time.Now())
	return &response, nil
}

// Cancel cancels a pending invoice
func (s *InvoiceService) Cancel(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.Cancel(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice, time.Now())
	return &response, nil
}

// GetOrder retrieves an order by ID
func (s *InvoiceService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// completeOrderIfSettled completes the order once no pending invoices remain
func (s *InvoiceService) completeOrderIfSettled(ctx context.Context, orderID uuid.UUID) error {
	invoices, err := s.invoiceRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	for i := range invoices {
		if invoices[i].Status == finance.InvoiceStatusPending {
			return nil
		}
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != finance.OrderStatusOpen {
		return nil
	}
	if err := order.Complete(); err != nil {
		return err
	}
	return s.orderRepo.SaveWithLock(ctx, order)
}
