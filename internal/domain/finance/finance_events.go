package finance

import (
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeOrder   = "Order"
	AggregateTypeInvoice = "Invoice"
)

// Event type constants
const (
	EventTypeOrderCreated = "OrderCreated"
	EventTypeInvoicePaid  = "InvoicePaid"
)

// OrderCreatedEvent is published when a cascade creates an order
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	ClientID     uuid.UUID       `json:"client_id"`
	ProjectID    uuid.UUID       `json:"project_id"`
	BudgetID     uuid.UUID       `json:"budget_id"`
	Total        decimal.Decimal `json:"total"`
	Installments int             `json:"installments"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		ClientID:        o.ClientID,
		ProjectID:       o.ProjectID,
		BudgetID:        o.BudgetID,
		Total:           o.TotalAmount,
		Installments:    o.TotalInstallments,
	}
}

// InvoicePaidEvent is published when an invoice is marked paid
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID       `json:"invoice_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Value     decimal.Decimal `json:"value"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(i *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeInvoice, i.ID),
		InvoiceID:       i.ID,
		OrderID:         i.OrderID,
		Value:           i.Value,
	}
}
