package finance

import (
	"time"

	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/ddmpress/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an installment invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice represents one installment of an order's payment schedule.
//
// CatalogCode is a deferred-consistency field: invoices are created before
// the project's catalog code exists and are backfilled once it is assigned.
// A nil code on a pending invoice is expected state, not an error.
type Invoice struct {
	shared.BaseAggregateRoot
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProjectID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	CatalogCode       *string         `gorm:"type:varchar(20)"`
	Value             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DueDate           time.Time       `gorm:"not null;index"`
	InstallmentNumber int             `gorm:"not null"`
	TotalInstallments int             `gorm:"not null"`
	Status            InvoiceStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	PaidAt            *time.Time
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a pending invoice for one installment
func NewInvoice(orderID, projectID, clientID uuid.UUID, inst Installment, totalInstallments int) (*Invoice, error) {
	if orderID == uuid.Nil || projectID == uuid.Nil || clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Invoice requires order, project and client references")
	}
	if inst.Value.IsNegative() {
		return nil, shared.NewDomainError("INVALID_VALUE", "Invoice value cannot be negative")
	}
	if inst.Number < 1 || inst.Number > totalInstallments {
		return nil, shared.NewDomainError("INVALID_INSTALLMENT", "Installment number out of range")
	}

	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		ProjectID:         projectID,
		ClientID:          clientID,
		Value:             inst.Value.Round(2).Amount(),
		DueDate:           inst.DueDate,
		InstallmentNumber: inst.Number,
		TotalInstallments: totalInstallments,
		Status:            InvoiceStatusPending,
	}, nil
}

// ValueMoney returns the invoice value as Money
func (i *Invoice) ValueMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(i.Value)
}

// SetCatalogCode backfills the deferred catalog code
func (i *Invoice) SetCatalogCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Catalog code cannot be empty")
	}
	i.CatalogCode = &code
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// MarkPaid marks the invoice as paid
func (i *Invoice) MarkPaid(at time.Time) error {
	if i.Status != InvoiceStatusPending {
		return shared.ErrInvalidState
	}
	i.Status = InvoiceStatusPaid
	i.PaidAt = &at
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// Cancel cancels a pending invoice
func (i *Invoice) Cancel() error {
	if i.Status != InvoiceStatusPending {
		return shared.ErrInvalidState
	}
	i.Status = InvoiceStatusCancelled
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// IsOverdue reports whether a pending invoice is past due
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status == InvoiceStatusPending && now.After(i.DueDate)
}
