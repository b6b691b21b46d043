package finance

import (
	"time"

	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/ddmpress/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a production order
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order represents the production order derived from an approved budget.
// Exactly one order is created per successful cascade; BudgetID carries a
// unique index so the database itself refuses a duplicate.
type Order struct {
	shared.BaseAggregateRoot
	ClientID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProjectID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	BudgetID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalInstallments int             `gorm:"not null;default:1"`
	Status            OrderStatus     `gorm:"type:varchar(20);not null;default:'open'"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order referencing client, project and source budget
func NewOrder(clientID, projectID, budgetID uuid.UUID, total valueobject.Money, totalInstallments int) (*Order, error) {
	if clientID == uuid.Nil || projectID == uuid.Nil || budgetID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Order requires client, project and budget references")
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TOTAL", "Order total cannot be negative")
	}
	if totalInstallments < 1 {
		totalInstallments = 1
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		ProjectID:         projectID,
		BudgetID:          budgetID,
		TotalAmount:       total.Round(2).Amount(),
		TotalInstallments: totalInstallments,
		Status:            OrderStatusOpen,
	}

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// Total returns the order total as Money
func (o *Order) Total() valueobject.Money {
	return valueobject.NewMoneyBRL(o.TotalAmount)
}

// Complete marks the order as completed
func (o *Order) Complete() error {
	if o.Status != OrderStatusOpen {
		return shared.ErrInvalidState
	}
	o.Status = OrderStatusCompleted
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// Cancel marks the order as cancelled
func (o *Order) Cancel() error {
	if o.Status != OrderStatusOpen {
		return shared.ErrInvalidState
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}
