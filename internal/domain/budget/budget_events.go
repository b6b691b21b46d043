package budget

import (
	"github.com/ddmpress/backend/internal/domain/project"
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeBudget = "Budget"

// Event type constants
const (
	EventTypeBudgetCreated  = "BudgetCreated"
	EventTypeBudgetSent     = "BudgetSent"
	EventTypeBudgetApproved = "BudgetApproved"
)

// BudgetCreatedEvent is published when a new budget is created
type BudgetCreatedEvent struct {
	shared.BaseDomainEvent
	BudgetID uuid.UUID        `json:"budget_id"`
	Category project.Category `json:"category"`
	Title    string           `json:"title"`
}

// NewBudgetCreatedEvent creates a new BudgetCreatedEvent
func NewBudgetCreatedEvent(b *Budget) *BudgetCreatedEvent {
	return &BudgetCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBudgetCreated, AggregateTypeBudget, b.ID),
		BudgetID:        b.ID,
		Category:        b.Category,
		Title:           b.Title,
	}
}

// BudgetSentEvent is published when a budget is sent to the client/lead
type BudgetSentEvent struct {
	shared.BaseDomainEvent
	BudgetID uuid.UUID       `json:"budget_id"`
	Number   string          `json:"number"`
	Total    decimal.Decimal `json:"total"`
}

// NewBudgetSentEvent creates a new BudgetSentEvent
func NewBudgetSentEvent(b *Budget) *BudgetSentEvent {
	return &BudgetSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBudgetSent, AggregateTypeBudget, b.ID),
		BudgetID:        b.ID,
		Number:          b.Number,
		Total:           b.TotalAmount,
	}
}

// BudgetApprovedEvent is published when a budget transitions sent -> approved.
// It is the trigger input of the approval cascade; the outbox delivers it
// with at-least-once semantics, so every consumer must be idempotent.
type BudgetApprovedEvent struct {
	shared.BaseDomainEvent
	BudgetID uuid.UUID       `json:"budget_id"`
	Number   string          `json:"number"`
	Total    decimal.Decimal `json:"total"`
}

// NewBudgetApprovedEvent creates a new BudgetApprovedEvent
func NewBudgetApprovedEvent(b *Budget) *BudgetApprovedEvent {
	return &BudgetApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBudgetApproved, AggregateTypeBudget, b.ID),
		BudgetID:        b.ID,
		Number:          b.Number,
		Total:           b.TotalAmount,
	}
}
