// Package budget contains the budget (quote) aggregate. A budget is the
// commercial document a lead or client receives; its approval is the single
// event that fans out into client, project, order and invoices.
package budget

import (
	"strings"
	"time"

	"github.com/ddmpress/backend/internal/domain/project"
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/ddmpress/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetStatus represents the status of a budget
type BudgetStatus string

const (
	BudgetStatusDraft    BudgetStatus = "draft"
	BudgetStatusSent     BudgetStatus = "sent"
	BudgetStatusApproved BudgetStatus = "approved"
	BudgetStatusRejected BudgetStatus = "rejected"
	BudgetStatusExpired  BudgetStatus = "expired"
)

// IsValid checks if the status is a valid BudgetStatus
func (s BudgetStatus) IsValid() bool {
	switch s {
	case BudgetStatusDraft, BudgetStatusSent, BudgetStatusApproved, BudgetStatusRejected, BudgetStatusExpired:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s BudgetStatus) CanTransitionTo(target BudgetStatus) bool {
	switch s {
	case BudgetStatusDraft:
		return target == BudgetStatusSent || target == BudgetStatusRejected
	case BudgetStatusSent:
		return target == BudgetStatusApproved || target == BudgetStatusRejected || target == BudgetStatusExpired
	case BudgetStatusApproved, BudgetStatusRejected, BudgetStatusExpired:
		return false // Terminal states
	}
	return false
}

// PaymentPlan describes how the budget total is collected once approved.
// Installments <= 1 means lump sum. DueDay is the day-of-month installments
// fall due on; zero falls back to the configured default.
type PaymentPlan struct {
	Installments int `gorm:"not null;default:1"`
	DueDay       int `gorm:"not null;default:0"`
}

// IsLumpSum returns true when the plan is a single payment
func (p PaymentPlan) IsLumpSum() bool {
	return p.Installments <= 1
}

// BudgetItem represents a line item in a budget
type BudgetItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	BudgetID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(300);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BudgetItem) TableName() string {
	return "budget_items"
}

// NewBudgetItem creates a new budget line item
func NewBudgetItem(budgetID uuid.UUID, description string, quantity decimal.Decimal, unitPrice valueobject.Money) (*BudgetItem, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &BudgetItem{
		ID:          uuid.New(),
		BudgetID:    budgetID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		Amount:      quantity.Mul(unitPrice.Amount()).Round(2),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Budget represents a quote for an editorial project.
//
// ClientID is nil while the budget belongs to a lead; the approval cascade
// resolves or creates the client and records the back-reference here.
// ConvertedProjectID is the converted marker: once set, re-delivery of the
// approval event is a no-op.
type Budget struct {
	shared.BaseAggregateRoot
	Number             string           `gorm:"type:varchar(30);index"` // display-only, date-derived
	Status             BudgetStatus     `gorm:"type:varchar(20);not null;default:'draft'"`
	Category           project.Category `gorm:"type:varchar(10);not null"`
	Title              string           `gorm:"type:varchar(300)"`
	ClientID           *uuid.UUID       `gorm:"type:uuid;index"`
	LeadName           string           `gorm:"type:varchar(200)"`
	LeadEmail          string           `gorm:"type:varchar(200)"`
	LeadPhone          string           `gorm:"type:varchar(50)"`
	Items              []BudgetItem     `gorm:"foreignKey:BudgetID;constraint:OnDelete:CASCADE"`
	TotalAmount        decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	Plan               PaymentPlan      `gorm:"embedded;embeddedPrefix:plan_"`
	ConvertedProjectID *uuid.UUID       `gorm:"type:uuid;index"`
	SentAt             *time.Time
	ApprovedAt         *time.Time
}

// TableName returns the table name for GORM
func (Budget) TableName() string {
	return "budgets"
}

// NewBudget creates a new draft budget
func NewBudget(category project.Category, title string) (*Budget, error) {
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown budget category")
	}

	b := &Budget{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            BudgetStatusDraft,
		Category:          category,
		Title:             strings.TrimSpace(title),
		TotalAmount:       decimal.Zero,
		Plan:              PaymentPlan{Installments: 1},
		Items:             make([]BudgetItem, 0),
	}

	b.AddDomainEvent(NewBudgetCreatedEvent(b))

	return b, nil
}

// SetClient references an existing client
func (b *Budget) SetClient(clientID uuid.UUID) error {
	if clientID == uuid.Nil {
		return shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	b.ClientID = &clientID
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// SetLead records inline lead data for a budget without a client
func (b *Budget) SetLead(name, email, phone string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_LEAD", "Lead name cannot be empty")
	}
	b.LeadName = strings.TrimSpace(name)
	b.LeadEmail = strings.ToLower(email)
	b.LeadPhone = phone
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// SetPaymentPlan sets the installment plan
func (b *Budget) SetPaymentPlan(installments, dueDay int) error {
	if !b.CanModify() {
		return shared.ErrInvalidState
	}
	if installments < 1 {
		return shared.NewDomainError("INVALID_PLAN", "Installment count must be at least 1")
	}
	if dueDay < 0 || dueDay > 28 {
		return shared.NewDomainError("INVALID_PLAN", "Due day must be between 1 and 28, or 0 for the default")
	}
	b.Plan = PaymentPlan{Installments: installments, DueDay: dueDay}
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// AddItem adds a line item to a draft budget
func (b *Budget) AddItem(description string, quantity decimal.Decimal, unitPrice valueobject.Money) (*BudgetItem, error) {
	if !b.CanModify() {
		return nil, shared.ErrInvalidState
	}

	item, err := NewBudgetItem(b.ID, description, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	b.Items = append(b.Items, *item)
	b.recalculateTotal()
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	return item, nil
}

// RemoveItem removes a line item from a draft budget
func (b *Budget) RemoveItem(itemID uuid.UUID) error {
	if !b.CanModify() {
		return shared.ErrInvalidState
	}

	for i, item := range b.Items {
		if item.ID == itemID {
			b.Items = append(b.Items[:i], b.Items[i+1:]...)
			b.recalculateTotal()
			b.UpdatedAt = time.Now()
			b.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// Send marks the budget as sent to the client/lead and stamps the
// display number.
func (b *Budget) Send(now time.Time) error {
	if !b.Status.CanTransitionTo(BudgetStatusSent) {
		return shared.ErrInvalidState
	}
	if len(b.Items) == 0 {
		return shared.NewDomainError("EMPTY_BUDGET", "Cannot send a budget without items")
	}

	b.Status = BudgetStatusSent
	b.Number = SynthesizeNumber(b.Version, now)
	b.SentAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	b.AddDomainEvent(NewBudgetSentEvent(b))

	return nil
}

// Approve marks the budget as approved (the quote is signed). This is the
// transition the cascade trigger watches. Approving an already approved
// budget is an invalid state, not a silent success: replay tolerance lives
// in the trigger handler, not here.
func (b *Budget) Approve(now time.Time) error {
	if !b.Status.CanTransitionTo(BudgetStatusApproved) {
		return shared.ErrInvalidState
	}

	b.Status = BudgetStatusApproved
	b.ApprovedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	b.AddDomainEvent(NewBudgetApprovedEvent(b))

	return nil
}

// Reject marks the budget as rejected
func (b *Budget) Reject() error {
	if !b.Status.CanTransitionTo(BudgetStatusRejected) {
		return shared.ErrInvalidState
	}
	b.Status = BudgetStatusRejected
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// Expire marks a sent budget as expired
func (b *Budget) Expire() error {
	if !b.Status.CanTransitionTo(BudgetStatusExpired) {
		return shared.ErrInvalidState
	}
	b.Status = BudgetStatusExpired
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// MarkConverted records the cascade back-reference: the client the budget
// resolved to and the project it became. Setting it twice is invalid; the
// committer re-checks IsConverted before writing.
func (b *Budget) MarkConverted(clientID, projectID uuid.UUID) error {
	if b.Status != BudgetStatusApproved {
		return shared.ErrInvalidState
	}
	if b.ConvertedProjectID != nil {
		return shared.NewDomainError("ALREADY_CONVERTED", "Budget has already been converted")
	}
	b.ClientID = &clientID
	b.ConvertedProjectID = &projectID
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// IsConverted reports whether the approval cascade has already run
func (b *Budget) IsConverted() bool {
	return b.ConvertedProjectID != nil
}

// HasClient reports whether the budget references an existing client
func (b *Budget) HasClient() bool {
	return b.ClientID != nil
}

// HasLeadData reports whether inline lead data is present
func (b *Budget) HasLeadData() bool {
	return strings.TrimSpace(b.LeadName) != ""
}

// CanModify returns true while items and plan may still change
func (b *Budget) CanModify() bool {
	return b.Status == BudgetStatusDraft
}

// IsApproved returns true once the budget is approved
func (b *Budget) IsApproved() bool {
	return b.Status == BudgetStatusApproved
}

// Total returns the budget total as Money
func (b *Budget) Total() valueobject.Money {
	return valueobject.NewMoneyBRL(b.TotalAmount)
}

func (b *Budget) recalculateTotal() {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.Amount)
	}
	b.TotalAmount = total.Round(2)
}
