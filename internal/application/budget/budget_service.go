package budget

import (
	"context"
	"time"

	"github.com/ddmpress/backend/internal/domain/budget"
	"github.com/ddmpress/backend/internal/domain/project"
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/ddmpress/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// BudgetService handles budget-related business operations.
//
// State transitions go through SaveWithLock; the repository drains the
// aggregate's domain events into the outbox inside the same transaction, so
// the approval record and its BudgetApproved event commit or roll back
// together.
type BudgetService struct {
	budgetRepo budget.BudgetRepository
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo budget.BudgetRepository) *BudgetService {
	return &BudgetService{
		budgetRepo: budgetRepo,
	}
}

// Create creates a new draft budget
func (s *BudgetService) Create(ctx context.Context, req CreateBudgetRequest) (*BudgetResponse, error) {
	b, err := budget.NewBudget(project.Category(req.Category), req.Title)
	if err != nil {
		return nil, err
	}

	if req.ClientID != nil {
		if err := b.SetClient(*req.ClientID); err != nil {
			return nil, err
		}
	} else if req.LeadName != "" {
		if err := b.SetLead(req.LeadName, req.LeadEmail, req.LeadPhone); err != nil {
			return nil, err
		}
	}

	if err := s.budgetRepo.Save(ctx, b); err != nil {
		return nil, err
	}

	response := ToBudgetResponse(b)
	return &response, nil
}

// GetByID retrieves a budget by ID
func (s *BudgetService) GetByID(ctx context.Context, budgetID uuid.UUID) (*BudgetResponse, error) {
	b, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	response := ToBudgetResponse(b)
	return &response, nil
}

// List retrieves a list of budgets with filtering and pagination
func (s *BudgetService) List(ctx context.Context, filter BudgetListFilter) ([]BudgetListResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}

	budgets, err := s.budgetRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.budgetRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToBudgetListResponses(budgets), total, nil
}

// AddItem adds a line item to a draft budget
func (s *BudgetService) AddItem(ctx context.Context, budgetID uuid.UUID, req AddBudgetItemRequest) (*BudgetResponse, error) {
	b, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	if _, err := b.AddItem(req.Description, req.Quantity, valueobject.NewMoneyBRL(req.UnitPrice)); err != nil {
		return nil, err
	}

	if err := s.budgetRepo.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}

	response := ToBudgetResponse(b)
	return &response, nil
}

// RemoveItem removes a line item from a draft budget
func (s *BudgetService) RemoveItem(ctx context.Context, budgetID, itemID uuid.UUID) (*BudgetResponse, error) {
	b, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	if err := b.RemoveItem(itemID); err != nil {
		return nil, err
	}

	if err := s.budgetRepo.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}

	response := ToBudgetResponse(b)
	return &response, nil
}

// SetPaymentPlan sets the installment plan on a draft budget
func (s *BudgetService) SetPaymentPlan(ctx context.Context, budgetID uuid.UUID, req SetPaymentPlanRequest) (*BudgetResponse, error) {
	b, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	if err := b.SetPaymentPlan(req.Installments, req.DueDay); err != nil {
		return nil, err
	}

	if err := s.budgetRepo.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}

	response := ToBudgetResponse(b)
	return &response, nil
}

// Send marks the budget as sent and stamps its display number
func (s *BudgetService) Send(ctx context.Context, budgetID uuid.UUID) (*BudgetResponse, error) {
	b, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	if err := b.Send(time.Now()); err != nil {
		return nil, err
	}

	if err := s.budgetRepo.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}

	response := ToBudgetResponse(b)
	return &response, nil
}

// Approve marks the budget as approved. The status change and the
// BudgetApproved outbox event land in one transaction; the cascade runs
// asynchronously when the event is delivered.
func (s *BudgetService) Approve(ctx context.Context, budgetID uuid.UUID) (*BudgetResponse, error) {
	b, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	if err := b.Approve(time.Now()); err != nil {
		return nil, err
	}

	if err := s.budgetRepo.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}

	response := ToBudgetResponse(b)
	return &response, nil
}

// Reject marks the budget as rejected
func (s *BudgetService) Reject(ctx context.Context, budgetID uuid.UUID) (*BudgetResponse, error) {
	b, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	if err := b.Reject(); err != nil {
		return nil, err
	}

	if err := s.budgetRepo.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}

	response := ToBudgetResponse(b)
	return &response, nil
}

// Expire marks a sent budget as expired
func (s *BudgetService) Expire(ctx context.Context, budgetID uuid.UUID) (*BudgetResponse, error) {
	b, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	if err := b.Expire(); err != nil {
		return nil, err
	}

	if err := s.budgetRepo.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}

	response := ToBudgetResponse(b)
	return &response, nil
}
