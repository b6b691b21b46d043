package budget

import (
	"time"

	"github.com/ddmpress/backend/internal/domain/budget"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest represents a request to create a new draft budget
type CreateBudgetRequest struct {
	Category string     `json:"category" binding:"required,categorycode"`
	Title    string     `json:"title" binding:"max=300"`
	ClientID *uuid.UUID `json:"client_id"`
	// Lead fields are used when the budget belongs to someone who is not a
	// client yet
	LeadName  string `json:"lead_name" binding:"max=200"`
	LeadEmail string `json:"lead_email" binding:"omitempty,email,max=200"`
	LeadPhone string `json:"lead_phone" binding:"max=50"`
}

// AddBudgetItemRequest represents a request to add a line item
type AddBudgetItemRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=300"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// SetPaymentPlanRequest represents a request to set the installment plan
type SetPaymentPlanRequest struct {
	Installments int `json:"installments" binding:"required,min=1,max=120"`
	DueDay       int `json:"due_day" binding:"min=0,max=28"`
}

// BudgetItemResponse represents a budget line item in API responses
type BudgetItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID                 uuid.UUID            `json:"id"`
	Number             string               `json:"number"`
	Status             string               `json:"status"`
	Category           string               `json:"category"`
	Title              string               `json:"title"`
	ClientID           *uuid.UUID           `json:"client_id"`
	LeadName           string               `json:"lead_name"`
	LeadEmail          string               `json:"lead_email"`
	LeadPhone          string               `json:"lead_phone"`
	Items              []BudgetItemResponse `json:"items"`
	TotalAmount        decimal.Decimal      `json:"total_amount"`
	Installments       int                  `json:"installments"`
	DueDay             int                  `json:"due_day"`
	ConvertedProjectID *uuid.UUID           `json:"converted_project_id"`
	SentAt             *time.Time           `json:"sent_at"`
	ApprovedAt         *time.Time           `json:"approved_at"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
	Version            int                  `json:"version"`
}

// BudgetListResponse represents a list item for budgets
type BudgetListResponse struct {
	ID          uuid.UUID       `json:"id"`
	Number      string          `json:"number"`
	Status      string          `json:"status"`
	Category    string          `json:"category"`
	Title       string          `json:"title"`
	ClientID    *uuid.UUID      `json:"client_id"`
	LeadName    string          `json:"lead_name"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BudgetListFilter represents filter options for budget list
type BudgetListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=draft sent approved rejected expired"`
	Category string `form:"category" binding:"omitempty,categorycode"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToBudgetResponse converts a domain budget to a response DTO
func ToBudgetResponse(b *budget.Budget) BudgetResponse {
	items := make([]BudgetItemResponse, len(b.Items))
	for i, item := range b.Items {
		items[i] = BudgetItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		}
	}
	return BudgetResponse{
		ID:                 b.ID,
		Number:             b.Number,
		Status:             string(b.Status),
		Category:           string(b.Category),
		Title:              b.Title,
		ClientID:           b.ClientID,
		LeadName:           b.LeadName,
		LeadEmail:          b.LeadEmail,
		LeadPhone:          b.LeadPhone,
		Items:              items,
		TotalAmount:        b.TotalAmount,
		Installments:       b.Plan.Installments,
		DueDay:             b.Plan.DueDay,
		ConvertedProjectID: b.ConvertedProjectID,
		SentAt:             b.SentAt,
		ApprovedAt:         b.ApprovedAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
		Version:            b.Version,
	}
}

// ToBudgetListResponses converts domain budgets to list DTOs
func ToBudgetListResponses(budgets []budget.Budget) []BudgetListResponse {
	responses := make([]BudgetListResponse, len(budgets))
	for i := range budgets {
		b := &budgets[i]
		responses[i] = BudgetListResponse{
			ID:          b.ID,
			Number:      b.Number,
			Status:      string(b.Status),
			Category:    string(b.Category),
			Title:       b.Title,
			ClientID:    b.ClientID,
			LeadName:    b.LeadName,
			TotalAmount: b.TotalAmount,
			CreatedAt:   b.CreatedAt,
		}
	}
	return responses
}
