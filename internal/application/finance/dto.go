package finance

import (
	"time"

	"github.com/ddmpress/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                uuid.UUID       `json:"id"`
	ClientID          uuid.UUID       `json:"client_id"`
	ProjectID         uuid.UUID       `json:"project_id"`
	BudgetID          uuid.UUID       `json:"budget_id"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	TotalInstallments int             `json:"total_installments"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// InvoiceResponse represents an installment invoice in API responses
type InvoiceResponse struct {
	ID                uuid.UUID       `json:"id"`
	OrderID           uuid.UUID       `json:"order_id"`
	ProjectID         uuid.UUID       `json:"project_id"`
	ClientID          uuid.UUID       `json:"client_id"`
	CatalogCode       *string         `json:"catalog_code"`
	Value             decimal.Decimal `json:"value"`
	DueDate           time.Time       `json:"due_date"`
	InstallmentNumber int             `json:"installment_number"`
	TotalInstallments int             `json:"total_installments"`
	Status            string          `json:"status"`
	Overdue           bool            `json:"overdue"`
	PaidAt            *time.Time      `json:"paid_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// InvoiceListFilter represents filter options for pending invoice list
type InvoiceListFilter struct {
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(o *finance.Order) OrderResponse {
	return OrderResponse{
		ID:                o.ID,
		ClientID:          o.ClientID,
		ProjectID:         o.ProjectID,
		BudgetID:          o.BudgetID,
		TotalAmount:       o.TotalAmount,
		TotalInstallments: o.TotalInstallments,
		Status:            string(o.Status),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Version:           o.Version,
	}
}

// ToInvoiceResponse converts a domain invoice to a response DTO
func ToInvoiceResponse(i *finance.Invoice, now time.Time) InvoiceResponse {
	return InvoiceResponse{
		ID:                i.ID,
		OrderID:           i.OrderID,
		ProjectID:         i.ProjectID,
		ClientID:          i.ClientID,
		CatalogCode:       i.CatalogCode,
		Value:             i.Value,
		DueDate:           i.DueDate,
		InstallmentNumber: i.InstallmentNumber,
		TotalInstallments: i.TotalInstallments,
		Status:            string(i.Status),
		Overdue:           i.IsOverdue(now),
		PaidAt:            i.PaidAt,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
		Version:           i.Version,
	}
}

// ToInvoiceResponses converts domain invoices to response DTOs
func ToInvoiceResponses(invoices []finance.Invoice, now time.Time) []InvoiceResponse {
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i], now)
	}
	return responses
}
