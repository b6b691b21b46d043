package project

import (
	"time"

	"github.com/ddmpress/backend/internal/domain/project"
	"github.com/google/uuid"
)

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	BudgetID    uuid.UUID `json:"budget_id"`
	CatalogCode *string   `json:"catalog_code"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// ProjectListFilter represents filter options for project list
type ProjectListFilter struct {
	ClientID *uuid.UUID `form:"client_id"`
	Category string     `form:"category" binding:"omitempty,categorycode"`
	Status   string     `form:"status" binding:"omitempty,oneof=planning in_production published archived"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToProjectResponse converts a domain project to a response DTO
func ToProjectResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		ClientID:    p.ClientID,
		BudgetID:    p.BudgetID,
		CatalogCode: p.CatalogCode,
		Category:    string(p.Category),
		Title:       p.Title,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

// ToProjectResponses converts a slice of domain projects to response DTOs
func ToProjectResponses(projects []project.Project) []ProjectResponse {
	responses := make([]ProjectResponse, len(projects))
	for i := range projects {
		responses[i] = ToProjectResponse(&projects[i])
	}
	return responses
}
