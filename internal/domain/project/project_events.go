package project

import (
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeProject = "Project"

// Event type constants
const (
	EventTypeProjectCreated     = "ProjectCreated"
	EventTypeCatalogCodeAssigned = "CatalogCodeAssigned"
)

// ProjectCreatedEvent is published when a new project is created
type ProjectCreatedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
	ClientID  uuid.UUID `json:"client_id"`
	BudgetID  uuid.UUID `json:"budget_id"`
	Category  Category  `json:"category"`
	Title     string    `json:"title"`
}

// NewProjectCreatedEvent creates a new ProjectCreatedEvent
func NewProjectCreatedEvent(p *Project) *ProjectCreatedEvent {
	return &ProjectCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectCreated, AggregateTypeProject, p.ID),
		ProjectID:       p.ID,
		ClientID:        p.ClientID,
		BudgetID:        p.BudgetID,
		Category:        p.Category,
		Title:           p.Title,
	}
}

// CatalogCodeAssignedEvent is published when the catalog code is assigned
type CatalogCodeAssignedEvent struct {
	shared.BaseDomainEvent
	ProjectID   uuid.UUID `json:"project_id"`
	CatalogCode string    `json:"catalog_code"`
}

// NewCatalogCodeAssignedEvent creates a new CatalogCodeAssignedEvent
func NewCatalogCodeAssignedEvent(p *Project, code string) *CatalogCodeAssignedEvent {
	return &CatalogCodeAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCatalogCodeAssigned, AggregateTypeProject, p.ID),
		ProjectID:       p.ID,
		CatalogCode:     code,
	}
}
