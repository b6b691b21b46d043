// Package project contains the editorial project aggregate and the catalog
// code synthesis rules.
package project

import (
	"strings"
	"time"

	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectStatus represents the production status of a project
type ProjectStatus string

const (
	ProjectStatusPlanning     ProjectStatus = "planning"
	ProjectStatusInProduction ProjectStatus = "in_production"
	ProjectStatusPublished    ProjectStatus = "published"
	ProjectStatusArchived     ProjectStatus = "archived"
)

// IsValid checks if the status is a valid ProjectStatus
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusInProduction, ProjectStatusPublished, ProjectStatusArchived:
		return true
	}
	return false
}

// DefaultTitle is used when the source budget carries no title
const DefaultTitle = "Untitled project"

// Project represents an editorial work (book, magazine, catalog) for a client.
//
// CatalogCode is assigned at most once, lazily, the first time the project
// exists without one. The code encodes category, client number and a
// per-client/category work index; see SynthesizeCatalogCode.
type Project struct {
	shared.BaseAggregateRoot
	ClientID    uuid.UUID     `gorm:"type:uuid;not null;index"`
	BudgetID    uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex"`
	CatalogCode *string       `gorm:"type:varchar(20);uniqueIndex"`
	Category    Category      `gorm:"type:varchar(10);not null"`
	Title       string        `gorm:"type:varchar(300);not null"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'planning'"`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// NewProject creates a new project for a client, derived from a budget.
// An empty title falls back to DefaultTitle.
func NewProject(clientID, budgetID uuid.UUID, category Category, title string) (*Project, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if budgetID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUDGET", "Budget ID cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown project category")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}

	p := &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		BudgetID:          budgetID,
		Category:          category,
		Title:             title,
		Status:            ProjectStatusPlanning,
	}

	p.AddDomainEvent(NewProjectCreatedEvent(p))

	return p, nil
}

// AssignCatalogCode assigns the synthesized catalog code. The code is
// assigned at most once.
func (p *Project) AssignCatalogCode(code string) error {
	if p.CatalogCode != nil {
		return shared.NewDomainError("CODE_ALREADY_ASSIGNED", "Catalog code is assigned at most once")
	}
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Catalog code cannot be empty")
	}

	p.CatalogCode = &code
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewCatalogCodeAssignedEvent(p, code))

	return nil
}

// StartProduction moves the project into production
func (p *Project) StartProduction() error {
	if p.Status != ProjectStatusPlanning {
		return shared.ErrInvalidState
	}
	p.Status = ProjectStatusInProduction
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Publish marks the project as published
func (p *Project) Publish() error {
	if p.Status != ProjectStatusInProduction {
		return shared.ErrInvalidState
	}
	p.Status = ProjectStatusPublished
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Archive archives the project
func (p *Project) Archive() error {
	if p.Status == ProjectStatusArchived {
		return shared.ErrInvalidState
	}
	p.Status = ProjectStatusArchived
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// HasCatalogCode returns true if the catalog code has been assigned
func (p *Project) HasCatalogCode() bool {
	return p.CatalogCode != nil
}
