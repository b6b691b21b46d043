package project

import (
	"context"

	"github.com/ddmpress/backend/internal/application/cascade"
	"github.com/ddmpress/backend/internal/domain/finance"
	"github.com/ddmpress/backend/internal/domain/project"
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProjectService handles project-related business operations, including the
// lazy catalog code assignment.
type ProjectService struct {
	projectRepo project.ProjectRepository
	scope       cascade.TransactionScope
	logger      *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo project.ProjectRepository, scope cascade.TransactionScope, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		scope:       scope,
		logger:      logger,
	}
}

// GetByID retrieves a project by ID
func (s *ProjectService) GetByID(ctx context.Context, projectID uuid.UUID) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	response := ToProjectResponse(p)
	return &response, nil
}

// GetByBudgetID retrieves the project a budget was converted into
func (s *ProjectService) GetByBudgetID(ctx context.Context, budgetID uuid.UUID) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByBudgetID(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	response := ToProjectResponse(p)
	return &response, nil
}

// List retrieves a list of projects with filtering and pagination
func (s *ProjectService) List(ctx context.Context, filter ProjectListFilter) ([]ProjectResponse, int64, error) {
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
	if filter.ClientID != nil {
		domainFilter.Filters["client_id"] = *filter.ClientID
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	projects, err := s.projectRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.projectRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProjectResponses(projects), total, nil
}

// EnsureCatalogCode assigns the catalog code to a project that does not have
// one yet and backfills it onto the project's invoices. Already-coded
// projects return unchanged, so the operation is safe to call any number of
// times.
//
// The work index derives from the projects that already carry a code, not
// from all projects: a client can hold several uncoded projects in one
// category, and they must take distinct suffixes in whatever order their
// codes are assigned. The count, the assignment and the invoice backfill run
// in one transaction so two concurrent assignments cannot observe the same
// count and race onto one suffix.
func (s *ProjectService) EnsureCatalogCode(ctx context.Context, projectID uuid.UUID) (*ProjectResponse, error) {
	var assigned *project.Project

	err := s.scope.Execute(ctx, func(repos cascade.TransactionalRepositories) error {
		p, err := repos.Projects().FindByID(ctx, projectID)
		if err != nil {
			return err
		}
		if p.HasCatalogCode() {
			assigned = p
			return nil
		}

		client, err := repos.Clients().FindByID(ctx, p.ClientID)
		if err != nil {
			return err
		}
		if !client.HasNumber() {
			return shared.NewDomainError("CLIENT_WITHOUT_NUMBER",
				"Cannot derive a catalog code for a client without a sequential number")
		}

		priorCount, err := repos.Projects().CountCodedByClientAndCategory(ctx, p.ClientID, p.Category)
		if err != nil {
			return err
		}

		code := project.SynthesizeCatalogCode(p.Category, *client.Number, priorCount)
		if err := p.AssignCatalogCode(code); err != nil {
			return err
		}
		if err := repos.Projects().SaveWithLock(ctx, p); err != nil {
			return err
		}

		// Invoices created by the cascade carry no code yet; stamp it now.
		invoices, err := repos.Invoices().FindByProject(ctx, p.ID)
		if err != nil {
			return err
		}
		backfill := make([]*finance.Invoice, 0, len(invoices))
		for i := range invoices {
			inv := &invoices[i]
			if inv.CatalogCode != nil {
				continue
			}
			if err := inv.SetCatalogCode(code); err != nil {
				return err
			}
			backfill = append(backfill, inv)
		}
		if len(backfill) > 0 {
			if err := repos.Invoices().SaveBatch(ctx, backfill); err != nil {
				return err
			}
		}

		s.logger.Info("catalog code assigned",
			zap.String("project_id", p.ID.String()),
			zap.String("catalog_code", code),
			zap.Int("invoices_backfilled", len(backfill)),
		)

		assigned = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	response := ToProjectResponse(assigned)
	return &response, nil
}

// StartProduction moves a project into production
func (s *ProjectService) StartProduction(ctx context.Context, projectID uuid.UUID) (*ProjectResponse, error) {
	return s.transition(ctx, projectID, (*project.Project).StartProduction)
}

// Publish marks a project as published
func (s *ProjectService) Publish(ctx context.Context, projectID uuid.UUID) (*ProjectResponse, error) {
	return s.transition(ctx, projectID, (*project.Project).Publish)
}

// Archive archives a project
func (s *ProjectService) Archive(ctx context.Context, projectID uuid.UUID) (*ProjectResponse, error) {
	return s.transition(ctx, projectID, (*project.Project).Archive)
}

func (s *ProjectService) transition(ctx context.Context, projectID uuid.UUID, fn func(*project.Project) error) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := fn(p); err != nil {
		return nil, err
	}

	if err := s.projectRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}

	response := ToProjectResponse(p)
	return &response, nil
}
