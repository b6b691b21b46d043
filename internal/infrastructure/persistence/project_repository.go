package persistence

import (
	"context"
	"errors"

	"github.com/ddmpress/backend/internal/domain/project"
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProjectRepository implements project.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project by its ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	var p project.Project
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByBudgetID finds the project derived from a budget
func (r *GormProjectRepository) FindByBudgetID(ctx context.Context, budgetID uuid.UUID) (*project.Project, error) {
	var p project.Project
	if err := r.db.WithContext(ctx).First(&p, "budget_id = ?", budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByClient finds the projects of a client
func (r *GormProjectRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]project.Project, error) {
	var projects []project.Project
	query := applyProjectFilter(
		r.db.WithContext(ctx).Model(&project.Project{}).Where("client_id = ?", clientID),
		filter,
	)
	query = applyPagination(query, filter, "created_at DESC")

	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// FindAll finds all projects matching the filter
func (r *GormProjectRepository) FindAll(ctx context.Context, filter shared.Filter) ([]project.Project, error) {
	var projects []project.Project
	query := applyProjectFilter(r.db.WithContext(ctx).Model(&project.Project{}), filter)
	query = applyPagination(query, filter, "created_at DESC")

	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Count counts projects matching the filter
func (r *GormProjectRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyProjectFilter(r.db.WithContext(ctx).Model(&project.Project{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountCodedByClientAndCategory counts the client's projects in a category
// that already carry a catalog code
func (r *GormProjectRepository) CountCodedByClientAndCategory(ctx context.Context, clientID uuid.UUID, category project.Category) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&project.Project{}).
		Where("client_id = ? AND category = ? AND catalog_code IS NOT NULL", clientID, category).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByBudgetID reports whether a project already references the budget
func (r *GormProjectRepository) ExistsByBudgetID(ctx context.Context, budgetID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&project.Project{}).
		Where("budget_id = ?", budgetID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a project
func (r *GormProjectRepository) Save(ctx context.Context, p *project.Project) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// The unique index on budget_id caught a duplicate cascade.
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	p.ClearDomainEvents()
	return nil
}

// SaveWithLock saves a project with optimistic locking (version check)
func (r *GormProjectRepository) SaveWithLock(ctx context.Context, p *project.Project) error {
	result := r.db.WithContext(ctx).
		Model(p).
		Where("id = ? AND version = ?", p.ID, p.Version-1).
		Updates(p)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return shared.ErrConcurrencyConflict
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	p.ClearDomainEvents()
	return nil
}

// Delete deletes a project
func (r *GormProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&project.Project{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func applyProjectFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "client_id":
			query = query.Where("client_id = ?", value)
		case "category":
			query = query.Where("category = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	return query
}

// Ensure GormProjectRepository implements project.ProjectRepository
var _ project.ProjectRepository = (*GormProjectRepository)(nil)
