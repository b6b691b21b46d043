package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/ddmpress/backend/internal/domain/budget"
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBudgetRepository implements budget.BudgetRepository using GORM.
//
// When an outbox saver is attached, every save drains the aggregate's
// pending domain events into the outbox inside the same transaction: the
// status change and its event are one atomic write.
type GormBudgetRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormBudgetRepository creates a new GormBudgetRepository
func NewGormBudgetRepository(db *gorm.DB) *GormBudgetRepository {
	return &GormBudgetRepository{db: db}
}

// SetOutboxEventSaver attaches the outbox saver for transactional event publishing
func (r *GormBudgetRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a budget by its ID, including its items
func (r *GormBudgetRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	var b budget.Budget
	if err := r.db.WithContext(ctx).Preload("Items").First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindByStatus finds budgets in a given status
func (r *GormBudgetRepository) FindByStatus(ctx context.Context, status budget.BudgetStatus, filter shared.Filter) ([]budget.Budget, error) {
	var budgets []budget.Budget
	query := applyBudgetFilter(
		r.db.WithContext(ctx).Model(&budget.Budget{}).Where("status = ?", status),
		filter,
	)
	query = applyPagination(query, filter, "created_at DESC")

	if err := query.Preload("Items").Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

// FindAll finds all budgets matching the filter
func (r *GormBudgetRepository) FindAll(ctx context.Context, filter shared.Filter) ([]budget.Budget, error) {
	var budgets []budget.Budget
	query := applyBudgetFilter(r.db.WithContext(ctx).Model(&budget.Budget{}), filter)
	query = applyPagination(query, filter, "created_at DESC")

	if err := query.Preload("Items").Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

// Count counts budgets matching the filter
func (r *GormBudgetRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyBudgetFilter(r.db.WithContext(ctx).Model(&budget.Budget{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a budget and its items
func (r *GormBudgetRepository) Save(ctx context.Context, b *budget.Budget) error {
	events := b.GetDomainEvents()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(b).Error; err != nil {
			return err
		}
		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.ClearDomainEvents()
	return nil
}

// SaveWithLock saves a budget with optimistic locking (version check).
// Items are reconciled and pending domain events land in the outbox within
// the same transaction.
func (r *GormBudgetRepository) SaveWithLock(ctx context.Context, b *budget.Budget) error {
	events := b.GetDomainEvents()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&budget.Budget{}).
			Where("id = ? AND version = ?", b.ID, b.Version-1).
			Omit("Items").
			Updates(b)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		// Reconcile items: drop removed lines, save the rest.
		currentItemIDs := make([]uuid.UUID, len(b.Items))
		for i, item := range b.Items {
			currentItemIDs[i] = item.ID
		}
		if len(currentItemIDs) > 0 {
			if err := tx.Where("budget_id = ? AND id NOT IN ?", b.ID, currentItemIDs).
				Delete(&budget.BudgetItem{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("budget_id = ?", b.ID).
				Delete(&budget.BudgetItem{}).Error; err != nil {
				return err
			}
		}
		for i := range b.Items {
			b.Items[i].BudgetID = b.ID
			if err := tx.Save(&b.Items[i]).Error; err != nil {
				return err
			}
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.ClearDomainEvents()
	return nil
}

// Delete deletes a budget and its items
func (r *GormBudgetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("budget_id = ?", id).Delete(&budget.BudgetItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&budget.Budget{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func applyBudgetFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "category":
			query = query.Where("category = ?", value)
		case "client_id":
			query = query.Where("client_id = ?", value)
		}
	}
	return query
}

// Ensure GormBudgetRepository implements budget.BudgetRepository
var _ budget.BudgetRepository = (*GormBudgetRepository)(nil)
