package persistence

import (
	"context"
	"errors"

	"github.com/ddmpress/backend/internal/domain/finance"
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements finance.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Order, error) {
	var order finance.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByBudgetID finds the order derived from a budget
func (r *GormOrderRepository) FindByBudgetID(ctx context.Context, budgetID uuid.UUID) (*finance.Order, error) {
	var order finance.Order
	if err := r.db.WithContext(ctx).First(&order, "budget_id = ?", budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByClient finds the orders of a client
func (r *GormOrderRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]finance.Order, error) {
	var orders []finance.Order
	query := r.db.WithContext(ctx).Model(&finance.Order{}).Where("client_id = ?", clientID)
	query = applyPagination(query, filter, "created_at DESC")

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAll finds all orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.Order, error) {
	var orders []finance.Order
	query := r.db.WithContext(ctx).Model(&finance.Order{})
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "client_id":
			query = query.Where("client_id = ?", value)
		}
	}
	query = applyPagination(query, filter, "created_at DESC")

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ExistsByBudgetID reports whether an order already references the budget
func (r *GormOrderRepository) ExistsByBudgetID(ctx context.Context, budgetID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&finance.Order{}).
		Where("budget_id = ?", budgetID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an order
func (r *GormOrderRepository) Save(ctx context.Context, order *finance.Order) error {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// The unique index on budget_id caught a duplicate cascade.
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	order.ClearDomainEvents()
	return nil
}

// SaveWithLock saves an order with optimistic locking (version check)
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *finance.Order) error {
	result := r.db.WithContext(ctx).
		Model(order).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(order)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	order.ClearDomainEvents()
	return nil
}

// Ensure GormOrderRepository implements finance.OrderRepository
var _ finance.OrderRepository = (*GormOrderRepository)(nil)
