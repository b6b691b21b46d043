package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/ddmpress/backend/internal/domain/sequence"
	"github.com/ddmpress/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// counterRecord is the persistence shape of a sequence counter
type counterRecord struct {
	Name      string `gorm:"type:varchar(100);primaryKey"`
	LastValue int64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (counterRecord) TableName() string {
	return "counters"
}

func (r counterRecord) toDomain() *sequence.Counter {
	return &sequence.Counter{
		Name:      r.Name,
		LastValue: r.LastValue,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// GormCounterRepository implements sequence.CounterRepository using GORM.
// It must be constructed over a transaction handle when used for allocation;
// the compare-and-swap is only meaningful as part of a larger transaction.
type GormCounterRepository struct {
	db *gorm.DB
}

// NewGormCounterRepository creates a new GormCounterRepository
func NewGormCounterRepository(db *gorm.DB) *GormCounterRepository {
	return &GormCounterRepository{db: db}
}

// Find returns the counter, or shared.ErrNotFound when absent
func (r *GormCounterRepository) Find(ctx context.Context, name string) (*sequence.Counter, error) {
	var record counterRecord
	if err := r.db.WithContext(ctx).First(&record, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Create inserts a fresh counter. Two racers creating the same counter is a
// unique violation, reported as a concurrency conflict so the caller retries.
func (r *GormCounterRepository) Create(ctx context.Context, counter *sequence.Counter) error {
	record := counterRecord{
		Name:      counter.Name,
		LastValue: counter.LastValue,
		CreatedAt: counter.CreatedAt,
		UpdatedAt: counter.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	return nil
}

// CompareAndSwap advances the counter from expected to next. The guarded
// UPDATE affects zero rows when another transaction advanced the counter
// first; that is the conflict signal the allocator relies on.
func (r *GormCounterRepository) CompareAndSwap(ctx context.Context, name string, expected, next int64) error {
	result := r.db.WithContext(ctx).
		Model(&counterRecord{}).
		Where("name = ? AND last_value = ?", name, expected).
		Updates(map[string]interface{}{
			"last_value": next,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormCounterRepository implements sequence.CounterRepository
var _ sequence.CounterRepository = (*GormCounterRepository)(nil)
