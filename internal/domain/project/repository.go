package project

import (
	"context"

	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectRepository defines the persistence contract for projects
type ProjectRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindByBudgetID(ctx context.Context, budgetID uuid.UUID) (*Project, error)
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]Project, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Project, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// CountCodedByClientAndCategory counts the client's projects in a
	// category that already carry a catalog code. Uncoded projects are
	// excluded: the count is the work index of the next code, and two
	// uncoded projects must not derive the same index. The call must run on
	// a transaction-scoped repository so the count and the code assignment
	// share one consistent snapshot.
	CountCodedByClientAndCategory(ctx context.Context, clientID uuid.UUID, category Category) (int64, error)
	// ExistsByBudgetID reports whether a project already references the budget
	ExistsByBudgetID(ctx context.Context, budgetID uuid.UUID) (bool, error)
	Save(ctx context.Context, project *Project) error
	SaveWithLock(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}
