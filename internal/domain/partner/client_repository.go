package partner

import (
	"context"

	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientRepository defines the persistence contract for clients
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindByNumber(ctx context.Context, number int64) (*Client, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Client, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, client *Client) error
	// SaveWithLock persists the client with an optimistic version check.
	// Surfaces shared.ErrConcurrencyConflict when another transaction won.
	SaveWithLock(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}
