package partner

import (
	"context"
	"errors"
	"fmt"

	"github.com/ddmpress/backend/internal/application/cascade"
	"github.com/ddmpress/backend/internal/domain/partner"
	"github.com/ddmpress/backend/internal/domain/sequence"
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// createAttempts bounds the allocate+save retry on counter conflicts
const createAttempts = 3

// ClientService handles client-related business operations
type ClientService struct {
	clientRepo partner.ClientRepository
	scope      cascade.TransactionScope
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo partner.ClientRepository, scope cascade.TransactionScope) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		scope:      scope,
	}
}

// Create creates a new client and allocates its sequential number. The
// allocation and the insert run in one transaction: if the insert fails the
// number is never consumed, and no two clients ever get the same number.
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client, err := partner.NewClient(req.Name)
	if err != nil {
		return nil, err
	}

	if req.ContactName != "" || req.Phone != "" || req.Email != "" {
		if err := client.SetContact(req.ContactName, req.Phone, req.Email); err != nil {
			return nil, err
		}
	}
	if req.Address != "" || req.City != "" || req.State != "" {
		client.SetAddress(req.Address, req.City, req.State)
	}
	if req.Document != "" {
		if err := client.SetDocument(req.Document); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		client.SetNotes(req.Notes)
	}

	var lastErr error
	for attempt := 1; attempt <= createAttempts; attempt++ {
		err := s.scope.Execute(ctx, func(repos cascade.TransactionalRepositories) error {
			allocator := sequence.NewCounterAllocator(repos.Counters())
			number, err := allocator.Allocate(ctx, sequence.CounterClients)
			if err != nil {
				return err
			}
			if err := client.AssignNumber(number); err != nil {
				return err
			}
			return repos.Clients().Save(ctx, client)
		})
		if err == nil {
			response := ToClientResponse(client)
			return &response, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		// The transaction rolled back, so the in-memory assignment must be
		// unwound before the next attempt.
		client.Number = nil
		lastErr = err
	}
	return nil, fmt.Errorf("failed to allocate client number after %d attempts: %w", createAttempts, lastErr)
}

// GetByID retrieves a client by ID
func (s *ClientService) GetByID(ctx context.Context, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	response := ToClientResponse(client)
	return &response, nil
}

// GetByNumber retrieves a client by its sequential number
func (s *ClientService) GetByNumber(ctx context.Context, number int64) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	response := ToClientResponse(client)
	return &response, nil
}

// List retrieves a list of clients with filtering and pagination
func (s *ClientService) List(ctx context.Context, filter ClientListFilter) ([]ClientResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "number"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.City != "" {
		domainFilter.Filters["city"] = filter.City
	}
	if filter.State != "" {
		domainFilter.Filters["state"] = filter.State
	}

	clients, err := s.clientRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.clientRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToClientResponses(clients), total, nil
}

// Update updates a client
func (s *ClientService) Update(ctx context.Context, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := client.Update(*req.Name); err != nil {
			return nil, err
		}
	}

	if req.ContactName != nil || req.Phone != nil || req.Email != nil {
		contactName := client.ContactName
		phone := client.Phone
		email := client.Email
		if req.ContactName != nil {
			contactName = *req.ContactName
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Email != nil {
			email = *req.Email
		}
		if err := client.SetContact(contactName, phone, email); err != nil {
			return nil, err
		}
	}

	if req.Address != nil || req.City != nil || req.State != nil {
		address := client.Address
		city := client.City
		state := client.State
		if req.Address != nil {
			address = *req.Address
		}
		if req.City != nil {
			city = *req.City
		}
		if req.State != nil {
			state = *req.State
		}
		client.SetAddress(address, city, state)
	}

	if req.Document != nil {
		if err := client.SetDocument(*req.Document); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		client.SetNotes(*req.Notes)
	}

	if err := s.clientRepo.SaveWithLock(ctx, client); err != nil {
		return nil, err
	}

	response := ToClientResponse(client)
	return &response, nil
}

// Deactivate marks a client as inactive
func (s *ClientService) Deactivate(ctx context.Context, clientID uuid.UUID) error {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return err
	}
	if err := client.Deactivate(); err != nil {
		return err
	}
	return s.clientRepo.SaveWithLock(ctx, client)
}

// Activate marks a client as active
func (s *ClientService) Activate(ctx context.Context, clientID uuid.UUID) error {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return err
	}
	if err := client.Activate(); err != nil {
		return err
	}
	return s.clientRepo.SaveWithLock(ctx, client)
}
