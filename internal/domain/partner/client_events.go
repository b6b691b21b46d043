package partner

import (
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeClient = "Client"

// Event type constants
const (
	EventTypeClientCreated        = "ClientCreated"
	EventTypeClientNumberAssigned = "ClientNumberAssigned"
	EventTypeClientDeactivated    = "ClientDeactivated"
)

// ClientCreatedEvent is published when a new client is created
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(client *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, client.ID),
		ClientID:        client.ID,
		Name:            client.Name,
	}
}

// ClientNumberAssignedEvent is published when the sequential number is assigned
type ClientNumberAssignedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Number   int64     `json:"number"`
}

// NewClientNumberAssignedEvent creates a new ClientNumberAssignedEvent
func NewClientNumberAssignedEvent(client *Client, number int64) *ClientNumberAssignedEvent {
	return &ClientNumberAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientNumberAssigned, AggregateTypeClient, client.ID),
		ClientID:        client.ID,
		Number:          number,
	}
}

// ClientDeactivatedEvent is published when a client is deactivated
type ClientDeactivatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
}

// NewClientDeactivatedEvent creates a new ClientDeactivatedEvent
func NewClientDeactivatedEvent(client *Client) *ClientDeactivatedEvent {
	return &ClientDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientDeactivated, AggregateTypeClient, client.ID),
		ClientID:        client.ID,
	}
}
