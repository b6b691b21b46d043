package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/ddmpress/backend/internal/domain/budget"
	"github.com/ddmpress/backend/internal/domain/finance"
	"github.com/ddmpress/backend/internal/domain/partner"
	"github.com/ddmpress/backend/internal/domain/project"
	"github.com/ddmpress/backend/internal/domain/shared"
)

// EventSerializer serializes and deserializes domain events by type name
type EventSerializer struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewEventSerializer creates a serializer with every domain event registered
func NewEventSerializer() *EventSerializer {
	s := &EventSerializer{
		types: make(map[string]reflect.Type),
	}

	s.Register(partner.EventTypeClientCreated, &partner.ClientCreatedEvent{})
	s.Register(partner.EventTypeClientNumberAssigned, &partner.ClientNumberAssignedEvent{})
	s.Register(partner.EventTypeClientDeactivated, &partner.ClientDeactivatedEvent{})
	s.Register(project.EventTypeProjectCreated, &project.ProjectCreatedEvent{})
	s.Register(project.EventTypeCatalogCodeAssigned, &project.CatalogCodeAssignedEvent{})
	s.Register(budget.EventTypeBudgetCreated, &budget.BudgetCreatedEvent{})
	s.Register(budget.EventTypeBudgetSent, &budget.BudgetSentEvent{})
	s.Register(budget.EventTypeBudgetApproved, &budget.BudgetApprovedEvent{})
	s.Register(finance.EventTypeOrderCreated, &finance.OrderCreatedEvent{})
	s.Register(finance.EventTypeInvoicePaid, &finance.InvoicePaidEvent{})

	return s
}

// Register maps an event type name to a concrete event struct
func (s *EventSerializer) Register(eventType string, prototype shared.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.types[eventType] = t
}

// Serialize converts a domain event to its JSON payload
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize event %s: %w", event.EventType(), err)
	}
	return payload, nil
}

// Deserialize reconstructs a domain event from its type name and payload
func (s *EventSerializer) Deserialize(eventType string, payload []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	t, ok := s.types[eventType]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	event := reflect.New(t).Interface().(shared.DomainEvent)
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, fmt.Errorf("failed to deserialize event %s: %w", eventType, err)
	}
	return event, nil
}
