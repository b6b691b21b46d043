package event

import (
	"context"
	"fmt"

	"github.com/ddmpress/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OutboxPublisher writes domain events to the outbox table within the
// caller's transaction, so event and state change commit or roll back
// together.
type OutboxPublisher struct {
	serializer *EventSerializer
	logger     *zap.Logger
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(serializer *EventSerializer, logger *zap.Logger) *OutboxPublisher {
	return &OutboxPublisher{
		serializer: serializer,
		logger:     logger,
	}
}

// SaveEvents saves domain events to the outbox table within the given transaction
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("txProvider must be *gorm.DB, got %T", txProvider)
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return fmt.Errorf("failed to serialize event %s: %w", event.EventType(), err)
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}

	if err := tx.WithContext(ctx).Create(&entries).Error; err != nil {
		return fmt.Errorf("failed to save outbox entries: %w", err)
	}

	p.logger.Debug("events saved to outbox",
		zap.Int("count", len(entries)),
	)
	return nil
}

// Ensure OutboxPublisher implements OutboxEventSaver
var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
