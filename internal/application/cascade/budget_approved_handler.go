package cascade

import (
	"context"
	"fmt"

	"github.com/ddmpress/backend/internal/domain/budget"
	"github.com/ddmpress/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DocumentArchiver stores a rendered snapshot of the approved budget in
// durable storage after the cascade commits
type DocumentArchiver interface {
	ArchiveBudget(ctx context.Context, result *Result) error
}

// Notifier tells interested humans that a budget turned into a project
type Notifier interface {
	NotifyConversion(ctx context.Context, result *Result) error
}

// BudgetApprovedHandler handles BudgetApprovedEvent and runs the conversion
// cascade: client, project, order and invoices all come into existence as
// one unit, then post-commit side effects fire on a best-effort basis.
type BudgetApprovedHandler struct {
	committer *Committer
	archiver  DocumentArchiver
	notifier  Notifier
	logger    *zap.Logger
}

// NewBudgetApprovedHandler creates a new handler for budget approved events.
// archiver and notifier are optional; nil disables the side effect.
func NewBudgetApprovedHandler(
	committer *Committer,
	archiver DocumentArchiver,
	notifier Notifier,
	logger *zap.Logger,
) *BudgetApprovedHandler {
	return &BudgetApprovedHandler{
		committer: committer,
		archiver:  archiver,
		notifier:  notifier,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *BudgetApprovedHandler) EventTypes() []string {
	return []string{budget.EventTypeBudgetApproved}
}

// Handle processes a BudgetApprovedEvent by committing the conversion cascade
func (h *BudgetApprovedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	approvedEvent, ok := event.(*budget.BudgetApprovedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", budget.EventTypeBudgetApproved),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			budget.EventTypeBudgetApproved, event.EventType())
	}

	h.logger.Info("processing budget approved event for conversion cascade",
		zap.String("budget_id", approvedEvent.BudgetID.String()),
		zap.String("budget_number", approvedEvent.Number),
		zap.String("total", approvedEvent.Total.String()),
	)

	result, err := h.committer.Commit(ctx, approvedEvent.BudgetID)
	if err != nil {
		h.logger.Error("conversion cascade failed",
			zap.String("budget_id", approvedEvent.BudgetID.String()),
			zap.String("budget_number", approvedEvent.Number),
			zap.Error(err),
		)
		return fmt.Errorf("failed to convert budget %s: %w", approvedEvent.BudgetID, err)
	}

	if result.AlreadyApplied {
		h.logger.Warn("budget already converted, skipping",
			zap.String("budget_id", approvedEvent.BudgetID.String()),
			zap.String("budget_number", approvedEvent.Number),
		)
		return nil // Idempotent - already processed
	}

	h.logger.Info("budget converted successfully",
		zap.String("budget_id", approvedEvent.BudgetID.String()),
		zap.String("budget_number", approvedEvent.Number),
		zap.String("client_id", result.ClientID.String()),
		zap.Bool("client_created", result.ClientCreated),
		zap.String("project_id", result.ProjectID.String()),
		zap.String("order_id", result.OrderID.String()),
		zap.Int("invoices", len(result.InvoiceIDs)),
		zap.Int("attempts", result.Attempts),
	)

	// Post-commit side effects are best effort: the cascade already
	// committed, so failures here are logged and never retried through
	// the event pipeline.
	if h.archiver != nil {
		if err := h.archiver.ArchiveBudget(ctx, result); err != nil {
			h.logger.Error("failed to archive approved budget document",
				zap.String("budget_id", approvedEvent.BudgetID.String()),
				zap.Error(err),
			)
		}
	}
	if h.notifier != nil {
		if err := h.notifier.NotifyConversion(ctx, result); err != nil {
			h.logger.Error("failed to send conversion notification",
				zap.String("budget_id", approvedEvent.BudgetID.String()),
				zap.Error(err),
			)
		}
	}

	return nil
}

// Ensure BudgetApprovedHandler implements shared.EventHandler
var _ shared.EventHandler = (*BudgetApprovedHandler)(nil)
