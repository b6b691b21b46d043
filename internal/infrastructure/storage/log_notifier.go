package storage

import (
	"context"

	"github.com/ddmpress/backend/internal/application/cascade"
	"go.uber.org/zap"
)

// LogNotifier is a placeholder Notifier that records conversions in the
// application log. Use this until a real channel (email, webhook) is wired.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Ensure LogNotifier implements Notifier
var _ cascade.Notifier = (*LogNotifier)(nil)

// NotifyConversion logs the conversion outcome
func (n *LogNotifier) NotifyConversion(ctx context.Context, result *cascade.Result) error {
	n.logger.Info("budget converted to project",
		zap.String("budget_id", result.BudgetID.String()),
		zap.String("client_id", result.ClientID.String()),
		zap.Bool("client_created", result.ClientCreated),
		zap.String("project_id", result.ProjectID.String()),
		zap.String("order_id", result.OrderID.String()),
		zap.Int("invoices", len(result.InvoiceIDs)),
	)
	return nil
}
