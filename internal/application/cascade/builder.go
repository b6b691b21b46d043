package cascade

import (
	"context"
	"fmt"
	"time"

	"github.com/ddmpress/backend/internal/domain/budget"
	"github.com/ddmpress/backend/internal/domain/finance"
	"github.com/ddmpress/backend/internal/domain/partner"
	"github.com/ddmpress/backend/internal/domain/project"
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WriteSet is the staged output of the cascade builder: every record the
// approval of one budget derives, computed in memory before any write.
// An empty (nil) write set means the cascade already ran and the delivery
// is a no-op.
type WriteSet struct {
	// NewClient is the staged client when the budget belonged to a lead;
	// nil when an existing client was resolved. A staged client still needs
	// its sequential number allocated inside the committing transaction.
	NewClient *partner.Client
	// ClientID is the resolved client, staged or existing
	ClientID uuid.UUID
	Project  *project.Project
	Order    *finance.Order
	Invoices []*finance.Invoice
	// Budget carries the back-reference update (clientID + converted
	// marker) that makes replayed deliveries no-ops.
	Budget *budget.Budget
}

// IsNoop reports whether there is nothing to commit
func (ws *WriteSet) IsNoop() bool {
	return ws == nil
}

// Builder computes the write set for an approved budget. It performs reads
// only; every read must go through transaction-scoped repositories so the
// staged records are consistent with what the committer writes.
type Builder struct {
	// DueDay is the configured day-of-month for installment due dates,
	// used when the budget's plan does not specify one.
	DueDay int
}

// NewBuilder creates a cascade builder
func NewBuilder(dueDay int) *Builder {
	if dueDay < 1 || dueDay > 28 {
		dueDay = finance.DefaultDueDay
	}
	return &Builder{DueDay: dueDay}
}

// Build stages the full set of derived records for an approved budget.
//
// Returns (nil, nil) when the cascade has already been applied: the budget
// carries its converted marker, or a project/order referencing it exists.
// Returns shared.ErrIncompleteSourceData when the budget neither references
// a client nor carries inline lead data.
func (bld *Builder) Build(ctx context.Context, repos TransactionalRepositories, b *budget.Budget, now time.Time) (*WriteSet, error) {
	if !b.IsApproved() {
		return nil, shared.ErrInvalidState
	}

	// Idempotency check against the same snapshot the committer writes to.
	if b.IsConverted() {
		return nil, nil
	}
	if exists, err := repos.Projects().ExistsByBudgetID(ctx, b.ID); err != nil {
		return nil, fmt.Errorf("failed to check existing project: %w", err)
	} else if exists {
		return nil, nil
	}
	if exists, err := repos.Orders().ExistsByBudgetID(ctx, b.ID); err != nil {
		return nil, fmt.Errorf("failed to check existing order: %w", err)
	} else if exists {
		return nil, nil
	}

	ws := &WriteSet{Budget: b}

	// Resolve or stage the client.
	switch {
	case b.HasClient():
		client, err := repos.Clients().FindByID(ctx, *b.ClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve client %s: %w", b.ClientID, err)
		}
		ws.ClientID = client.ID
	case b.HasLeadData():
		client, err := partner.NewClient(b.LeadName)
		if err != nil {
			return nil, err
		}
		if err := client.SetContact("", b.LeadPhone, b.LeadEmail); err != nil {
			return nil, err
		}
		ws.NewClient = client
		ws.ClientID = client.ID
	default:
		return nil, shared.ErrIncompleteSourceData
	}

	// Stage the project.
	proj, err := project.NewProject(ws.ClientID, b.ID, b.Category, b.Title)
	if err != nil {
		return nil, err
	}
	ws.Project = proj

	// Compute the payment schedule and stage the order.
	dueDay := b.Plan.DueDay
	if dueDay == 0 {
		dueDay = bld.DueDay
	}
	schedule, err := finance.BuildSchedule(b.Total(), b.Plan.Installments, dueDay, now)
	if err != nil {
		return nil, err
	}

	order, err := finance.NewOrder(ws.ClientID, proj.ID, b.ID, b.Total(), len(schedule))
	if err != nil {
		return nil, err
	}
	ws.Order = order

	// Stage one pending invoice per installment. Catalog codes are deferred
	// until the project earns one.
	ws.Invoices = make([]*finance.Invoice, 0, len(schedule))
	for _, inst := range schedule {
		invoice, err := finance.NewInvoice(order.ID, proj.ID, ws.ClientID, inst, len(schedule))
		if err != nil {
			return nil, err
		}
		ws.Invoices = append(ws.Invoices, invoice)
	}

	// Stage the back-reference: this is what makes a replayed delivery a
	// no-op at the next idempotency check.
	if err := b.MarkConverted(ws.ClientID, proj.ID); err != nil {
		return nil, err
	}

	return ws, nil
}
