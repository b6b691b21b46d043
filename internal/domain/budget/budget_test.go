package budget

import (
	"testing"
	"time"

	"github.com/ddmpress/backend/internal/domain/project"
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/ddmpress/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftBudget(t *testing.T) *Budget {
	b, err := NewBudget(project.CategoryBook, "Collected Poems")
	require.NoError(t, err)
	return b
}

func addItem(t *testing.T, b *Budget, description string, qty int64, price float64) {
	_, err := b.AddItem(description, decimal.NewFromInt(qty), valueobject.NewMoneyBRLFromFloat(price))
	require.NoError(t, err)
}

func TestNewBudget(t *testing.T) {
	t.Run("creates draft budget", func(t *testing.T) {
		b, err := NewBudget(project.CategoryBook, "  Collected Poems  ")

		require.NoError(t, err)
		assert.Equal(t, BudgetStatusDraft, b.Status)
		assert.Equal(t, "Collected Poems", b.Title)
		assert.True(t, b.TotalAmount.IsZero())
		assert.Equal(t, 1, b.Plan.Installments)
		assert.True(t, b.Plan.IsLumpSum())
		assert.Len(t, b.GetDomainEvents(), 1)
	})

	t.Run("fails with unknown category", func(t *testing.T) {
		b, err := NewBudget(project.Category("Z"), "Title")

		assert.Error(t, err)
		assert.Nil(t, b)
	})
}

func TestBudget_Items(t *testing.T) {
	t.Run("items accumulate into the total", func(t *testing.T) {
		b := newDraftBudget(t)

		addItem(t, b, "Printing", 500, 1.50)
		addItem(t, b, "Cover design", 1, 250)

		assert.Len(t, b.Items, 2)
		assert.Equal(t, "1000.00", b.TotalAmount.StringFixed(2))
	})

	t.Run("removing an item recalculates the total", func(t *testing.T) {
		b := newDraftBudget(t)
		addItem(t, b, "Printing", 500, 1.50)
		item, err := b.AddItem("Cover design", decimal.NewFromInt(1), valueobject.NewMoneyBRLFromFloat(250))
		require.NoError(t, err)

		require.NoError(t, b.RemoveItem(item.ID))

		assert.Len(t, b.Items, 1)
		assert.Equal(t, "750.00", b.TotalAmount.StringFixed(2))
	})

	t.Run("removing an unknown item fails", func(t *testing.T) {
		b := newDraftBudget(t)
		addItem(t, b, "Printing", 1, 10)

		assert.ErrorIs(t, b.RemoveItem(uuid.New()), shared.ErrNotFound)
	})

	t.Run("rejects empty description", func(t *testing.T) {
		b := newDraftBudget(t)

		_, err := b.AddItem("  ", decimal.NewFromInt(1), valueobject.NewMoneyBRLFromFloat(10))

		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		b := newDraftBudget(t)

		_, err := b.AddItem("Printing", decimal.Zero, valueobject.NewMoneyBRLFromFloat(10))

		assert.Error(t, err)
	})

	t.Run("items locked once sent", func(t *testing.T) {
		b := newDraftBudget(t)
		addItem(t, b, "Printing", 1, 10)
		require.NoError(t, b.Send(time.Now()))

		_, err := b.AddItem("More printing", decimal.NewFromInt(1), valueobject.NewMoneyBRLFromFloat(10))
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestBudget_PaymentPlan(t *testing.T) {
	t.Run("sets installment plan", func(t *testing.T) {
		b := newDraftBudget(t)

		require.NoError(t, b.SetPaymentPlan(3, 15))

		assert.Equal(t, 3, b.Plan.Installments)
		assert.Equal(t, 15, b.Plan.DueDay)
		assert.False(t, b.Plan.IsLumpSum())
	})

	t.Run("zero due day defers to the configured default", func(t *testing.T) {
		b := newDraftBudget(t)

		require.NoError(t, b.SetPaymentPlan(2, 0))
		assert.Equal(t, 0, b.Plan.DueDay)
	})

	t.Run("rejects due day above 28", func(t *testing.T) {
		b := newDraftBudget(t)

		assert.Error(t, b.SetPaymentPlan(2, 29))
	})

	t.Run("rejects zero installments", func(t *testing.T) {
		b := newDraftBudget(t)

		assert.Error(t, b.SetPaymentPlan(0, 10))
	})

	t.Run("plan locked once sent", func(t *testing.T) {
		b := newDraftBudget(t)
		addItem(t, b, "Printing", 1, 10)
		require.NoError(t, b.Send(time.Now()))

		assert.ErrorIs(t, b.SetPaymentPlan(2, 10), shared.ErrInvalidState)
	})
}

func TestBudget_Lifecycle(t *testing.T) {
	now := time.Date(2026, time.September, 1, 15, 30, 0, 0, time.UTC)

	t.Run("draft to sent stamps the display number", func(t *testing.T) {
		b := newDraftBudget(t)
		addItem(t, b, "Printing", 1, 10)

		require.NoError(t, b.Send(now))

		assert.Equal(t, BudgetStatusSent, b.Status)
		assert.NotEmpty(t, b.Number)
		require.NotNil(t, b.SentAt)
		assert.Equal(t, now, *b.SentAt)
	})

	t.Run("cannot send an empty budget", func(t *testing.T) {
		b := newDraftBudget(t)

		err := b.Send(now)

		assert.Error(t, err)
		assert.Equal(t, BudgetStatusDraft, b.Status)
	})

	t.Run("sent to approved raises the approval event", func(t *testing.T) {
		b := newDraftBudget(t)
		addItem(t, b, "Printing", 1, 10)
		require.NoError(t, b.Send(now))
		b.ClearDomainEvents()

		require.NoError(t, b.Approve(now))

		assert.Equal(t, BudgetStatusApproved, b.Status)
		require.NotNil(t, b.ApprovedAt)
		events := b.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeBudgetApproved, events[0].EventType())
	})

	t.Run("cannot approve a draft", func(t *testing.T) {
		b := newDraftBudget(t)
		addItem(t, b, "Printing", 1, 10)

		assert.ErrorIs(t, b.Approve(now), shared.ErrInvalidState)
	})

	t.Run("cannot approve twice", func(t *testing.T) {
		b := newDraftBudget(t)
		addItem(t, b, "Printing", 1, 10)
		require.NoError(t, b.Send(now))
		require.NoError(t, b.Approve(now))

		assert.ErrorIs(t, b.Approve(now), shared.ErrInvalidState)
	})

	t.Run("reject from draft and sent", func(t *testing.T) {
		b := newDraftBudget(t)
		require.NoError(t, b.Reject())
		assert.Equal(t, BudgetStatusRejected, b.Status)

		b2 := newDraftBudget(t)
		addItem(t, b2, "Printing", 1, 10)
		require.NoError(t, b2.Send(now))
		require.NoError(t, b2.Reject())
	})

	t.Run("expire only from sent", func(t *testing.T) {
		b := newDraftBudget(t)
		assert.ErrorIs(t, b.Expire(), shared.ErrInvalidState)

		addItem(t, b, "Printing", 1, 10)
		require.NoError(t, b.Send(now))
		require.NoError(t, b.Expire())
		assert.Equal(t, BudgetStatusExpired, b.Status)
	})

	t.Run("terminal states admit no transitions", func(t *testing.T) {
		for _, status := range []BudgetStatus{BudgetStatusApproved, BudgetStatusRejected, BudgetStatusExpired} {
			for _, target := range []BudgetStatus{BudgetStatusDraft, BudgetStatusSent, BudgetStatusApproved, BudgetStatusRejected, BudgetStatusExpired} {
				assert.False(t, status.CanTransitionTo(target), "%s -> %s", status, target)
			}
		}
	})
}

func TestBudget_MarkConverted(t *testing.T) {
	approvedBudget := func(t *testing.T) *Budget {
		b := newDraftBudget(t)
		addItem(t, b, "Printing", 1, 10)
		require.NoError(t, b.Send(time.Now()))
		require.NoError(t, b.Approve(time.Now()))
		return b
	}

	t.Run("records client and project back-references", func(t *testing.T) {
		b := approvedBudget(t)
		clientID := uuid.New()
		projectID := uuid.New()

		require.NoError(t, b.MarkConverted(clientID, projectID))

		assert.True(t, b.IsConverted())
		require.NotNil(t, b.ClientID)
		assert.Equal(t, clientID, *b.ClientID)
		assert.Equal(t, projectID, *b.ConvertedProjectID)
	})

	t.Run("fails on a second conversion", func(t *testing.T) {
		b := approvedBudget(t)
		require.NoError(t, b.MarkConverted(uuid.New(), uuid.New()))

		assert.Error(t, b.MarkConverted(uuid.New(), uuid.New()))
	})

	t.Run("fails before approval", func(t *testing.T) {
		b := newDraftBudget(t)

		assert.ErrorIs(t, b.MarkConverted(uuid.New(), uuid.New()), shared.ErrInvalidState)
	})
}

func TestBudget_LeadAndClient(t *testing.T) {
	t.Run("lead data normalizes the email", func(t *testing.T) {
		b := newDraftBudget(t)

		require.NoError(t, b.SetLead("  Ana Souza  ", "Ana@Example.COM", "+55 11 99999-0000"))

		assert.Equal(t, "Ana Souza", b.LeadName)
		assert.Equal(t, "ana@example.com", b.LeadEmail)
		assert.True(t, b.HasLeadData())
		assert.False(t, b.HasClient())
	})

	t.Run("rejects empty lead name", func(t *testing.T) {
		b := newDraftBudget(t)

		assert.Error(t, b.SetLead("   ", "a@b.com", ""))
	})

	t.Run("references an existing client", func(t *testing.T) {
		b := newDraftBudget(t)
		clientID := uuid.New()

		require.NoError(t, b.SetClient(clientID))

		assert.True(t, b.HasClient())
		assert.Equal(t, clientID, *b.ClientID)
	})

	t.Run("rejects nil client", func(t *testing.T) {
		b := newDraftBudget(t)

		assert.Error(t, b.SetClient(uuid.Nil))
	})
}
