package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/ddmpress/backend/internal/application/cascade"
	"github.com/ddmpress/backend/internal/domain/budget"
	"github.com/ddmpress/backend/internal/domain/finance"
	"github.com/ddmpress/backend/internal/domain/partner"
	"github.com/ddmpress/backend/internal/domain/project"
	"github.com/ddmpress/backend/internal/domain/sequence"
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/ddmpress/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCascadeTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&partner.Client{},
		&project.Project{},
		&budget.Budget{},
		&budget.BudgetItem{},
		&finance.Order{},
		&finance.Invoice{},
		&counterRecord{},
		&shared.OutboxEntry{},
	)
	require.NoError(t, err)

	return db
}

func newTestCascadeCommitter(t *testing.T, db *gorm.DB) *cascade.Committer {
	scope := NewGormTransactionScope(db)
	builder := cascade.NewBuilder(finance.DefaultDueDay)
	config := cascade.CommitterConfig{MaxAttempts: 3, BaseBackoff: time.Millisecond}
	return cascade.NewCommitter(scope, builder, config, zap.NewNop())
}

// seedApprovedLeadBudget stores a sent-and-approved budget carrying inline
// lead data and returns it reloaded from the database.
func seedApprovedLeadBudget(t *testing.T, db *gorm.DB, installments int) *budget.Budget {
	t.Helper()

	b, err := budget.NewBudget(project.CategoryBook, "Poetry Anthology")
	require.NoError(t, err)
	require.NoError(t, b.SetLead("Ana Souza", "ana@example.com", "+55 11 99999-0000"))

	_, err = b.AddItem("Offset printing", decimal.NewFromInt(500), valueobject.NewMoneyBRLFromFloat(2))
	require.NoError(t, err)

	if installments > 1 {
		require.NoError(t, b.SetPaymentPlan(installments, 15))
	}

	now := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
	require.NoError(t, b.Send(now))
	require.NoError(t, b.Approve(now.Add(time.Hour)))
	b.ClearDomainEvents()

	repo := NewGormBudgetRepository(db)
	require.NoError(t, repo.Save(context.Background(), b))

	saved, err := repo.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	return saved
}

func TestCascadeCommit_EndToEnd(t *testing.T) {
	ctx := context.Background()

	t.Run("approval of a lead budget creates the full chain", func(t *testing.T) {
		db := setupCascadeTestDB(t)
		b := seedApprovedLeadBudget(t, db, 3)
		committer := newTestCascadeCommitter(t, db)

		result, err := committer.Commit(ctx, b.ID)

		require.NoError(t, err)
		assert.False(t, result.AlreadyApplied)
		assert.Equal(t, 1, result.Attempts)
		assert.True(t, result.ClientCreated)
		assert.Equal(t, int64(1), result.ClientNumber)

		client, err := NewGormClientRepository(db).FindByID(ctx, result.ClientID)
		require.NoError(t, err)
		require.NotNil(t, client.Number)
		assert.Equal(t, int64(1), *client.Number)
		assert.Equal(t, "Ana Souza", client.Name)

		proj, err := NewGormProjectRepository(db).FindByBudgetID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, result.ProjectID, proj.ID)
		assert.Equal(t, result.ClientID, proj.ClientID)
		assert.Nil(t, proj.CatalogCode)

		order, err := NewGormOrderRepository(db).FindByBudgetID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, result.OrderID, order.ID)
		assert.True(t, decimal.NewFromInt(1000).Equal(order.TotalAmount))

		invoices, err := NewGormInvoiceRepository(db).FindByOrder(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, invoices, 3)
		sum := decimal.Zero
		for _, inv := range invoices {
			assert.Equal(t, finance.InvoiceStatusPending, inv.Status)
			sum = sum.Add(inv.Value)
		}
		assert.True(t, decimal.NewFromInt(1000).Equal(sum))

		converted, err := NewGormBudgetRepository(db).FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, converted.IsConverted())
		require.NotNil(t, converted.ConvertedProjectID)
		assert.Equal(t, result.ProjectID, *converted.ConvertedProjectID)

		counter, err := NewGormCounterRepository(db).Find(ctx, sequence.CounterClients)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counter.LastValue)
	})

	t.Run("redelivery is a no-op", func(t *testing.T) {
		db := setupCascadeTestDB(t)
		b := seedApprovedLeadBudget(t, db, 2)
		committer := newTestCascadeCommitter(t, db)

		first, err := committer.Commit(ctx, b.ID)
		require.NoError(t, err)

		second, err := committer.Commit(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, second.AlreadyApplied)
		assert.Equal(t, first.ClientID, second.ClientID)
		assert.Equal(t, first.ProjectID, second.ProjectID)

		var clientCount, invoiceCount int64
		require.NoError(t, db.Model(&partner.Client{}).Count(&clientCount).Error)
		require.NoError(t, db.Model(&finance.Invoice{}).Count(&invoiceCount).Error)
		assert.Equal(t, int64(1), clientCount)
		assert.Equal(t, int64(2), invoiceCount)
	})

	t.Run("each converted lead gets the next client number", func(t *testing.T) {
		db := setupCascadeTestDB(t)
		first := seedApprovedLeadBudget(t, db, 1)
		second := seedApprovedLeadBudget(t, db, 1)
		committer := newTestCascadeCommitter(t, db)

		firstResult, err := committer.Commit(ctx, first.ID)
		require.NoError(t, err)
		secondResult, err := committer.Commit(ctx, second.ID)
		require.NoError(t, err)

		assert.Equal(t, int64(1), firstResult.ClientNumber)
		assert.Equal(t, int64(2), secondResult.ClientNumber)

		counter, err := NewGormCounterRepository(db).Find(ctx, sequence.CounterClients)
		require.NoError(t, err)
		assert.Equal(t, int64(2), counter.LastValue)
	})

	t.Run("budget of an existing client reuses it", func(t *testing.T) {
		db := setupCascadeTestDB(t)

		client, err := partner.NewClient("Editora Horizonte")
		require.NoError(t, err)
		require.NoError(t, client.AssignNumber(42))
		client.ClearDomainEvents()
		require.NoError(t, NewGormClientRepository(db).Save(context.Background(), client))

		b, err := budget.NewBudget(project.CategoryMagazine, "Quarterly Review")
		require.NoError(t, err)
		require.NoError(t, b.SetClient(client.ID))
		_, err = b.AddItem("Layout", decimal.NewFromInt(1), valueobject.NewMoneyBRLFromFloat(300))
		require.NoError(t, err)
		now := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
		require.NoError(t, b.Send(now))
		require.NoError(t, b.Approve(now.Add(time.Hour)))
		b.ClearDomainEvents()
		require.NoError(t, NewGormBudgetRepository(db).Save(context.Background(), b))

		committer := newTestCascadeCommitter(t, db)
		result, err := committer.Commit(ctx, b.ID)

		require.NoError(t, err)
		assert.False(t, result.ClientCreated)
		assert.Equal(t, client.ID, result.ClientID)

		_, err = NewGormCounterRepository(db).Find(ctx, sequence.CounterClients)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("missing budget fails without retries", func(t *testing.T) {
		db := setupCascadeTestDB(t)
		committer := newTestCascadeCommitter(t, db)

		_, err := committer.Commit(ctx, uuid.New())

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
