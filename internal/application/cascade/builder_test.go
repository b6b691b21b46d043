package cascade

import (
	"context"
	"testing"
	"time"

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
)

// memRepos is an in-memory TransactionalRepositories for cascade tests.
// budgetLockConflicts makes the next N budget SaveWithLock calls fail with a
// concurrency conflict.
type memRepos struct {
	budgets  map[uuid.UUID]*budget.Budget
	clients  map[uuid.UUID]*partner.Client
	projects map[uuid.UUID]*project.Project
	orders   map[uuid.UUID]*finance.Order
	invoices map[uuid.UUID]*finance.Invoice
	counters map[string]*sequence.Counter

	budgetLockConflicts int
}

func newMemRepos() *memRepos {
	return &memRepos{
		budgets:  make(map[uuid.UUID]*budget.Budget),
		clients:  make(map[uuid.UUID]*partner.Client),
		projects: make(map[uuid.UUID]*project.Project),
		orders:   make(map[uuid.UUID]*finance.Order),
		invoices: make(map[uuid.UUID]*finance.Invoice),
		counters: make(map[string]*sequence.Counter),
	}
}

func (r *memRepos) Clients() partner.ClientRepository   { return &memClientRepo{r} }
func (r *memRepos) Projects() project.ProjectRepository { return &memProjectRepo{r} }
func (r *memRepos) Budgets() budget.BudgetRepository    { return &memBudgetRepo{r} }
func (r *memRepos) Orders() finance.OrderRepository     { return &memOrderRepo{r} }
func (r *memRepos) Invoices() finance.InvoiceRepository { return &memInvoiceRepo{r} }
func (r *memRepos) Counters() sequence.CounterRepository {
	return &memCounterRepo{r}
}

type memClientRepo struct{ s *memRepos }

func (r *memClientRepo) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	client, ok := r.s.clients[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *client
	return &copied, nil
}

func (r *memClientRepo) FindByNumber(ctx context.Context, number int64) (*partner.Client, error) {
	for _, client := range r.s.clients {
		if client.Number != nil && *client.Number == number {
			copied := *client
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memClientRepo) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Client, error) {
	return nil, nil
}

func (r *memClientRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(r.s.clients)), nil
}

func (r *memClientRepo) Save(ctx context.Context, client *partner.Client) error {
	copied := *client
	r.s.clients[client.ID] = &copied
	return nil
}

func (r *memClientRepo) SaveWithLock(ctx context.Context, client *partner.Client) error {
	return r.Save(ctx, client)
}

func (r *memClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.s.clients, id)
	return nil
}

type memProjectRepo struct{ s *memRepos }

func (r *memProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	p, ok := r.s.projects[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memProjectRepo) FindByBudgetID(ctx context.Context, budgetID uuid.UUID) (*project.Project, error) {
	for _, p := range r.s.projects {
		if p.BudgetID == budgetID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProjectRepo) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]project.Project, error) {
	return nil, nil
}

func (r *memProjectRepo) FindAll(ctx context.Context, filter shared.Filter) ([]project.Project, error) {
	return nil, nil
}

func (r *memProjectRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(r.s.projects)), nil
}

func (r *memProjectRepo) CountCodedByClientAndCategory(ctx context.Context, clientID uuid.UUID, category project.Category) (int64, error) {
	var count int64
	for _, p := range r.s.projects {
		if p.ClientID == clientID && p.Category == category && p.CatalogCode != nil {
			count++
		}
	}
	return count, nil
}

func (r *memProjectRepo) ExistsByBudgetID(ctx context.Context, budgetID uuid.UUID) (bool, error) {
	for _, p := range r.s.projects {
		if p.BudgetID == budgetID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memProjectRepo) Save(ctx context.Context, p *project.Project) error {
	copied := *p
	r.s.projects[p.ID] = &copied
	return nil
}

func (r *memProjectRepo) SaveWithLock(ctx context.Context, p *project.Project) error {
	return r.Save(ctx, p)
}

func (r *memProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.s.projects, id)
	return nil
}

type memBudgetRepo struct{ s *memRepos }

func (r *memBudgetRepo) FindByID(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	b, ok := r.s.budgets[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *b
	copied.Items = append([]budget.BudgetItem(nil), b.Items...)
	return &copied, nil
}

func (r *memBudgetRepo) FindByStatus(ctx context.Context, status budget.BudgetStatus, filter shared.Filter) ([]budget.Budget, error) {
	return nil, nil
}

func (r *memBudgetRepo) FindAll(ctx context.Context, filter shared.Filter) ([]budget.Budget, error) {
	return nil, nil
}

func (r *memBudgetRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(r.s.budgets)), nil
}

func (r *memBudgetRepo) Save(ctx context.Context, b *budget.Budget) error {
	copied := *b
	copied.Items = append([]budget.BudgetItem(nil), b.Items...)
	r.s.budgets[b.ID] = &copied
	return nil
}

func (r *memBudgetRepo) SaveWithLock(ctx context.Context, b *budget.Budget) error {
	if r.s.budgetLockConflicts > 0 {
		r.s.budgetLockConflicts--
		return shared.ErrConcurrencyConflict
	}
	return r.Save(ctx, b)
}

func (r *memBudgetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.s.budgets, id)
	return nil
}

type memOrderRepo struct{ s *memRepos }

func (r *memOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*finance.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *memOrderRepo) FindByBudgetID(ctx context.Context, budgetID uuid.UUID) (*finance.Order, error) {
	for _, o := range r.s.orders {
		if o.BudgetID == budgetID {
			copied := *o
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]finance.Order, error) {
	return nil, nil
}

func (r *memOrderRepo) FindAll(ctx context.Context, filter shared.Filter) ([]finance.Order, error) {
	return nil, nil
}

func (r *memOrderRepo) ExistsByBudgetID(ctx context.Context, budgetID uuid.UUID) (bool, error) {
	for _, o := range r.s.orders {
		if o.BudgetID == budgetID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memOrderRepo) Save(ctx context.Context, o *finance.Order) error {
	copied := *o
	r.s.orders[o.ID] = &copied
	return nil
}

func (r *memOrderRepo) SaveWithLock(ctx context.Context, o *finance.Order) error {
	return r.Save(ctx, o)
}

type memInvoiceRepo struct{ s *memRepos }

func (r *memInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*finance.Invoice, error) {
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *inv
	return &copied, nil
}

func (r *memInvoiceRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]finance.Invoice, error) {
	var result []finance.Invoice
	for _, inv := range r.s.invoices {
		if inv.OrderID == orderID {
			result = append(result, *inv)
		}
	}
	return result, nil
}

func (r *memInvoiceRepo) FindByProject(ctx context.Context, projectID uuid.UUID) ([]finance.Invoice, error) {
	var result []finance.Invoice
	for _, inv := range r.s.invoices {
		if inv.ProjectID == projectID {
			result = append(result, *inv)
		}
	}
	return result, nil
}

func (r *memInvoiceRepo) FindPending(ctx context.Context, filter shared.Filter) ([]finance.Invoice, error) {
	return nil, nil
}

func (r *memInvoiceRepo) Save(ctx context.Context, inv *finance.Invoice) error {
	copied := *inv
	r.s.invoices[inv.ID] = &copied
	return nil
}

func (r *memInvoiceRepo) SaveWithLock(ctx context.Context, inv *finance.Invoice) error {
	return r.Save(ctx, inv)
}

func (r *memInvoiceRepo) SaveBatch(ctx context.Context, invoices []*finance.Invoice) error {
	for _, inv := range invoices {
		if err := r.Save(ctx, inv); err != nil {
			return err
		}
	}
	return nil
}

type memCounterRepo struct{ s *memRepos }

func (r *memCounterRepo) Find(ctx context.Context, name string) (*sequence.Counter, error) {
	counter, ok := r.s.counters[name]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *counter
	return &copied, nil
}

func (r *memCounterRepo) Create(ctx context.Context, counter *sequence.Counter) error {
	if _, ok := r.s.counters[counter.Name]; ok {
		return shared.ErrConcurrencyConflict
	}
	copied := *counter
	r.s.counters[counter.Name] = &copied
	return nil
}

func (r *memCounterRepo) CompareAndSwap(ctx context.Context, name string, expected, next int64) error {
	counter, ok := r.s.counters[name]
	if !ok || counter.LastValue != expected {
		return shared.ErrConcurrencyConflict
	}
	counter.LastValue = next
	return nil
}

// Test budget builders

func sentBudgetWithLead(t *testing.T, installments int) *budget.Budget {
	t.Helper()
	b, err := budget.NewBudget(project.CategoryBook, "Collected Poems")
	require.NoError(t, err)
	require.NoError(t, b.SetLead("Ana Souza", "ana@example.com", "+55 11 99999-0000"))
	_, err = b.AddItem("Printing", decimal.NewFromInt(500), valueobject.NewMoneyBRLFromFloat(2))
	require.NoError(t, err)
	if installments > 1 {
		require.NoError(t, b.SetPaymentPlan(installments, 15))
	}
	require.NoError(t, b.Send(time.Now()))
	b.ClearDomainEvents()
	return b
}

func approve(t *testing.T, b *budget.Budget) *budget.Budget {
	t.Helper()
	require.NoError(t, b.Approve(time.Now()))
	b.ClearDomainEvents()
	return b
}

func TestBuilder_Build(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 20, 10, 0, 0, 0, time.UTC)

	t.Run("rejects a budget that is not approved", func(t *testing.T) {
		repos := newMemRepos()
		b := sentBudgetWithLead(t, 1)

		_, err := NewBuilder(10).Build(ctx, repos, b, now)

		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("converted budget yields a no-op write set", func(t *testing.T) {
		repos := newMemRepos()
		b := approve(t, sentBudgetWithLead(t, 1))
		require.NoError(t, b.MarkConverted(uuid.New(), uuid.New()))

		ws, err := NewBuilder(10).Build(ctx, repos, b, now)

		require.NoError(t, err)
		assert.True(t, ws.IsNoop())
	})

	t.Run("existing project for the budget yields a no-op", func(t *testing.T) {
		repos := newMemRepos()
		b := approve(t, sentBudgetWithLead(t, 1))
		p, err := project.NewProject(uuid.New(), b.ID, project.CategoryBook, "Collected Poems")
		require.NoError(t, err)
		require.NoError(t, repos.Projects().Save(ctx, p))

		ws, err := NewBuilder(10).Build(ctx, repos, b, now)

		require.NoError(t, err)
		assert.True(t, ws.IsNoop())
	})

	t.Run("existing order for the budget yields a no-op", func(t *testing.T) {
		repos := newMemRepos()
		b := approve(t, sentBudgetWithLead(t, 1))
		o, err := finance.NewOrder(uuid.New(), uuid.New(), b.ID, valueobject.NewMoneyBRLFromFloat(100), 1)
		require.NoError(t, err)
		require.NoError(t, repos.Orders().Save(ctx, o))

		ws, err := NewBuilder(10).Build(ctx, repos, b, now)

		require.NoError(t, err)
		assert.True(t, ws.IsNoop())
	})

	t.Run("stages a new client from lead data", func(t *testing.T) {
		repos := newMemRepos()
		b := approve(t, sentBudgetWithLead(t, 3))

		ws, err := NewBuilder(10).Build(ctx, repos, b, now)

		require.NoError(t, err)
		require.NotNil(t, ws.NewClient)
		assert.Equal(t, "Ana Souza", ws.NewClient.Name)
		assert.Equal(t, "ana@example.com", ws.NewClient.Email)
		assert.Equal(t, "+55 11 99999-0000", ws.NewClient.Phone)
		assert.False(t, ws.NewClient.HasNumber())
		assert.Equal(t, ws.NewClient.ID, ws.ClientID)
	})

	t.Run("resolves an existing client without staging one", func(t *testing.T) {
		repos := newMemRepos()
		client, err := partner.NewClient("Editora Horizonte")
		require.NoError(t, err)
		require.NoError(t, repos.Clients().Save(ctx, client))

		b := sentBudgetWithLead(t, 1)
		require.NoError(t, b.SetClient(client.ID))
		approve(t, b)

		ws, err := NewBuilder(10).Build(ctx, repos, b, now)

		require.NoError(t, err)
		assert.Nil(t, ws.NewClient)
		assert.Equal(t, client.ID, ws.ClientID)
	})

	t.Run("fails when neither client nor lead data is present", func(t *testing.T) {
		repos := newMemRepos()
		b, err := budget.NewBudget(project.CategoryBook, "Title")
		require.NoError(t, err)
		_, err = b.AddItem("Printing", decimal.NewFromInt(1), valueobject.NewMoneyBRLFromFloat(10))
		require.NoError(t, err)
		require.NoError(t, b.Send(time.Now()))
		approve(t, b)

		_, err = NewBuilder(10).Build(ctx, repos, b, now)

		assert.ErrorIs(t, err, shared.ErrIncompleteSourceData)
	})

	t.Run("stages project, order and one invoice per installment", func(t *testing.T) {
		repos := newMemRepos()
		b := approve(t, sentBudgetWithLead(t, 3))

		ws, err := NewBuilder(10).Build(ctx, repos, b, now)

		require.NoError(t, err)
		require.NotNil(t, ws.Project)
		assert.Equal(t, b.ID, ws.Project.BudgetID)
		assert.Equal(t, project.CategoryBook, ws.Project.Category)
		assert.Equal(t, "Collected Poems", ws.Project.Title)
		assert.Nil(t, ws.Project.CatalogCode)

		require.NotNil(t, ws.Order)
		assert.Equal(t, b.ID, ws.Order.BudgetID)
		assert.Equal(t, ws.Project.ID, ws.Order.ProjectID)
		assert.Equal(t, 3, ws.Order.TotalInstallments)
		assert.True(t, ws.Order.Total().Equals(b.Total()))

		require.Len(t, ws.Invoices, 3)
		sum := valueobject.ZeroBRL()
		for i, inv := range ws.Invoices {
			assert.Equal(t, i+1, inv.InstallmentNumber)
			assert.Equal(t, 3, inv.TotalInstallments)
			assert.Equal(t, ws.Order.ID, inv.OrderID)
			assert.Equal(t, finance.InvoiceStatusPending, inv.Status)
			assert.Nil(t, inv.CatalogCode)
			sum = sum.MustAdd(inv.ValueMoney())
		}
		assert.True(t, sum.Equals(b.Total()))
	})

	t.Run("stages the converted marker on the budget", func(t *testing.T) {
		repos := newMemRepos()
		b := approve(t, sentBudgetWithLead(t, 1))

		ws, err := NewBuilder(10).Build(ctx, repos, b, now)

		require.NoError(t, err)
		assert.True(t, ws.Budget.IsConverted())
		assert.Equal(t, ws.Project.ID, *ws.Budget.ConvertedProjectID)
		assert.Equal(t, ws.ClientID, *ws.Budget.ClientID)
	})

	t.Run("uses the configured due day when the plan has none", func(t *testing.T) {
		repos := newMemRepos()
		b, err := budget.NewBudget(project.CategoryBook, "Title")
		require.NoError(t, err)
		require.NoError(t, b.SetLead("Ana", "ana@example.com", ""))
		_, err = b.AddItem("Printing", decimal.NewFromInt(1), valueobject.NewMoneyBRLFromFloat(300))
		require.NoError(t, err)
		require.NoError(t, b.SetPaymentPlan(2, 0))
		require.NoError(t, b.Send(time.Now()))
		approve(t, b)

		ws, err := NewBuilder(7).Build(ctx, repos, b, now)

		require.NoError(t, err)
		require.Len(t, ws.Invoices, 2)
		assert.Equal(t, 7, ws.Invoices[0].DueDate.Day())
	})
}

func TestNewBuilder(t *testing.T) {
	t.Run("out-of-range due day falls back to the default", func(t *testing.T) {
		assert.Equal(t, finance.DefaultDueDay, NewBuilder(0).DueDay)
		assert.Equal(t, finance.DefaultDueDay, NewBuilder(29).DueDay)
	})

	t.Run("valid due day is kept", func(t *testing.T) {
		assert.Equal(t, 15, NewBuilder(15).DueDay)
	})
}
