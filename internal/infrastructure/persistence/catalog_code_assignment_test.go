package persistence

import (
	"context"
	"testing"

	projectapp "github.com/ddmpress/backend/internal/application/project"
	"github.com/ddmpress/backend/internal/domain/partner"
	"github.com/ddmpress/backend/internal/domain/project"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestProjectService(db *gorm.DB) *projectapp.ProjectService {
	return projectapp.NewProjectService(NewGormProjectRepository(db), NewGormTransactionScope(db), zap.NewNop())
}

func seedNumberedClient(t *testing.T, db *gorm.DB, number int64) *partner.Client {
	t.Helper()

	client, err := partner.NewClient("Editora Alvorada")
	require.NoError(t, err)
	require.NoError(t, client.AssignNumber(number))
	client.ClearDomainEvents()
	require.NoError(t, NewGormClientRepository(db).Save(context.Background(), client))
	return client
}

func seedUncodedProject(t *testing.T, db *gorm.DB, clientID uuid.UUID, category project.Category, title string) *project.Project {
	t.Helper()

	p, err := project.NewProject(clientID, uuid.New(), category, title)
	require.NoError(t, err)
	p.ClearDomainEvents()
	require.NoError(t, NewGormProjectRepository(db).Save(context.Background(), p))
	return p
}

func TestEnsureCatalogCode_Assignment(t *testing.T) {
	ctx := context.Background()

	t.Run("first project of a category takes the base code", func(t *testing.T) {
		db := setupCascadeTestDB(t)
		client := seedNumberedClient(t, db, 7)
		p := seedUncodedProject(t, db, client.ID, project.CategoryBook, "Poetry Anthology")
		service := newTestProjectService(db)

		response, err := service.EnsureCatalogCode(ctx, p.ID)

		require.NoError(t, err)
		require.NotNil(t, response.CatalogCode)
		assert.Equal(t, "DDML0007", *response.CatalogCode)
	})

	t.Run("uncoded projects get distinct codes in assignment order", func(t *testing.T) {
		// Two uncoded projects in the same category, coded in reverse
		// creation order. The work index counts already-coded projects,
		// so the first assignment takes the base code and the second
		// takes the next suffix regardless of creation order.
		db := setupCascadeTestDB(t)
		client := seedNumberedClient(t, db, 7)
		older := seedUncodedProject(t, db, client.ID, project.CategoryBook, "Essay Collection")
		newer := seedUncodedProject(t, db, client.ID, project.CategoryBook, "Short Stories")
		service := newTestProjectService(db)

		newerResp, err := service.EnsureCatalogCode(ctx, newer.ID)
		require.NoError(t, err)
		require.NotNil(t, newerResp.CatalogCode)
		assert.Equal(t, "DDML0007", *newerResp.CatalogCode)

		olderResp, err := service.EnsureCatalogCode(ctx, older.ID)
		require.NoError(t, err)
		require.NotNil(t, olderResp.CatalogCode)
		assert.Equal(t, "DDML0007.1", *olderResp.CatalogCode)
	})

	t.Run("codes in other categories do not consume the index", func(t *testing.T) {
		db := setupCascadeTestDB(t)
		client := seedNumberedClient(t, db, 7)
		magazine := seedUncodedProject(t, db, client.ID, project.CategoryMagazine, "Quarterly Review")
		book := seedUncodedProject(t, db, client.ID, project.CategoryBook, "Poetry Anthology")
		service := newTestProjectService(db)

		magazineResp, err := service.EnsureCatalogCode(ctx, magazine.ID)
		require.NoError(t, err)
		assert.Equal(t, "DDMR0007", *magazineResp.CatalogCode)

		bookResp, err := service.EnsureCatalogCode(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "DDML0007", *bookResp.CatalogCode)
	})

	t.Run("an already coded project returns unchanged", func(t *testing.T) {
		db := setupCascadeTestDB(t)
		client := seedNumberedClient(t, db, 7)
		p := seedUncodedProject(t, db, client.ID, project.CategoryBook, "Poetry Anthology")
		service := newTestProjectService(db)

		first, err := service.EnsureCatalogCode(ctx, p.ID)
		require.NoError(t, err)
		second, err := service.EnsureCatalogCode(ctx, p.ID)
		require.NoError(t, err)

		assert.Equal(t, *first.CatalogCode, *second.CatalogCode)

		count, err := NewGormProjectRepository(db).CountCodedByClientAndCategory(ctx, client.ID, project.CategoryBook)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
