package project

import (
	"testing"

	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	clientID := uuid.New()
	budgetID := uuid.New()

	t.Run("creates project in planning", func(t *testing.T) {
		p, err := NewProject(clientID, budgetID, CategoryBook, "Collected Poems")

		require.NoError(t, err)
		assert.Equal(t, clientID, p.ClientID)
		assert.Equal(t, budgetID, p.BudgetID)
		assert.Equal(t, ProjectStatusPlanning, p.Status)
		assert.Nil(t, p.CatalogCode)
		assert.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("empty title falls back to default", func(t *testing.T) {
		p, err := NewProject(clientID, budgetID, CategoryBook, "   ")

		require.NoError(t, err)
		assert.Equal(t, DefaultTitle, p.Title)
	})

	t.Run("fails without a client", func(t *testing.T) {
		p, err := NewProject(uuid.Nil, budgetID, CategoryBook, "Title")

		assert.Error(t, err)
		assert.Nil(t, p)
	})

	t.Run("fails without a budget", func(t *testing.T) {
		p, err := NewProject(clientID, uuid.Nil, CategoryBook, "Title")

		assert.Error(t, err)
		assert.Nil(t, p)
	})

	t.Run("fails with unknown category", func(t *testing.T) {
		p, err := NewProject(clientID, budgetID, Category("Z"), "Title")

		assert.Error(t, err)
		assert.Nil(t, p)
	})
}

func TestProject_AssignCatalogCode(t *testing.T) {
	newProject := func(t *testing.T) *Project {
		p, err := NewProject(uuid.New(), uuid.New(), CategoryBook, "Title")
		require.NoError(t, err)
		p.ClearDomainEvents()
		return p
	}

	t.Run("assigns once and raises an event", func(t *testing.T) {
		p := newProject(t)

		err := p.AssignCatalogCode("DDML0007")

		require.NoError(t, err)
		require.NotNil(t, p.CatalogCode)
		assert.Equal(t, "DDML0007", *p.CatalogCode)
		assert.True(t, p.HasCatalogCode())
		assert.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("second assignment fails", func(t *testing.T) {
		p := newProject(t)
		require.NoError(t, p.AssignCatalogCode("DDML0007"))

		err := p.AssignCatalogCode("DDML0007.1")

		assert.Error(t, err)
		assert.Equal(t, "DDML0007", *p.CatalogCode)
	})

	t.Run("empty code fails", func(t *testing.T) {
		p := newProject(t)

		assert.Error(t, p.AssignCatalogCode(""))
		assert.False(t, p.HasCatalogCode())
	})
}

func TestProject_StatusTransitions(t *testing.T) {
	newProject := func(t *testing.T) *Project {
		p, err := NewProject(uuid.New(), uuid.New(), CategoryMagazine, "Quarterly")
		require.NoError(t, err)
		return p
	}

	t.Run("planning to production to published", func(t *testing.T) {
		p := newProject(t)

		require.NoError(t, p.StartProduction())
		assert.Equal(t, ProjectStatusInProduction, p.Status)

		require.NoError(t, p.Publish())
		assert.Equal(t, ProjectStatusPublished, p.Status)
	})

	t.Run("cannot publish from planning", func(t *testing.T) {
		p := newProject(t)

		err := p.Publish()

		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("cannot start production twice", func(t *testing.T) {
		p := newProject(t)
		require.NoError(t, p.StartProduction())

		assert.ErrorIs(t, p.StartProduction(), shared.ErrInvalidState)
	})

	t.Run("archive from any non-archived state", func(t *testing.T) {
		p := newProject(t)
		require.NoError(t, p.Archive())
		assert.Equal(t, ProjectStatusArchived, p.Status)

		assert.ErrorIs(t, p.Archive(), shared.ErrInvalidState)
	})
}
