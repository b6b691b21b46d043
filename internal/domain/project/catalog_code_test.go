package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSynthesizeCatalogCode(t *testing.T) {
	t.Run("first work in a category gets the bare base code", func(t *testing.T) {
		code := SynthesizeCatalogCode(CategoryBook, 7, 0)
		assert.Equal(t, "DDML0007", code)
	})

	t.Run("later works get a dotted work index", func(t *testing.T) {
		assert.Equal(t, "DDML0007.1", SynthesizeCatalogCode(CategoryBook, 7, 1))
		assert.Equal(t, "DDML0007.2", SynthesizeCatalogCode(CategoryBook, 7, 2))
	})

	t.Run("pads the client number to four digits", func(t *testing.T) {
		assert.Equal(t, "DDMR0001", SynthesizeCatalogCode(CategoryMagazine, 1, 0))
		assert.Equal(t, "DDMC0123", SynthesizeCatalogCode(CategoryCatalog, 123, 0))
	})

	t.Run("does not truncate numbers above four digits", func(t *testing.T) {
		assert.Equal(t, "DDMA12345", SynthesizeCatalogCode(CategoryBooklet, 12345, 0))
	})

	t.Run("negative prior count behaves like zero", func(t *testing.T) {
		assert.Equal(t, "DDML0007", SynthesizeCatalogCode(CategoryBook, 7, -1))
	})

	t.Run("embeds each category letter", func(t *testing.T) {
		assert.Equal(t, "DDML0002", SynthesizeCatalogCode(CategoryBook, 2, 0))
		assert.Equal(t, "DDMR0002", SynthesizeCatalogCode(CategoryMagazine, 2, 0))
		assert.Equal(t, "DDMC0002", SynthesizeCatalogCode(CategoryCatalog, 2, 0))
		assert.Equal(t, "DDMA0002", SynthesizeCatalogCode(CategoryBooklet, 2, 0))
	})
}

func TestCategory_IsValid(t *testing.T) {
	t.Run("accepts known categories", func(t *testing.T) {
		for _, c := range []Category{CategoryBook, CategoryMagazine, CategoryCatalog, CategoryBooklet} {
			assert.True(t, c.IsValid(), string(c))
		}
	})

	t.Run("rejects unknown categories", func(t *testing.T) {
		assert.False(t, Category("X").IsValid())
		assert.False(t, Category("").IsValid())
		assert.False(t, Category("l").IsValid())
	})
}
