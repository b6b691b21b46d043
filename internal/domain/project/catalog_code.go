package project

import "fmt"

// Category represents the editorial category of a project. The single-letter
// code is embedded in catalog codes.
type Category string

const (
	CategoryBook     Category = "L" // livro
	CategoryMagazine Category = "R" // revista
	CategoryCatalog  Category = "C" // catálogo
	CategoryBooklet  Category = "A" // apostila
)

// IsValid checks if the category is known
func (c Category) IsValid() bool {
	switch c {
	case CategoryBook, CategoryMagazine, CategoryCatalog, CategoryBooklet:
		return true
	}
	return false
}

// String returns the category code
func (c Category) String() string {
	return string(c)
}

// CatalogCodePrefix is the house prefix of every catalog code
const CatalogCodePrefix = "DDM"

// SynthesizeCatalogCode derives the human-readable project identifier from
// the category, the client's sequential number and the count of the client's
// prior projects in the same category.
//
// The first project of a client in a category gets the bare base code
// ("DDML0007"); later ones get a dotted work-index suffix ("DDML0007.1").
// priorCount must come from a read inside the same transaction that assigns
// the code, otherwise two concurrent assignments can race onto one suffix.
func SynthesizeCatalogCode(category Category, clientNumber int64, priorCount int64) string {
	base := fmt.Sprintf("%s%s%04d", CatalogCodePrefix, category, clientNumber)
	if priorCount <= 0 {
		return base
	}
	return fmt.Sprintf("%s.%d", base, priorCount)
}
