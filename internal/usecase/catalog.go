package usecase

import (
	"sort"
	"strings"

	"github.com/skinmatch/backend/internal/domain"
)

// Catalog is the immutable product list, normalized once at load time
type Catalog struct {
	products []domain.Product
}

// NewCatalog normalizes every row's ingredient text and keeps source order
func NewCatalog(rows []domain.CatalogRow) *Catalog {
	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, domain.Product{
			Name:        row.Name,
			Brand:       row.Brand,
			Type:        row.Type,
			Ingredients: NormalizeIngredients(row.RawIngredients),
		})
	}
	return &Catalog{products: products}
}

// Products returns the catalog entries. Callers must not modify them.
func (c *Catalog) Products() []domain.Product {
	return c.products
}

// Len returns the number of products
func (c *Catalog) Len() int {
	return len(c.products)
}

// Types returns the distinct non-empty product types, sorted
func (c *Catalog) Types() []string {
	seen := make(map[string]bool)
	types := make([]string, 0)
	for _, p := range c.products {
		t := strings.TrimSpace(p.Type)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
