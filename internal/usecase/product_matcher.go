package usecase

import (
	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/skinmatch/backend/internal/domain"
)

// Matching strategies
const (
	StrategyScan  = "scan"
	StrategyIndex = "index"
)

// Matches decides inclusion of one product. It is true when at least one required
// keyword is a substring of some ingredient entry and no forbidden keyword is a
// substring of any entry. An empty required list never matches.
func Matches(productKeywords, required, forbidden []string) bool {
	if !containsAny(productKeywords, required) {
		return false
	}
	return !containsAny(productKeywords, forbidden)
}

// containsAny reports whether any keyword is a substring of any entry
func containsAny(entries, keywords []string) bool {
	for _, kw := range keywords {
		for _, entry := range entries {
			if containsKeyword(entry, kw) {
				return true
			}
		}
	}
	return false
}

// ProductMatcher selects the catalog products satisfying required/forbidden keyword sets,
// in catalog order
type ProductMatcher interface {
	Match(required, forbidden []string) []domain.Product
}

// NewProductMatcher returns the matcher for a strategy name, defaulting to scan
func NewProductMatcher(strategy string, catalog *Catalog, registry *KeywordRegistry) ProductMatcher {
	if strategy == StrategyIndex {
		return NewIndexedMatcher(catalog, registry)
	}
	return NewScanMatcher(catalog)
}

// ScanMatcher applies Matches to every product on each call
type ScanMatcher struct {
	catalog *Catalog
}

// NewScanMatcher creates a scanning matcher over a catalog
func NewScanMatcher(catalog *Catalog) *ScanMatcher {
	return &ScanMatcher{catalog: catalog}
}

// Match implements ProductMatcher
func (m *ScanMatcher) Match(required, forbidden []string) []domain.Product {
	matched := make([]domain.Product, 0)
	if len(required) == 0 {
		return matched
	}
	for _, p := range m.catalog.Products() {
		if Matches(p.Ingredients, required, forbidden) {
			matched = append(matched, p)
		}
	}
	return matched
}

// IndexedMatcher precomputes, for every product, which registry keywords occur in
// its ingredient entries. Requests then resolve keywords by set lookup instead of
// substring scans. Keywords outside the registry fall back to a scan, so results
// are always those of Matches.
type IndexedMatcher struct {
	catalog  *Catalog
	universe map[string]bool
	hits     []map[string]bool
}

// NewIndexedMatcher builds an Aho-Corasick automaton over the registry's keywords
// and runs every ingredient entry through it once
func NewIndexedMatcher(catalog *Catalog, registry *KeywordRegistry) *IndexedMatcher {
	keywords := registry.AllKeywords()
	universe := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		universe[kw] = true
	}

	products := catalog.Products()
	hits := make([]map[string]bool, len(products))

	var automaton *ahocorasick.Matcher
	if len(keywords) > 0 {
		automaton = ahocorasick.NewStringMatcher(keywords)
	}

	for i, p := range products {
		found := make(map[string]bool)
		if automaton != nil {
			// Entries are matched one at a time so no keyword can span two entries
			for _, entry := range p.Ingredients {
				for _, idx := range automaton.Match([]byte(entry)) {
					found[keywords[idx]] = true
				}
			}
		}
		hits[i] = found
	}

	return &IndexedMatcher{
		catalog:  catalog,
		universe: universe,
		hits:     hits,
	}
}

// Match implements ProductMatcher
func (m *IndexedMatcher) Match(required, forbidden []string) []domain.Product {
	matched := make([]domain.Product, 0)
	if len(required) == 0 {
		return matched
	}
	for i, p := range m.catalog.Products() {
		if m.hasAny(i, p, required) && !m.hasAny(i, p, forbidden) {
			matched = append(matched, p)
		}
	}
	return matched
}

func (m *IndexedMatcher) hasAny(i int, p domain.Product, keywords []string) bool {
	for _, kw := range keywords {
		if m.universe[kw] {
			if m.hits[i][kw] {
				return true
			}
			continue
		}
		for _, entry := range p.Ingredients {
			if containsKeyword(entry, kw) {
				return true
			}
		}
	}
	return false
}
