package usecase

import (
	"fmt"
	"strings"

	"github.com/skinmatch/backend/internal/domain"
)

// DefaultCategories is the built-in ingredient group table, in the classifier's
// declared output order. Keywords are substrings matched against normalized
// ingredient entries.
var DefaultCategories = []domain.Category{
	{Name: "hyaluronic", Keywords: []string{"hyaluronic acid", "sodium hyaluronate"}},
	{Name: "niacinamide", Keywords: []string{"niacinamide"}},
	{Name: "peptide", Keywords: []string{"peptide", "palmitoyl tripeptide", "acetyl hexapeptide"}},
	{Name: "vitamin_c", Keywords: []string{"ascorbic acid", "ascorbyl tetraisopalmitate", "magnesium ascorbyl phosphate"}},
	{Name: "ceramide", Keywords: []string{"ceramide"}},
	{Name: "retinol", Keywords: []string{"retinol", "retinyl palmitate"}},
	{Name: "aha_bha", Keywords: []string{"glycolic acid", "salicylic acid", "lactic acid", "citric acid"}},
	{Name: "antioxidant", Keywords: []string{"tocopherol", "vitamin e", "ascorbyl palmitate", "green tea extract"}},
	{Name: "mineral_spf", Keywords: []string{"titanium dioxide", "zinc oxide"}},
	{Name: "growth_factor", Keywords: []string{"growth factor"}},
	{Name: "probiotic", Keywords: []string{"lactobacillus", "bifida ferment"}},
	{Name: "hydrating", Keywords: []string{"glycerin", "propandiol", "butylene glycol"}},
	{Name: "emollient", Keywords: []string{"caprylyl glycol", "glyceryl stearate"}},
	{Name: "preservative", Keywords: []string{"phenoxyethanol", "methylparaben", "potassium sorbate"}},
	{Name: "texture_stabilizer", Keywords: []string{"xanthan gum", "carbomer"}},
	{Name: "fragrance", Keywords: []string{"parfum", "fragrance", "linalool", "limonene"}},
	{Name: "solvent", Keywords: []string{"propylene glycol", "ethanol"}},
	{Name: "ph_adjuster", Keywords: []string{"triethanolamine", "ammonium hydroxide"}},
	{Name: "colorant", Keywords: []string{"ci 75810", "ci 19140"}},
	{Name: "skin_soothing", Keywords: []string{"aloe barbadensis", "panthenol", "chamomilla"}},
	{Name: "2_hexanediol", Keywords: []string{"1,2-hexanediol"}},
	{Name: "glyceryl_caprylate", Keywords: []string{"glyceryl caprylate"}},
	{Name: "hydroxyacetophenone", Keywords: []string{"hydroxyacetophenone"}},
	{Name: "titanium_dioxide", Keywords: []string{"titanium dioxide"}},
	{Name: "peg_100_stearate", Keywords: []string{"peg-100 stearate"}},
}

// KeywordRegistry maps category names to keyword substrings. It is built once and
// never modified, so it is safe for concurrent reads.
type KeywordRegistry struct {
	categories []domain.Category
	index      map[string][]string
}

// NewKeywordRegistry validates and normalizes a category table.
// Every category needs a unique non-empty name and at least one non-empty keyword.
func NewKeywordRegistry(categories []domain.Category) (*KeywordRegistry, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: no categories defined", domain.ErrInvalidRegistry)
	}

	r := &KeywordRegistry{
		categories: make([]domain.Category, 0, len(categories)),
		index:      make(map[string][]string, len(categories)),
	}

	for _, category := range categories {
		name := strings.TrimSpace(category.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: category with empty name", domain.ErrInvalidRegistry)
		}
		if _, dup := r.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", domain.ErrInvalidRegistry, name)
		}

		keywords := make([]string, 0, len(category.Keywords))
		for _, kw := range category.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				return nil, fmt.Errorf("%w: category %q has an empty keyword", domain.ErrInvalidRegistry, name)
			}
			keywords = append(keywords, kw)
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("%w: category %q has no keywords", domain.ErrInvalidRegistry, name)
		}

		r.categories = append(r.categories, domain.Category{Name: name, Keywords: keywords})
		r.index[name] = keywords
	}

	return r, nil
}

// DefaultKeywordRegistry builds the registry from DefaultCategories
func DefaultKeywordRegistry() *KeywordRegistry {
	r, err := NewKeywordRegistry(DefaultCategories)
	if err != nil {
		panic(fmt.Sprintf("default category table is invalid: %v", err))
	}
	return r
}

// KeywordsFor returns the keywords of a category. Unknown categories yield an
// empty slice, never an error.
func (r *KeywordRegistry) KeywordsFor(category string) []string {
	keywords, ok := r.index[category]
	if !ok {
		return []string{}
	}
	out := make([]string, len(keywords))
	copy(out, keywords)
	return out
}

// Expand flattens the keywords of several categories, in input order.
// Duplicates are kept; they do not change match results.
func (r *KeywordRegistry) Expand(categories []string) []string {
	var keywords []string
	for _, category := range categories {
		keywords = append(keywords, r.index[category]...)
	}
	return keywords
}

// Has reports whether a category is registered
func (r *KeywordRegistry) Has(category string) bool {
	_, ok := r.index[category]
	return ok
}

// Names returns category names in declared order
func (r *KeywordRegistry) Names() []string {
	names := make([]string, len(r.categories))
	for i, c := range r.categories {
		names[i] = c.Name
	}
	return names
}

// Categories returns a copy of the table in declared order
func (r *KeywordRegistry) Categories() []domain.Category {
	out := make([]domain.Category, len(r.categories))
	for i, c := range r.categories {
		keywords := make([]string, len(c.Keywords))
		copy(keywords, c.Keywords)
		out[i] = domain.Category{Name: c.Name, Keywords: keywords}
	}
	return out
}

// AllKeywords returns every distinct keyword in the registry, in first-seen order
func (r *KeywordRegistry) AllKeywords() []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, c := range r.categories {
		for _, kw := range c.Keywords {
			if !seen[kw] {
				seen[kw] = true
				keywords = append(keywords, kw)
			}
		}
	}
	return keywords
}
