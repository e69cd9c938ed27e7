package domain

// CatalogRow is one raw row of the product catalog source
type CatalogRow struct {
	Name           string
	Brand          string
	Type           string
	RawIngredients string
}

// Product is a catalog entry with its ingredient text already normalized
type Product struct {
	Name        string
	Brand       string
	Type        string
	Ingredients []string // lowercase, trimmed, in source order; may be empty
}

// ProductSummary is the display projection of a matched product
type ProductSummary struct {
	Name  string `json:"name"`
	Brand string `json:"brand"`
	Type  string `json:"type"`
}

// FilterRequest is the body of a filter-products call
type FilterRequest struct {
	Ingredients Prediction `json:"ingredients"`
	ProductType string     `json:"product_type,omitempty"`
}

// FilterResponse is the body returned by a filter-products call
type FilterResponse struct {
	Products []ProductSummary `json:"products"`
}
