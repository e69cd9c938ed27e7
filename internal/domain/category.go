package domain

import (
	"bytes"
	"sort"

	"github.com/goccy/go-json"
)

// Verdict values produced by the prediction adapter
const (
	VerdictYes = "Yes"
	VerdictNo  = "No"
)

// Category is an ingredient group and the lowercase keyword substrings that indicate it
type Category struct {
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Prediction maps a category name to its verdict.
// Values are kept as raw strings: anything other than VerdictYes counts as excluded.
type Prediction map[string]string

// UnmarshalJSON accepts any JSON value per category. Strings are kept as sent;
// booleans, numbers, null and nested values become VerdictNo.
func (p *Prediction) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*p = nil
		return nil
	}

	out := make(Prediction, len(raw))
	for category, value := range raw {
		if verdict, ok := value.(string); ok {
			out[category] = verdict
			continue
		}
		out[category] = VerdictNo
	}
	*p = out
	return nil
}

// orderedJSON encodes the prediction with the categories in order first and any
// remaining categories after them, sorted
func (p Prediction) orderedJSON(order []string) ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}

	written := make(map[string]bool, len(p))
	keys := make([]string, 0, len(p))
	for _, category := range order {
		if _, ok := p[category]; ok && !written[category] {
			written[category] = true
			keys = append(keys, category)
		}
	}
	rest := make([]string, 0, len(p)-len(keys))
	for category := range p {
		if !written[category] {
			rest = append(rest, category)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, category := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(category)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p[category])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// PredictRequest is the body of a predict call
type PredictRequest struct {
	Features []float64 `json:"features"`
}

// PredictResponse is the body returned by a predict call
type PredictResponse struct {
	Ingredients Prediction `json:"ingredients"`
	Order       []string   `json:"-"` // category order for encoding; empty sorts keys
}

// MarshalJSON writes ingredients in Order
func (r PredictResponse) MarshalJSON() ([]byte, error) {
	ingredients, err := r.Ingredients.orderedJSON(r.Order)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Ingredients json.RawMessage `json:"ingredients"`
	}{Ingredients: ingredients})
}

// RecommendRequest runs prediction and filtering from a list of concern names
type RecommendRequest struct {
	Concerns    []string `json:"concerns"`
	ProductType string   `json:"product_type,omitempty"`
}

// RecommendResponse carries both the prediction and the matching products
type RecommendResponse struct {
	Ingredients Prediction       `json:"ingredients"`
	Products    []ProductSummary `json:"products"`
	Order       []string         `json:"-"`
}

// MarshalJSON writes ingredients in Order
func (r RecommendResponse) MarshalJSON() ([]byte, error) {
	ingredients, err := r.Ingredients.orderedJSON(r.Order)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Ingredients json.RawMessage  `json:"ingredients"`
		Products    []ProductSummary `json:"products"`
	}{Ingredients: ingredients, Products: r.Products})
}
