// Package model provides classifier implementations: a local linear model loaded
// from a JSON artifact and a client for a remote model-serving sidecar.
package model

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/skinmatch/backend/internal/domain"
)

// DefaultThreshold is the decision threshold used when an artifact omits one
const DefaultThreshold = 0.0

// LinearArtifact is the on-disk form of a multi-label linear classifier.
// Output i is 1 when Bias[i] + Σ Weights[i][j]*x[j] >= Threshold.
type LinearArtifact struct {
	Version   string      `json:"version"`
	Features  []string    `json:"features"`
	Labels    []string    `json:"labels"`
	Weights   [][]float64 `json:"weights"`
	Bias      []float64   `json:"bias"`
	Threshold *float64    `json:"threshold,omitempty"`
}

// LinearModel is an immutable in-process classifier
type LinearModel struct {
	version   string
	features  []string
	labels    []string
	weights   [][]float64
	bias      []float64
	threshold float64
}

// LoadLinearModel reads and validates a JSON artifact from disk
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact %s: %w", path, err)
	}

	var artifact LinearArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrInvalidModel, path, err)
	}

	return NewLinearModel(artifact)
}

// NewLinearModel validates artifact dimensions and builds the model
func NewLinearModel(artifact LinearArtifact) (*LinearModel, error) {
	nIn := len(artifact.Features)
	nOut := len(artifact.Labels)

	if nIn == 0 || nOut == 0 {
		return nil, fmt.Errorf("%w: features and labels must not be empty", domain.ErrInvalidModel)
	}
	if len(artifact.Weights) != nOut {
		return nil, fmt.Errorf("%w: %d weight rows for %d labels", domain.ErrInvalidModel, len(artifact.Weights), nOut)
	}
	for i, row := range artifact.Weights {
		if len(row) != nIn {
			return nil, fmt.Errorf("%w: weight row %d (%s) has %d columns, want %d",
				domain.ErrInvalidModel, i, artifact.Labels[i], len(row), nIn)
		}
	}

	bias := artifact.Bias
	switch len(bias) {
	case 0:
		bias = make([]float64, nOut)
	case nOut:
	default:
		return nil, fmt.Errorf("%w: %d bias terms for %d labels", domain.ErrInvalidModel, len(bias), nOut)
	}

	threshold := DefaultThreshold
	if artifact.Threshold != nil {
		threshold = *artifact.Threshold
	}

	weights := make([][]float64, nOut)
	for i, row := range artifact.Weights {
		weights[i] = append([]float64(nil), row...)
	}

	return &LinearModel{
		version:   artifact.Version,
		features:  append([]string(nil), artifact.Features...),
		labels:    append([]string(nil), artifact.Labels...),
		weights:   weights,
		bias:      append([]float64(nil), bias...),
		threshold: threshold,
	}, nil
}

// Predict implements domain.Classifier
func (m *LinearModel) Predict(ctx context.Context, features []float64) ([]float64, error) {
	if len(features) != len(m.features) {
		return nil, fmt.Errorf("%w: model expects %d features, got %d", domain.ErrInvalidInput, len(m.features), len(features))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]float64, len(m.labels))
	for i, row := range m.weights {
		score := m.bias[i]
		for j, w := range row {
			score += w * features[j]
		}
		if score >= m.threshold {
			out[i] = 1
		}
	}
	return out, nil
}

// Features returns the input order the model was trained with
func (m *LinearModel) Features() []string {
	return append([]string(nil), m.features...)
}

// Labels returns the output order
func (m *LinearModel) Labels() []string {
	return append([]string(nil), m.labels...)
}

// Version returns the artifact version string
func (m *LinearModel) Version() string {
	return m.version
}
