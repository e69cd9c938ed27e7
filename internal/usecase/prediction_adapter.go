package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skinmatch/backend/internal/domain"
	"github.com/skinmatch/backend/internal/telemetry"
)

// DefaultConcernFeatures is the classifier's input order: one 0/1 slot per skin concern
var DefaultConcernFeatures = []string{
	"Acne Fighting", "Acne Trigger", "Anti-Aging", "Brightening", "Dark Spots", "Drying",
	"Eczema", "Good For Oily Skin", "Hydrating", "Irritating", "Redness Reducing",
	"Reduces Irritation", "Reduces Large Pores", "Rosacea", "Scar Healing",
}

// PredictionAdapter converts between request shapes and the classifier's fixed-order vectors.
// It holds only immutable state and is safe for concurrent use.
type PredictionAdapter struct {
	classifier   domain.Classifier
	features     []string
	featureIndex map[string]int
	categories   []string
	logger       *zap.Logger
	metrics      *telemetry.Metrics
}

// NewPredictionAdapter creates an adapter for a classifier trained on the given
// feature order that emits one output per category, in order
func NewPredictionAdapter(
	classifier domain.Classifier,
	features []string,
	categories []string,
	logger *zap.Logger,
	metrics *telemetry.Metrics,
) (*PredictionAdapter, error) {
	if classifier == nil {
		return nil, errors.New("prediction adapter: classifier is required")
	}
	if len(features) == 0 || len(categories) == 0 {
		return nil, errors.New("prediction adapter: feature and category orders must not be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	index := make(map[string]int, len(features))
	for i, f := range features {
		if _, dup := index[f]; dup {
			return nil, fmt.Errorf("prediction adapter: duplicate feature %q", f)
		}
		index[f] = i
	}

	return &PredictionAdapter{
		classifier:   classifier,
		features:     append([]string(nil), features...),
		featureIndex: index,
		categories:   append([]string(nil), categories...),
		logger:       logger,
		metrics:      metrics,
	}, nil
}

// FeatureCount is the input length the classifier expects
func (a *PredictionAdapter) FeatureCount() int {
	return len(a.features)
}

// Features returns the input order
func (a *PredictionAdapter) Features() []string {
	return append([]string(nil), a.features...)
}

// Categories returns the output order
func (a *PredictionAdapter) Categories() []string {
	return append([]string(nil), a.categories...)
}

// ToInputVector emits 1 for every feature present in selected, 0 otherwise
func (a *PredictionAdapter) ToInputVector(selected map[string]bool) []float64 {
	vector := make([]float64, len(a.features))
	for i, f := range a.features {
		if selected[f] {
			vector[i] = 1
		}
	}
	return vector
}

// Predict runs the classifier. A vector of the wrong length is rejected
// before the classifier is touched.
func (a *PredictionAdapter) Predict(ctx context.Context, vector []float64) ([]float64, error) {
	if len(vector) == 0 || len(vector) != len(a.features) {
		a.metrics.RecordPrediction(telemetry.OutcomeInvalid, 0)
		return nil, fmt.Errorf("%w: expected %d features, got %d", domain.ErrInvalidInput, len(a.features), len(vector))
	}

	start := time.Now()
	output, err := a.classifier.Predict(ctx, vector)
	if err != nil {
		a.metrics.RecordPrediction(telemetry.OutcomeError, 0)
		a.logger.Error("classifier prediction failed", zap.Error(err))
		if errors.Is(err, domain.ErrClassifierFailure) ||
			errors.Is(err, domain.ErrClassifierUnavailable) ||
			errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrClassifierFailure, err)
	}

	if len(output) != len(a.categories) {
		a.metrics.RecordPrediction(telemetry.OutcomeError, 0)
		a.logger.Error("classifier output length mismatch",
			zap.Int("expected", len(a.categories)),
			zap.Int("got", len(output)))
		return nil, fmt.Errorf("%w: expected %d outputs, got %d", domain.ErrClassifierFailure, len(a.categories), len(output))
	}

	a.metrics.RecordPrediction(telemetry.OutcomeSuccess, time.Since(start))
	return output, nil
}

// ToCategoryMap zips outputs to category names: "Yes" when the output is exactly 1
func (a *PredictionAdapter) ToCategoryMap(output []float64) domain.Prediction {
	prediction := make(domain.Prediction, len(a.categories))
	for i, name := range a.categories {
		verdict := domain.VerdictNo
		if i < len(output) && output[i] == 1 {
			verdict = domain.VerdictYes
		}
		prediction[name] = verdict
	}
	return prediction
}

// PredictFeatures runs a raw feature vector through the classifier and returns
// one verdict per category
func (a *PredictionAdapter) PredictFeatures(ctx context.Context, features []float64) (domain.Prediction, error) {
	output, err := a.Predict(ctx, features)
	if err != nil {
		return nil, err
	}
	return a.ToCategoryMap(output), nil
}

// PredictConcerns builds the input vector from concern names and predicts.
// Every concern must be one of the classifier's features.
func (a *PredictionAdapter) PredictConcerns(ctx context.Context, concerns []string) (domain.Prediction, error) {
	selected := make(map[string]bool, len(concerns))
	for _, c := range concerns {
		if _, ok := a.featureIndex[c]; !ok {
			return nil, fmt.Errorf("%w: %w: %q", domain.ErrInvalidInput, domain.ErrUnknownConcern, c)
		}
		selected[c] = true
	}
	return a.PredictFeatures(ctx, a.ToInputVector(selected))
}
