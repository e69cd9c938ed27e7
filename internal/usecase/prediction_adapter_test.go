package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skinmatch/backend/internal/domain"
	"github.com/skinmatch/backend/internal/telemetry"
)

func newTestAdapter(t *testing.T, classifier domain.Classifier) *PredictionAdapter {
	t.Helper()
	adapter, err := NewPredictionAdapter(classifier, DefaultConcernFeatures, DefaultKeywordRegistry().Names(), nil, nil)
	require.NoError(t, err)
	return adapter
}

func allZeros(n int) []float64 {
	return make([]float64, n)
}

func TestNewPredictionAdapter(t *testing.T) {
	clf := &mockClassifier{}

	t.Run("rejects nil classifier", func(t *testing.T) {
		_, err := NewPredictionAdapter(nil, []string{"a"}, []string{"b"}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("rejects empty orders", func(t *testing.T) {
		_, err := NewPredictionAdapter(clf, nil, []string{"b"}, nil, nil)
		assert.Error(t, err)
		_, err = NewPredictionAdapter(clf, []string{"a"}, nil, nil, nil)
		assert.Error(t, err)
	})

	t.Run("rejects duplicate features", func(t *testing.T) {
		_, err := NewPredictionAdapter(clf, []string{"a", "a"}, []string{"b"}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("default configuration", func(t *testing.T) {
		adapter := newTestAdapter(t, clf)
		assert.Equal(t, 15, adapter.FeatureCount())
		assert.Len(t, adapter.Categories(), 25)
		assert.Equal(t, DefaultConcernFeatures, adapter.Features())
	})
}

func TestPredictionAdapter_ToInputVector(t *testing.T) {
	adapter, err := NewPredictionAdapter(&mockClassifier{}, []string{"Acne", "Dry", "Oily"}, []string{"x"}, nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		selected map[string]bool
		want     []float64
	}{
		{"none", nil, []float64{0, 0, 0}},
		{"one", map[string]bool{"Dry": true}, []float64{0, 1, 0}},
		{"all", map[string]bool{"Acne": true, "Dry": true, "Oily": true}, []float64{1, 1, 1}},
		{"ignores unknown and false", map[string]bool{"Other": true, "Acne": false, "Oily": true}, []float64{0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, adapter.ToInputVector(tt.selected))
		})
	}
}

func TestPredictionAdapter_Predict(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong lengths never reach the classifier", func(t *testing.T) {
		clf := &mockClassifier{}
		metrics := telemetry.NewMetrics()
		adapter, err := NewPredictionAdapter(clf, DefaultConcernFeatures, DefaultKeywordRegistry().Names(), nil, metrics)
		require.NoError(t, err)

		for _, n := range []int{0, 1, 14, 16, 30} {
			_, err := adapter.Predict(ctx, allZeros(n))
			assert.ErrorIs(t, err, domain.ErrInvalidInput, "length %d", n)
		}
		_, err = adapter.Predict(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		clf.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
		assert.Equal(t, 6.0, testutil.ToFloat64(metrics.Predictions.WithLabelValues(telemetry.OutcomeInvalid)))
	})

	t.Run("valid vector is passed through", func(t *testing.T) {
		clf := &mockClassifier{}
		input := allZeros(15)
		input[8] = 1
		output := allZeros(25)
		output[0] = 1
		clf.On("Predict", mock.Anything, input).Return(output, nil).Once()

		adapter := newTestAdapter(t, clf)
		got, err := adapter.Predict(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, output, got)
		clf.AssertExpectations(t)
	})

	t.Run("classifier error becomes classifier failure", func(t *testing.T) {
		clf := &mockClassifier{}
		clf.On("Predict", mock.Anything, mock.Anything).Return(nil, errors.New("corrupt weights")).Once()

		adapter := newTestAdapter(t, clf)
		_, err := adapter.Predict(ctx, allZeros(15))
		assert.ErrorIs(t, err, domain.ErrClassifierFailure)
		assert.Contains(t, err.Error(), "corrupt weights")
	})

	t.Run("unavailable classifier error is preserved", func(t *testing.T) {
		clf := &mockClassifier{}
		clf.On("Predict", mock.Anything, mock.Anything).Return(nil, domain.ErrClassifierUnavailable).Once()

		adapter := newTestAdapter(t, clf)
		_, err := adapter.Predict(ctx, allZeros(15))
		assert.ErrorIs(t, err, domain.ErrClassifierUnavailable)
	})

	t.Run("output of the wrong length is a classifier failure", func(t *testing.T) {
		clf := &mockClassifier{}
		clf.On("Predict", mock.Anything, mock.Anything).Return(allZeros(24), nil).Once()

		adapter := newTestAdapter(t, clf)
		_, err := adapter.Predict(ctx, allZeros(15))
		assert.ErrorIs(t, err, domain.ErrClassifierFailure)
	})
}

func TestPredictionAdapter_ToCategoryMap(t *testing.T) {
	adapter, err := NewPredictionAdapter(&mockClassifier{}, []string{"f"}, []string{"a", "b", "c", "d"}, nil, nil)
	require.NoError(t, err)

	got := adapter.ToCategoryMap([]float64{1, 0, 0.99, 2})
	assert.Equal(t, domain.Prediction{
		"a": domain.VerdictYes,
		"b": domain.VerdictNo,
		"c": domain.VerdictNo, // only exactly 1 counts
		"d": domain.VerdictNo,
	}, got)
}

func TestPredictionAdapter_PredictFeatures(t *testing.T) {
	clf := &mockClassifier{}
	output := allZeros(25)
	output[0] = 1  // hyaluronic
	output[15] = 1 // fragrance
	clf.On("Predict", mock.Anything, mock.Anything).Return(output, nil)

	adapter := newTestAdapter(t, clf)
	prediction, err := adapter.PredictFeatures(context.Background(), allZeros(15))
	require.NoError(t, err)

	// One verdict per declared category, each strictly Yes or No
	require.Len(t, prediction, 25)
	for name, verdict := range prediction {
		assert.Contains(t, []string{domain.VerdictYes, domain.VerdictNo}, verdict, name)
	}
	assert.Equal(t, domain.VerdictYes, prediction["hyaluronic"])
	assert.Equal(t, domain.VerdictYes, prediction["fragrance"])
	assert.Equal(t, domain.VerdictNo, prediction["retinol"])
}

func TestPredictionAdapter_PredictConcerns(t *testing.T) {
	ctx := context.Background()

	t.Run("builds vector from concern names", func(t *testing.T) {
		clf := &mockClassifier{}
		expected := allZeros(15)
		expected[0] = 1  // Acne Fighting
		expected[14] = 1 // Scar Healing
		clf.On("Predict", mock.Anything, expected).Return(allZeros(25), nil).Once()

		adapter := newTestAdapter(t, clf)
		prediction, err := adapter.PredictConcerns(ctx, []string{"Scar Healing", "Acne Fighting"})
		require.NoError(t, err)
		assert.Len(t, prediction, 25)
		clf.AssertExpectations(t)
	})

	t.Run("no concerns predicts on an all-zero vector", func(t *testing.T) {
		clf := &mockClassifier{}
		clf.On("Predict", mock.Anything, allZeros(15)).Return(allZeros(25), nil).Once()

		adapter := newTestAdapter(t, clf)
		_, err := adapter.PredictConcerns(ctx, nil)
		require.NoError(t, err)
		clf.AssertExpectations(t)
	})

	t.Run("unknown concern is invalid input", func(t *testing.T) {
		clf := &mockClassifier{}
		adapter := newTestAdapter(t, clf)

		_, err := adapter.PredictConcerns(ctx, []string{"Hydrating", "Sunburn"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.ErrorIs(t, err, domain.ErrUnknownConcern)
		clf.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
	})
}
