package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skinmatch/backend/internal/domain"
	"github.com/skinmatch/backend/internal/telemetry"
)

func newTestFilteringService(catalog *Catalog, cache domain.CacheRepository, cfg FilteringServiceConfig) *FilteringService {
	registry := DefaultKeywordRegistry()
	return NewFilteringService(registry, NewScanMatcher(catalog), cache, nil, nil, cfg)
}

func singleProductCatalog(raw string) *Catalog {
	return NewCatalog([]domain.CatalogRow{
		{Name: "Test Product", Brand: "Acme", Type: "Serum", RawIngredients: raw},
	})
}

func TestFilter_Scenarios(t *testing.T) {
	ctx := context.Background()
	prediction := domain.Prediction{"hyaluronic": "Yes", "fragrance": "No"}

	t.Run("forbidden fragrance excludes product", func(t *testing.T) {
		svc := newTestFilteringService(singleProductCatalog("Water, Sodium Hyaluronate, Fragrance"), nil, FilteringServiceConfig{})

		products, err := svc.Filter(ctx, prediction, FilterOptions{})
		require.NoError(t, err)
		assert.Empty(t, products)
		assert.NotNil(t, products)
	})

	t.Run("required keyword without forbidden includes product", func(t *testing.T) {
		svc := newTestFilteringService(singleProductCatalog("Water, Hyaluronic Acid, Glycerin"), nil, FilteringServiceConfig{})

		products, err := svc.Filter(ctx, prediction, FilterOptions{})
		require.NoError(t, err)
		assert.Equal(t, []domain.ProductSummary{
			{Name: "Test Product", Brand: "Acme", Type: "Serum"},
		}, products)
	})

	t.Run("empty prediction is missing input", func(t *testing.T) {
		svc := newTestFilteringService(testCatalog(), nil, FilteringServiceConfig{})

		_, err := svc.Filter(ctx, domain.Prediction{}, FilterOptions{})
		assert.ErrorIs(t, err, domain.ErrMissingInput)

		_, err = svc.Filter(ctx, nil, FilterOptions{})
		assert.ErrorIs(t, err, domain.ErrMissingInput)
	})
}

func TestFilter_Semantics(t *testing.T) {
	ctx := context.Background()
	svc := newTestFilteringService(testCatalog(), nil, FilteringServiceConfig{})

	tests := []struct {
		name       string
		prediction domain.Prediction
		want       []string
	}{
		{
			name:       "all No yields nothing",
			prediction: domain.Prediction{"hyaluronic": "No", "retinol": "No"},
			want:       []string{},
		},
		{
			name:       "unknown categories expand to nothing",
			prediction: domain.Prediction{"unicorn": "Yes"},
			want:       []string{},
		},
		{
			name:       "unknown excluded category does not block",
			prediction: domain.Prediction{"niacinamide": "Yes", "unicorn": "No"},
			want:       []string{"Clear Gel"},
		},
		{
			name:       "malformed verdict counts as excluded",
			prediction: domain.Prediction{"hydrating": "Yes", "hyaluronic": "yes"},
			want:       []string{"Calm Cream"},
		},
		{
			name:       "empty verdict counts as excluded",
			prediction: domain.Prediction{"hydrating": "Yes", "preservative": ""},
			want:       []string{"Hydra Serum", "Calm Cream"},
		},
		{
			name:       "catalog order preserved",
			prediction: domain.Prediction{"hydrating": "Yes", "hyaluronic": "Yes"},
			want:       []string{"Hydra Serum", "Rose Toner", "Calm Cream"},
		},
		{
			name:       "forbidden substring inside an entry",
			prediction: domain.Prediction{"retinol": "Yes", "fragrance": "No"},
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := svc.Filter(ctx, tt.prediction, FilterOptions{})
			require.NoError(t, err)

			names := make([]string, len(products))
			for i, p := range products {
				names[i] = p.Name
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestFilter_ProductType(t *testing.T) {
	ctx := context.Background()
	svc := newTestFilteringService(testCatalog(), nil, FilteringServiceConfig{})
	prediction := domain.Prediction{"hydrating": "Yes", "hyaluronic": "Yes"}

	products, err := svc.Filter(ctx, prediction, FilterOptions{ProductType: " serum "})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Hydra Serum", products[0].Name)

	products, err = svc.Filter(ctx, prediction, FilterOptions{ProductType: "Shampoo"})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestFilter_Cache(t *testing.T) {
	ctx := context.Background()
	prediction := domain.Prediction{"hyaluronic": "Yes", "fragrance": "No"}

	t.Run("second call is served from cache", func(t *testing.T) {
		cache := newMapCache()
		metrics := telemetry.NewMetrics()
		svc := NewFilteringService(DefaultKeywordRegistry(), NewScanMatcher(testCatalog()), cache, nil, metrics,
			FilteringServiceConfig{CacheEnabled: true, CacheTTL: time.Minute})

		first, err := svc.Filter(ctx, prediction, FilterOptions{})
		require.NoError(t, err)
		second, err := svc.Filter(ctx, domain.Prediction{"fragrance": "No", "hyaluronic": "Yes"}, FilterOptions{})
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Len(t, cache.data, 1)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("hit")))
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("miss")))
	})

	t.Run("product type is part of the key", func(t *testing.T) {
		cache := newMapCache()
		svc := newTestFilteringService(testCatalog(), cache, FilteringServiceConfig{CacheEnabled: true})

		_, _ = svc.Filter(ctx, prediction, FilterOptions{})
		_, _ = svc.Filter(ctx, prediction, FilterOptions{ProductType: "Toner"})
		assert.Len(t, cache.data, 2)
	})

	t.Run("callers cannot corrupt cached results", func(t *testing.T) {
		cache := newMapCache()
		svc := newTestFilteringService(testCatalog(), cache, FilteringServiceConfig{CacheEnabled: true})

		first, err := svc.Filter(ctx, prediction, FilterOptions{})
		require.NoError(t, err)
		require.NotEmpty(t, first)
		first[0].Name = "mutated"

		second, err := svc.Filter(ctx, prediction, FilterOptions{})
		require.NoError(t, err)
		assert.Equal(t, "Hydra Serum", second[0].Name)
	})

	t.Run("disabled cache is never touched", func(t *testing.T) {
		cache := &mockCache{}
		svc := newTestFilteringService(testCatalog(), cache, FilteringServiceConfig{CacheEnabled: false})

		_, err := svc.Filter(ctx, prediction, FilterOptions{})
		require.NoError(t, err)
		cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache write failure does not fail the request", func(t *testing.T) {
		cache := &mockCache{}
		cache.On("Get", mock.Anything, mock.Anything).Return(nil, domain.ErrCacheMiss)
		cache.On("Set", mock.Anything, mock.Anything, mock.Anything, time.Minute).Return(errors.New("cache down"))
		svc := newTestFilteringService(testCatalog(), cache, FilteringServiceConfig{CacheEnabled: true, CacheTTL: time.Minute})

		products, err := svc.Filter(ctx, prediction, FilterOptions{})
		require.NoError(t, err)
		assert.Len(t, products, 1)
		cache.AssertExpectations(t)
	})

	t.Run("malformed cache entry is evicted and recomputed", func(t *testing.T) {
		cache := &mockCache{}
		cache.On("Get", mock.Anything, mock.Anything).Return("garbage", nil)
		cache.On("Delete", mock.Anything, mock.Anything).Return(nil)
		cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		svc := newTestFilteringService(testCatalog(), cache, FilteringServiceConfig{CacheEnabled: true})

		products, err := svc.Filter(ctx, prediction, FilterOptions{})
		require.NoError(t, err)
		assert.Len(t, products, 1)
		cache.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestFilter_ContextCancelled(t *testing.T) {
	svc := newTestFilteringService(testCatalog(), nil, FilteringServiceConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Filter(ctx, domain.Prediction{"hydrating": "Yes"}, FilterOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPartition(t *testing.T) {
	selected, excluded := Partition(domain.Prediction{
		"retinol":    "Yes",
		"hyaluronic": "Yes",
		"fragrance":  "No",
		"solvent":    "maybe",
		"colorant":   "YES",
	})

	assert.Equal(t, []string{"hyaluronic", "retinol"}, selected)
	assert.Equal(t, []string{"colorant", "fragrance", "solvent"}, excluded)
}

func TestGenerateCacheKey(t *testing.T) {
	a := generateCacheKey(domain.Prediction{"a": "Yes", "b": "No"}, FilterOptions{ProductType: "Serum"})
	b := generateCacheKey(domain.Prediction{"b": "No", "a": "Yes"}, FilterOptions{ProductType: " serum"})
	c := generateCacheKey(domain.Prediction{"a": "Yes", "b": "no"}, FilterOptions{ProductType: "Serum"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c, "verdict strings are significant")
}
