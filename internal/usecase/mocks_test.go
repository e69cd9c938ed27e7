package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/skinmatch/backend/internal/domain"
)

// mockClassifier is a testify mock for domain.Classifier
type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Predict(ctx context.Context, features []float64) ([]float64, error) {
	args := m.Called(ctx, features)
	out, _ := args.Get(0).([]float64)
	return out, args.Error(1)
}

// mockCache is a testify mock for domain.CacheRepository
type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) (interface{}, error) {
	args := m.Called(ctx, key)
	return args.Get(0), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockCache) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// mapCache is a minimal working CacheRepository for flow tests
type mapCache struct {
	data map[string]interface{}
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string]interface{})}
}

func (c *mapCache) Get(ctx context.Context, key string) (interface{}, error) {
	v, ok := c.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *mapCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.data[key]
	return ok, nil
}
