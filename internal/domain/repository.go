package domain

import (
	"context"
	"time"
)

// Classifier is the trained model: a fixed-length feature vector in,
// a fixed-length 0/1 output vector out
type Classifier interface {
	Predict(ctx context.Context, features []float64) ([]float64, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
