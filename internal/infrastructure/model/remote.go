package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/skinmatch/backend/internal/domain"
)

// RemoteConfig configures the model-serving sidecar client
type RemoteConfig struct {
	BaseURL          string
	Timeout          time.Duration
	RequestsPerSec   float64 // outbound throttle; 0 disables it
	Burst            int
	FailureThreshold uint32        // consecutive failures before the breaker opens
	OpenTimeout      time.Duration // how long the breaker stays open
}

// predictRequest is the sidecar body: a batch of one feature row
type predictRequest struct {
	Features [][]float64 `json:"features"`
}

// predictResponse is the sidecar reply: a batch of one output row
type predictResponse struct {
	Prediction [][]float64 `json:"prediction"`
}

// healthResponse is the JSON shape returned by GET /health (model_version optional)
type healthResponse struct {
	Status       string `json:"status"`
	ModelVersion string `json:"model_version"`
}

// RemoteClassifier calls a model-serving sidecar over HTTP. Failed calls are
// not retried; repeated failures open a circuit breaker.
type RemoteClassifier struct {
	httpClient  *resty.Client
	breaker     *gobreaker.CircuitBreaker[[]float64]
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewRemoteClassifier creates a sidecar client
func NewRemoteClassifier(cfg RemoteConfig, logger *zap.Logger) *RemoteClassifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSec > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), burst)
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": "SkinMatch/1.0",
		})

	r := &RemoteClassifier{
		httpClient:  client,
		rateLimiter: limiter,
		logger:      logger,
	}

	r.breaker = gobreaker.NewCircuitBreaker[[]float64](gobreaker.Settings{
		Name:    "remote-classifier",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// Caller-side problems must not trip the breaker
			return err == nil || errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("classifier circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return r
}

// Predict implements domain.Classifier
func (r *RemoteClassifier) Predict(ctx context.Context, features []float64) ([]float64, error) {
	if r.rateLimiter != nil {
		if err := r.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %w", domain.ErrClassifierFailure, err)
		}
	}

	out, err := r.breaker.Execute(func() ([]float64, error) {
		return r.doPredict(ctx, features)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", domain.ErrClassifierUnavailable, err)
		}
		return nil, err
	}
	return out, nil
}

func (r *RemoteClassifier) doPredict(ctx context.Context, features []float64) ([]float64, error) {
	var result predictResponse
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetBody(predictRequest{Features: [][]float64{features}}).
		SetResult(&result).
		Post("/predict")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrClassifierFailure, err)
	}

	switch {
	case resp.StatusCode() == http.StatusBadRequest:
		r.logger.Debug("classifier sidecar rejected features", zap.String("body", resp.String()))
		return nil, fmt.Errorf("%w: classifier rejected features", domain.ErrInvalidInput)
	case resp.StatusCode() != http.StatusOK:
		r.logger.Error("classifier sidecar error",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()))
		return nil, fmt.Errorf("%w: sidecar returned status %d", domain.ErrClassifierFailure, resp.StatusCode())
	}

	if len(result.Prediction) != 1 {
		return nil, fmt.Errorf("%w: expected 1 prediction row, got %d", domain.ErrClassifierFailure, len(result.Prediction))
	}
	return result.Prediction[0], nil
}

// Health checks if the sidecar is reachable and healthy, returning its model version
func (r *RemoteClassifier) Health(ctx context.Context) (string, error) {
	var result healthResponse
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/health")
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrClassifierUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: health status %d", domain.ErrClassifierUnavailable, resp.StatusCode())
	}
	return result.ModelVersion, nil
}

// BreakerState reports the circuit breaker state (closed, half-open, open)
func (r *RemoteClassifier) BreakerState() string {
	return r.breaker.State().String()
}
