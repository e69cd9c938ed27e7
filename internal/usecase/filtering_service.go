package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skinmatch/backend/internal/domain"
	"github.com/skinmatch/backend/internal/telemetry"
)

// FilteringServiceConfig holds configuration for the filtering service
type FilteringServiceConfig struct {
	CacheEnabled       bool
	CacheTTL           time.Duration
	EnableDebugLogging bool
}

// FilterOptions narrows a filter run beyond the prediction
type FilterOptions struct {
	ProductType string // case-insensitive exact match on product type; empty keeps all
}

// FilteringService turns a category prediction into the list of matching products
type FilteringService struct {
	registry     *KeywordRegistry
	matcher      ProductMatcher
	cache        domain.CacheRepository
	cacheEnabled bool
	cacheTTL     time.Duration
	debug        bool
	logger       *zap.Logger
	metrics      *telemetry.Metrics
}

// NewFilteringService creates a filtering service. cache may be nil, which disables caching.
func NewFilteringService(
	registry *KeywordRegistry,
	matcher ProductMatcher,
	cache domain.CacheRepository,
	logger *zap.Logger,
	metrics *telemetry.Metrics,
	config FilteringServiceConfig,
) *FilteringService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FilteringService{
		registry:     registry,
		matcher:      matcher,
		cache:        cache,
		cacheEnabled: config.CacheEnabled && cache != nil,
		cacheTTL:     cacheTTL,
		debug:        config.EnableDebugLogging,
		logger:       logger,
		metrics:      metrics,
	}
}

// Filter returns the products whose ingredients contain a keyword of at least one
// "Yes" category and no keyword of any other category in the prediction.
// Flow: validate -> check cache -> partition -> expand -> match -> project -> cache
func (s *FilteringService) Filter(
	ctx context.Context,
	prediction domain.Prediction,
	opts FilterOptions,
) ([]domain.ProductSummary, error) {
	if len(prediction) == 0 {
		s.metrics.RecordFilter(telemetry.OutcomeInvalid, 0)
		return nil, domain.ErrMissingInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cacheKey := generateCacheKey(prediction, opts)
	if s.cacheEnabled {
		if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
			s.metrics.RecordCacheLookup(true)
			s.metrics.RecordFilter(telemetry.OutcomeSuccess, len(cached))
			return cached, nil
		}
		s.metrics.RecordCacheLookup(false)
	}

	selected, excluded := Partition(prediction)
	required := s.registry.Expand(selected)
	forbidden := s.registry.Expand(excluded)

	if s.debug {
		s.logger.Debug("expanded prediction",
			zap.Strings("selected", selected),
			zap.Strings("excluded", excluded),
			zap.Int("required_keywords", len(required)),
			zap.Int("forbidden_keywords", len(forbidden)))
	}

	matched := s.matcher.Match(required, forbidden)
	summaries := projectSummaries(matched, opts.ProductType)

	if s.debug {
		s.logger.Debug("catalog filtered",
			zap.Int("matched", len(matched)),
			zap.Int("returned", len(summaries)),
			zap.String("product_type", opts.ProductType))
	}

	if s.cacheEnabled {
		if err := s.cache.Set(ctx, cacheKey, summaries, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache filter result", zap.Error(err))
		}
	}

	s.metrics.RecordFilter(telemetry.OutcomeSuccess, len(summaries))
	return copySummaries(summaries), nil
}

// Partition splits prediction keys into selected ("Yes") and excluded (any other
// value, including unrecognized strings). Both lists are sorted.
func Partition(prediction domain.Prediction) (selected, excluded []string) {
	for category, verdict := range prediction {
		if verdict == domain.VerdictYes {
			selected = append(selected, category)
		} else {
			excluded = append(excluded, category)
		}
	}
	sort.Strings(selected)
	sort.Strings(excluded)
	return selected, excluded
}

// projectSummaries keeps name, brand and type, optionally restricted to one product type
func projectSummaries(products []domain.Product, productType string) []domain.ProductSummary {
	productType = strings.TrimSpace(productType)
	summaries := make([]domain.ProductSummary, 0, len(products))
	for _, p := range products {
		if productType != "" && !strings.EqualFold(strings.TrimSpace(p.Type), productType) {
			continue
		}
		summaries = append(summaries, domain.ProductSummary{
			Name:  p.Name,
			Brand: p.Brand,
			Type:  p.Type,
		})
	}
	return summaries
}

// generateCacheKey builds a key that is independent of map iteration order.
// Format: "filter:{sorted quoted category=verdict pairs}:{product type}"
func generateCacheKey(prediction domain.Prediction, opts FilterOptions) string {
	pairs := make([]string, 0, len(prediction))
	for category, verdict := range prediction {
		pairs = append(pairs, strconv.Quote(category)+"="+strconv.Quote(verdict))
	}
	sort.Strings(pairs)
	productType := strings.ToLower(strings.TrimSpace(opts.ProductType))
	return fmt.Sprintf("filter:%s:%s", strings.Join(pairs, ","), productType)
}

// getFromCache retrieves a filter result from cache
func (s *FilteringService) getFromCache(ctx context.Context, key string) ([]domain.ProductSummary, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	summaries, ok := value.([]domain.ProductSummary)
	if !ok {
		// Drop entries of an unexpected shape so they are recomputed
		if delErr := s.cache.Delete(ctx, key); delErr != nil && !errors.Is(delErr, domain.ErrCacheMiss) {
			s.logger.Warn("failed to evict malformed cache entry", zap.Error(delErr))
		}
		return nil, domain.ErrCacheMiss
	}

	return copySummaries(summaries), nil
}

func copySummaries(in []domain.ProductSummary) []domain.ProductSummary {
	out := make([]domain.ProductSummary, len(in))
	copy(out, in)
	return out
}
