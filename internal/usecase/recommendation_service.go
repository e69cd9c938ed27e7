package usecase

import (
	"context"

	"github.com/skinmatch/backend/internal/domain"
)

// RecommendationService runs the full flow: concerns -> prediction -> products
type RecommendationService struct {
	adapter   *PredictionAdapter
	filtering *FilteringService
}

// NewRecommendationService wires the prediction adapter to the filtering service
func NewRecommendationService(adapter *PredictionAdapter, filtering *FilteringService) *RecommendationService {
	return &RecommendationService{
		adapter:   adapter,
		filtering: filtering,
	}
}

// Recommend predicts ingredient categories for the given concerns and filters the catalog with them
func (s *RecommendationService) Recommend(
	ctx context.Context,
	request *domain.RecommendRequest,
) (*domain.RecommendResponse, error) {
	if request == nil {
		return nil, domain.ErrInvalidInput
	}

	prediction, err := s.adapter.PredictConcerns(ctx, request.Concerns)
	if err != nil {
		return nil, err
	}

	products, err := s.filtering.Filter(ctx, prediction, FilterOptions{ProductType: request.ProductType})
	if err != nil {
		return nil, err
	}

	return &domain.RecommendResponse{
		Ingredients: prediction,
		Products:    products,
		Order:       s.adapter.Categories(),
	}, nil
}
