package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skinmatch/backend/internal/domain"
	"github.com/skinmatch/backend/internal/usecase"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Dependencies are the services the HTTP handlers call into
type Dependencies struct {
	Adapter        *usecase.PredictionAdapter
	Filtering      *usecase.FilteringService
	Recommendation *usecase.RecommendationService
	Registry       *usecase.KeywordRegistry
	Catalog        *usecase.Catalog
	Logger         *zap.Logger
	ModelVersion   string
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	adapter        *usecase.PredictionAdapter
	filtering      *usecase.FilteringService
	recommendation *usecase.RecommendationService
	registry       *usecase.KeywordRegistry
	catalog        *usecase.Catalog
	logger         *zap.Logger
	modelVersion   string
}

// NewHandler creates a new HTTP handler
func NewHandler(deps Dependencies) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		adapter:        deps.Adapter,
		filtering:      deps.Filtering,
		recommendation: deps.Recommendation,
		registry:       deps.Registry,
		catalog:        deps.Catalog,
		logger:         logger,
		modelVersion:   deps.ModelVersion,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	response := gin.H{
		"status":  "healthy",
		"service": "skinmatch-backend",
		"version": Version,
	}
	if h.modelVersion != "" {
		response["model_version"] = h.modelVersion
	}
	if h.catalog != nil {
		response["products"] = h.catalog.Len()
	}
	c.JSON(http.StatusOK, response)
}

// Predict maps a 0/1 concern feature vector to a Yes/No verdict per ingredient category
func (h *Handler) Predict(c *gin.Context) {
	var request domain.PredictRequest
	if !h.bindJSON(c, &request) {
		return
	}

	prediction, err := h.adapter.PredictFeatures(c.Request.Context(), request.Features)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.PredictResponse{
		Ingredients: prediction,
		Order:       h.adapter.Categories(),
	})
}

// FilterProducts returns the catalog products compatible with a category prediction
func (h *Handler) FilterProducts(c *gin.Context) {
	var request domain.FilterRequest
	if !h.bindJSON(c, &request) {
		return
	}

	products, err := h.filtering.Filter(c.Request.Context(), request.Ingredients, usecase.FilterOptions{
		ProductType: request.ProductType,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.FilterResponse{Products: products})
}

// Recommend runs prediction and filtering in one call from concern names
func (h *Handler) Recommend(c *gin.Context) {
	var request domain.RecommendRequest
	if !h.bindJSON(c, &request) {
		return
	}

	response, err := h.recommendation.Recommend(c.Request.Context(), &request)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Categories lists the ingredient categories and their keywords in declared order
func (h *Handler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.registry.Categories()})
}

// Concerns lists the concern names accepted by the recommend endpoint, in feature order
func (h *Handler) Concerns(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"concerns": h.adapter.Features()})
}

// ProductTypes lists the distinct product types present in the catalog
func (h *Handler) ProductTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"product_types": h.catalog.Types()})
}

// errInvalidBody is returned for bodies that are not valid JSON of the expected shape
var errInvalidBody = fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)

// bindJSON decodes the request body, answering 400 on failure
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Debug("rejected request body",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		h.respondError(c, errInvalidBody)
		return false
	}
	return true
}

// respondError maps domain errors to status codes. Server-side failures are
// attached to the gin context for the request logger and never echoed.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingInput.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrClassifierUnavailable):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "classifier temporarily unavailable"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
