package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/shopstream/recommender/pkg/models"
)

// FusionSource produces the hybrid recommendation lists the HTTP layer
// serves.
type FusionSource interface {
	Fuse(ctx context.Context, productID, userID string, k int) ([]models.FusedRecommendation, error)
	PersonalizedRecommendations(ctx context.Context, userID string, k int) ([]models.FusedRecommendation, error)
}

// CatalogSource answers popularity queries straight from the search index.
type CatalogSource interface {
	Trending(ctx context.Context, category string, k int) ([]models.Product, error)
}

type RecommendationHandler struct {
	fusion   FusionSource
	catalog  CatalogSource
	logger   *logrus.Logger
	validate *validator.Validate
}

func NewRecommendationHandler(fusion FusionSource, catalog CatalogSource, logger *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		fusion:   fusion,
		catalog:  catalog,
		logger:   logger,
		validate: validator.New(),
	}
}

// SimilarProducts handles GET /api/v1/recommendations/similar/:productId.
// An optional user_id adds the personalization boost.
func (h *RecommendationHandler) SimilarProducts(c *gin.Context) {
	productID := c.Param("productId")
	if productID == "" {
		badRequest(c, "INVALID_PRODUCT_ID", "Product ID is required")
		return
	}

	var query models.RecommendationQuery
	if !h.bindQuery(c, &query) {
		return
	}

	recs, err := h.fusion.Fuse(c.Request.Context(), productID, query.UserID, query.Limit)
	if err != nil {
		h.logger.WithError(err).WithField("product_id", productID).
			Error("Failed to generate similar products")
		internalError(c, "RECOMMENDATION_FAILED", "Failed to generate recommendations")
		return
	}

	c.JSON(http.StatusOK, models.SimilarProductsResponse{
		ProductID:       productID,
		Recommendations: recs,
		Count:           len(recs),
		GeneratedAt:     time.Now(),
	})
}

// ForUser handles GET /api/v1/recommendations/user/:userId.
func (h *RecommendationHandler) ForUser(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		badRequest(c, "INVALID_USER_ID", "User ID is required")
		return
	}

	var query models.RecommendationQuery
	if !h.bindQuery(c, &query) {
		return
	}

	recs, err := h.fusion.PersonalizedRecommendations(c.Request.Context(), userID, query.Limit)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).
			Error("Failed to generate user recommendations")
		internalError(c, "RECOMMENDATION_FAILED", "Failed to generate recommendations")
		return
	}

	c.JSON(http.StatusOK, models.UserRecommendationsResponse{
		UserID:          userID,
		Recommendations: recs,
		Count:           len(recs),
		GeneratedAt:     time.Now(),
	})
}

// Trending handles GET /api/v1/recommendations/trending.
func (h *RecommendationHandler) Trending(c *gin.Context) {
	var query models.TrendingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "INVALID_QUERY", "Invalid query parameters")
		return
	}
	if err := h.validate.Struct(&query); err != nil {
		badRequest(c, "INVALID_QUERY", "limit must be between 1 and 100")
		return
	}

	trending, err := h.catalog.Trending(c.Request.Context(), query.Category, query.Limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch trending products")
		internalError(c, "TRENDING_FAILED", "Failed to fetch trending products")
		return
	}

	c.JSON(http.StatusOK, models.TrendingResponse{
		Category: query.Category,
		Trending: trending,
		Count:    len(trending),
	})
}

func (h *RecommendationHandler) bindQuery(c *gin.Context, query *models.RecommendationQuery) bool {
	if err := c.ShouldBindQuery(query); err != nil {
		badRequest(c, "INVALID_QUERY", "Invalid query parameters")
		return false
	}
	if err := h.validate.Struct(query); err != nil {
		badRequest(c, "INVALID_QUERY", "limit must be between 1 and 100")
		return false
	}
	return true
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": gin.H{"code": code, "message": message},
	})
}

func internalError(c *gin.Context, code, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{"code": code, "message": message},
	})
}
