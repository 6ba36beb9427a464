package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopstream/recommender/pkg/models"
)

type stubFusion struct {
	fused        []models.FusedRecommendation
	personalized []models.FusedRecommendation
	err          error

	lastProductID string
	lastUserID    string
	lastK         int
}

func (s *stubFusion) Fuse(ctx context.Context, productID, userID string, k int) ([]models.FusedRecommendation, error) {
	s.lastProductID, s.lastUserID, s.lastK = productID, userID, k
	return s.fused, s.err
}

func (s *stubFusion) PersonalizedRecommendations(ctx context.Context, userID string, k int) ([]models.FusedRecommendation, error) {
	s.lastUserID, s.lastK = userID, k
	return s.personalized, s.err
}

type stubCatalog struct {
	trending     []models.Product
	err          error
	lastCategory string
}

func (s *stubCatalog) Trending(ctx context.Context, category string, k int) ([]models.Product, error) {
	s.lastCategory = category
	return s.trending, s.err
}

func newTestRouter(fusion *stubFusion, catalog *stubCatalog) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	h := NewRecommendationHandler(fusion, catalog, logger)
	router := gin.New()
	router.GET("/api/v1/recommendations/similar/:productId", h.SimilarProducts)
	router.GET("/api/v1/recommendations/user/:userId", h.ForUser)
	router.GET("/api/v1/recommendations/trending", h.Trending)
	return router
}

func TestSimilarProducts(t *testing.T) {
	fusion := &stubFusion{
		fused: []models.FusedRecommendation{
			{ProductID: "PROD00002", CombinedScore: 0.6, Product: &models.Product{ID: "PROD00002"}},
		},
	}
	router := newTestRouter(fusion, &stubCatalog{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/similar/PROD00001?user_id=u1&limit=5", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SimilarProductsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PROD00001", resp.ProductID)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "PROD00002", resp.Recommendations[0].ProductID)

	assert.Equal(t, "PROD00001", fusion.lastProductID)
	assert.Equal(t, "u1", fusion.lastUserID)
	assert.Equal(t, 5, fusion.lastK)
}

func TestSimilarProducts_DefaultLimit(t *testing.T) {
	fusion := &stubFusion{}
	router := newTestRouter(fusion, &stubCatalog{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/similar/PROD00001", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, fusion.lastK)
	assert.Equal(t, "", fusion.lastUserID)
}

func TestSimilarProducts_LimitOutOfRange(t *testing.T) {
	router := newTestRouter(&stubFusion{}, &stubCatalog{})

	for _, limit := range []string{"0", "101", "-3"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/similar/PROD00001?limit="+limit, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
	}
}

func TestSimilarProducts_FusionError(t *testing.T) {
	fusion := &stubFusion{err: errors.New("boom")}
	router := newTestRouter(fusion, &stubCatalog{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/similar/PROD00001", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestForUser(t *testing.T) {
	fusion := &stubFusion{
		personalized: []models.FusedRecommendation{
			{ProductID: "PROD00009", CombinedScore: 0.9, Product: &models.Product{ID: "PROD00009"}},
		},
	}
	router := newTestRouter(fusion, &stubCatalog{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/user/user-42?limit=3", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.UserRecommendationsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user-42", resp.UserID)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 3, fusion.lastK)
}

func TestForUser_EmptyResult(t *testing.T) {
	router := newTestRouter(&stubFusion{}, &stubCatalog{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/user/stranger", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.UserRecommendationsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
}

func TestTrending(t *testing.T) {
	catalog := &stubCatalog{
		trending: []models.Product{{ID: "PROD00005"}, {ID: "PROD00006"}},
	}
	router := newTestRouter(&stubFusion{}, catalog)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/trending?category=Electronics", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.TrendingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Electronics", resp.Category)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "Electronics", catalog.lastCategory)
}

func TestTrending_UpstreamError(t *testing.T) {
	catalog := &stubCatalog{err: errors.New("solr down")}
	router := newTestRouter(&stubFusion{}, catalog)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/trending", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
