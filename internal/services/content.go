package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/shopstream/recommender/internal/search"
	"github.com/shopstream/recommender/pkg/models"
)

// ContentRecommender adapts the search index's relevance features into
// recommendation candidates: "more like this" similarity plus category,
// brand and trending popularity queries.
type ContentRecommender struct {
	solr   *search.Client
	logger *logrus.Logger
}

func NewContentRecommender(solr *search.Client, logger *logrus.Logger) *ContentRecommender {
	return &ContentRecommender{solr: solr, logger: logger}
}

// SimilarProducts returns index-scored candidates similar to the seed
// product. An unknown seed yields an empty slice.
func (c *ContentRecommender) SimilarProducts(ctx context.Context, productID string, k int) ([]models.ScoredCandidate, error) {
	docs, err := c.solr.MoreLikeThis(ctx, productID, k)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.ScoredCandidate, 0, len(docs))
	for _, doc := range docs {
		score := doc.Score
		if score == 0 {
			// The index matched the document but omitted a score; treat the
			// match itself as full relevance.
			score = 1.0
		}
		candidates = append(candidates, models.ScoredCandidate{
			ProductID: doc.ID,
			Score:     score,
		})
	}
	return candidates, nil
}

// TopByCategory returns the most popular products of a category, excluding
// one optional id.
func (c *ContentRecommender) TopByCategory(ctx context.Context, category, excludeID string, k int) ([]models.Product, error) {
	docs, err := c.solr.TopByCategory(ctx, category, excludeID, k)
	if err != nil {
		return nil, err
	}
	return products(docs), nil
}

// TopByBrand returns the most popular products of a brand, excluding one
// optional id.
func (c *ContentRecommender) TopByBrand(ctx context.Context, brand, excludeID string, k int) ([]models.Product, error) {
	docs, err := c.solr.TopByBrand(ctx, brand, excludeID, k)
	if err != nil {
		return nil, err
	}
	return products(docs), nil
}

// Trending returns products ranked by recent sales, optionally scoped to a
// category.
func (c *ContentRecommender) Trending(ctx context.Context, category string, k int) ([]models.Product, error) {
	docs, err := c.solr.Trending(ctx, category, k)
	if err != nil {
		return nil, err
	}
	return products(docs), nil
}

// GetProduct resolves full product detail, (nil, nil) when the product no
// longer exists.
func (c *ContentRecommender) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	return c.solr.GetProduct(ctx, productID)
}

func products(docs []search.ScoredDoc) []models.Product {
	out := make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Product)
	}
	return out
}
