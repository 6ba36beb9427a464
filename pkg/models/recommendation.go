package models

import "time"

// ScoredCandidate is a transient (product, score) pair produced by a single
// recommendation source. It is never persisted.
type ScoredCandidate struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
}

// FusedRecommendation is one entry of the hybrid output list. CombinedScore is
// a weighted sum across sources; the weights are not normalized to 1.0, so it
// is not a probability.
type FusedRecommendation struct {
	ProductID     string   `json:"product_id"`
	CombinedScore float64  `json:"combined_score"`
	Product       *Product `json:"product,omitempty"`
}

// SimilarProductsResponse is returned by the similar-products endpoint.
type SimilarProductsResponse struct {
	ProductID       string                `json:"product_id"`
	Recommendations []FusedRecommendation `json:"recommendations"`
	Count           int                   `json:"count"`
	GeneratedAt     time.Time             `json:"generated_at"`
}

// UserRecommendationsResponse is returned by the personalized endpoint.
type UserRecommendationsResponse struct {
	UserID          string                `json:"user_id"`
	Recommendations []FusedRecommendation `json:"recommendations"`
	Count           int                   `json:"count"`
	GeneratedAt     time.Time             `json:"generated_at"`
}

// TrendingResponse is returned by the trending endpoint.
type TrendingResponse struct {
	Category string    `json:"category,omitempty"`
	Trending []Product `json:"trending"`
	Count    int       `json:"count"`
}

// RecommendationQuery carries the query parameters shared by the
// recommendation endpoints.
type RecommendationQuery struct {
	Limit  int    `form:"limit,default=10" validate:"min=1,max=100"`
	UserID string `form:"user_id"`
}

// TrendingQuery carries the query parameters of the trending endpoint.
type TrendingQuery struct {
	Limit    int    `form:"limit,default=10" validate:"min=1,max=100"`
	Category string `form:"category"`
}
