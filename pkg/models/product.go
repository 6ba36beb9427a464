package models

import "time"

// Product is the catalog record stored in the search index. The recommender
// treats it as opaque detail data resolved after ranking.
type Product struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Brand           string    `json:"brand"`
	Price           float64   `json:"price"`
	Rating          float64   `json:"rating"`
	NumReviews      int       `json:"num_reviews"`
	ViewCount       int       `json:"view_count"`
	SalesLast30Days int       `json:"sales_last_30_days"`
	ReleaseDate     time.Time `json:"release_date"`
	DiscountPercent int       `json:"discount_percent"`
	InStock         bool      `json:"in_stock"`
	Tags            []string  `json:"tags,omitempty"`
	PopularityScore float64   `json:"popularity_score"`
}
