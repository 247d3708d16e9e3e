package domain

import "time"

// Recommendation is one entry of the engine's caller-facing output.
// ProductID always resolves against the catalog that produced it.
type Recommendation struct {
	ProductID      int     `json:"product_id"`
	Name           string  `json:"name"`
	Reason         string  `json:"reason"`
	RelevanceScore float64 `json:"relevance_score"` // 0..1
}

// RecommendationSource tells the caller how a result set was produced.
type RecommendationSource string

const (
	// SourceOracle means the ranking oracle supplied the ordering.
	SourceOracle RecommendationSource = "oracle"
	// SourceFallback means the oracle failed and the deterministic
	// candidate ranking was used instead.
	SourceFallback RecommendationSource = "fallback"
	// SourceEmptyCatalog means there was nothing to recommend. Not an error.
	SourceEmptyCatalog RecommendationSource = "empty_catalog"
)

// Sentiment is the oracle's read of the shopper's message.
type Sentiment struct {
	Label    string   `json:"sentiment"` // "positive", "neutral", "negative"
	Score    float64  `json:"score"`     // 0..1
	Keywords []string `json:"keywords"`
}

// InsightProduct is one product's aggregate inside an InsightSummary.
type InsightProduct struct {
	ProductID     int        `json:"product_id"`
	Name          string     `json:"product_name"`
	Category      string     `json:"category"`
	PurchaseCount int        `json:"purchase_count"`
	TotalQuantity int        `json:"total_quantity"`
	WeightedScore float64    `json:"weighted_score"`
	LastPurchased *time.Time `json:"last_purchased,omitempty"`
}

// InsightSummary is the per-user output of the purchase insight summarizer.
// Category preference weights sum to 1.0 across categories with any score
// mass; an empty history yields an all-empty summary, never an error.
type InsightSummary struct {
	UserID              int                `json:"user_id"`
	Period              string             `json:"period"` // e.g. "last_30_days"
	TotalPurchases      int                `json:"total_purchases"`
	TopProducts         []InsightProduct   `json:"top_products"`
	RepeatPurchases     []InsightProduct   `json:"repeat_purchases"`
	RecentTrends        []InsightProduct   `json:"recent_trends"`
	CategoryPreferences map[string]float64 `json:"category_preferences"`
}
