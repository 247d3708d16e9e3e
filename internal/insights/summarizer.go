// Package insights turns a user's raw purchase history into a weighted
// summary: top products, repeat purchases, recent trends, and a category
// preference distribution.
package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/freshmind/recommender/internal/domain"
)

const (
	// DefaultWindowDays is the lookback period when the caller does not
	// specify one.
	DefaultWindowDays = 30

	topProductLimit  = 3
	repeatThreshold  = 3
	trendWindowDays  = 7
	fallbackCategory = "기타"
)

// Summarizer aggregates purchase events into an InsightSummary.
type Summarizer struct {
	now func() time.Time
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Summarizer) { s.now = now }
}

// NewSummarizer creates a Summarizer with the given options.
func NewSummarizer(opts ...Option) *Summarizer {
	s := &Summarizer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// productStats is the per-product accumulator.
type productStats struct {
	product       domain.InsightProduct
	lastPurchased time.Time
}

// Summarize builds the per-user summary over the trailing windowDays.
// Events outside the window or referencing products missing from the
// catalog are skipped. An empty history yields an all-empty summary.
func (s *Summarizer) Summarize(userID int, history []domain.PurchaseEvent, catalog []domain.Product, windowDays int) domain.InsightSummary {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	summary := domain.InsightSummary{
		UserID:              userID,
		Period:              fmt.Sprintf("last_%d_days", windowDays),
		TopProducts:         []domain.InsightProduct{},
		RepeatPurchases:     []domain.InsightProduct{},
		RecentTrends:        []domain.InsightProduct{},
		CategoryPreferences: map[string]float64{},
	}

	byID := make(map[int]domain.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	now := s.now()
	windowStart := now.AddDate(0, 0, -windowDays)

	stats := make(map[int]*productStats)
	total := 0
	for _, ev := range history {
		if ev.PurchasedAt.Before(windowStart) {
			continue
		}
		product, ok := byID[ev.ProductID]
		if !ok {
			continue
		}
		total++

		st, ok := stats[ev.ProductID]
		if !ok {
			st = &productStats{product: domain.InsightProduct{
				ProductID: product.ID,
				Name:      product.Name,
				Category:  product.Category,
			}}
			stats[ev.ProductID] = st
		}
		st.product.PurchaseCount++
		st.product.TotalQuantity += ev.Quantity
		st.product.WeightedScore += TimeWeight(ev.PurchasedAt, now) * QuantityWeight(ev.Quantity)
		if ev.PurchasedAt.After(st.lastPurchased) {
			st.lastPurchased = ev.PurchasedAt
		}
	}

	if total == 0 {
		return summary
	}
	summary.TotalPurchases = total

	ranked := make([]domain.InsightProduct, 0, len(stats))
	for _, st := range stats {
		st.product.WeightedScore *= RepeatBonus(st.product.PurchaseCount)
		last := st.lastPurchased
		st.product.LastPurchased = &last
		ranked = append(ranked, st.product)
	}

	// Product ID first so score ties come out deterministic.
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].ProductID < ranked[j].ProductID })
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].WeightedScore > ranked[j].WeightedScore })

	summary.TopProducts = append(summary.TopProducts, ranked[:min(topProductLimit, len(ranked))]...)

	for _, p := range ranked {
		if p.PurchaseCount >= repeatThreshold {
			summary.RepeatPurchases = append(summary.RepeatPurchases, p)
			if len(summary.RepeatPurchases) == topProductLimit {
				break
			}
		}
	}

	trendStart := now.AddDate(0, 0, -trendWindowDays)
	for _, p := range ranked {
		if p.LastPurchased != nil && !p.LastPurchased.Before(trendStart) {
			summary.RecentTrends = append(summary.RecentTrends, p)
			if len(summary.RecentTrends) == topProductLimit {
				break
			}
		}
	}

	var totalScore float64
	for _, p := range ranked {
		totalScore += p.WeightedScore
	}
	if totalScore > 0 {
		for _, p := range ranked {
			category := p.Category
			if category == "" {
				category = fallbackCategory
			}
			summary.CategoryPreferences[category] += p.WeightedScore / totalScore
		}
	}

	return summary
}
