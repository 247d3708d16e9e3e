package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshmind/recommender/internal/domain"
)

var summaryNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func summaryCatalog() []domain.Product {
	return []domain.Product{
		{ID: 7, Name: "비건 두부 밀키트", Category: "간편식/밀키트"},
		{ID: 12, Name: "유기농 바나나", Category: "과일"},
		{ID: 21, Name: "무항생제 계란", Category: "유제품/계란"},
	}
}

func purchase(productID, quantity, daysBack int) domain.PurchaseEvent {
	return domain.PurchaseEvent{
		ProductID:   productID,
		Quantity:    quantity,
		PurchasedAt: summaryNow.AddDate(0, 0, -daysBack),
	}
}

func newTestSummarizer() *Summarizer {
	return NewSummarizer(WithClock(func() time.Time { return summaryNow }))
}

func TestSummarizeEmptyHistory(t *testing.T) {
	got := newTestSummarizer().Summarize(1, nil, summaryCatalog(), 30)

	assert.Equal(t, 1, got.UserID)
	assert.Equal(t, "last_30_days", got.Period)
	assert.Zero(t, got.TotalPurchases)
	assert.Empty(t, got.TopProducts)
	assert.Empty(t, got.RepeatPurchases)
	assert.Empty(t, got.RecentTrends)
	assert.Empty(t, got.CategoryPreferences)
}

func TestSummarizeWeightedAggregation(t *testing.T) {
	history := []domain.PurchaseEvent{
		purchase(7, 1, 2),
		purchase(7, 2, 6),
		purchase(7, 1, 20),
		purchase(12, 4, 10),
		purchase(21, 1, 3),
		purchase(99, 1, 1),  // not in catalog
		purchase(7, 1, 40),  // outside window
	}

	got := newTestSummarizer().Summarize(1, history, summaryCatalog(), 30)

	assert.Equal(t, 5, got.TotalPurchases)

	require.Len(t, got.TopProducts, 3)
	assert.Equal(t, 7, got.TopProducts[0].ProductID)
	assert.Equal(t, 12, got.TopProducts[1].ProductID)
	assert.Equal(t, 21, got.TopProducts[2].ProductID)

	// Product 7: (1.5 + 1.5*1.2 + 1.2) per event, then the x1.3 repeat
	// bonus applied once to the aggregate.
	assert.InDelta(t, 5.85, got.TopProducts[0].WeightedScore, 1e-9)
	assert.Equal(t, 3, got.TopProducts[0].PurchaseCount)
	assert.Equal(t, 4, got.TopProducts[0].TotalQuantity)
	require.NotNil(t, got.TopProducts[0].LastPurchased)
	assert.Equal(t, summaryNow.AddDate(0, 0, -2), *got.TopProducts[0].LastPurchased)

	assert.InDelta(t, 1.8, got.TopProducts[1].WeightedScore, 1e-9)
	assert.InDelta(t, 1.5, got.TopProducts[2].WeightedScore, 1e-9)
}

func TestSummarizeRepeatPurchases(t *testing.T) {
	history := []domain.PurchaseEvent{
		purchase(7, 1, 2),
		purchase(7, 1, 6),
		purchase(7, 1, 20),
		purchase(12, 1, 10),
		purchase(12, 1, 12),
	}

	got := newTestSummarizer().Summarize(1, history, summaryCatalog(), 30)

	require.Len(t, got.RepeatPurchases, 1)
	assert.Equal(t, 7, got.RepeatPurchases[0].ProductID)
	assert.Equal(t, 3, got.RepeatPurchases[0].PurchaseCount)
}

func TestSummarizeRecentTrends(t *testing.T) {
	history := []domain.PurchaseEvent{
		purchase(7, 1, 2),
		purchase(21, 1, 3),
		purchase(12, 1, 10), // last purchase older than a week
	}

	got := newTestSummarizer().Summarize(1, history, summaryCatalog(), 30)

	require.Len(t, got.RecentTrends, 2)
	assert.Equal(t, 7, got.RecentTrends[0].ProductID)
	assert.Equal(t, 21, got.RecentTrends[1].ProductID)
}

func TestSummarizeCategoryPreferencesSumToOne(t *testing.T) {
	history := []domain.PurchaseEvent{
		purchase(7, 1, 2),
		purchase(7, 2, 6),
		purchase(7, 1, 20),
		purchase(12, 4, 10),
		purchase(21, 1, 3),
	}

	got := newTestSummarizer().Summarize(1, history, summaryCatalog(), 30)

	var sum float64
	for _, weight := range got.CategoryPreferences {
		assert.Greater(t, weight, 0.0)
		sum += weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, got.CategoryPreferences["간편식/밀키트"], got.CategoryPreferences["과일"])
}

func TestSummarizeUncategorizedProductsBucketed(t *testing.T) {
	catalog := []domain.Product{{ID: 50, Name: "기획 세트"}}
	history := []domain.PurchaseEvent{purchase(50, 1, 1)}

	got := newTestSummarizer().Summarize(1, history, catalog, 30)

	assert.Contains(t, got.CategoryPreferences, "기타")
}

func TestSummarizeDefaultWindow(t *testing.T) {
	got := newTestSummarizer().Summarize(1, nil, summaryCatalog(), 0)
	assert.Equal(t, "last_30_days", got.Period)
}
