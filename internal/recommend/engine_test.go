package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshmind/recommender/internal/domain"
)

// Forty-product catalog with productID 7 a meal-kit bought three times in
// the last ten days. The repeat-purchase tier must put it first.
func TestEngineRepeatPurchaseRanksFirst(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	var catalog []domain.Product
	for i := 1; i <= 40; i++ {
		category := "해산물"
		if i == 7 {
			category = "간편식/밀키트"
		}
		catalog = append(catalog, domain.Product{
			ID:       i,
			Name:     fmt.Sprintf("상품%d", i),
			Category: category,
		})
	}

	history := []domain.PurchaseEvent{
		{ProductID: 7, Quantity: 1, PurchasedAt: now.AddDate(0, 0, -2)},
		{ProductID: 7, Quantity: 1, PurchasedAt: now.AddDate(0, 0, -6)},
		{ProductID: 7, Quantity: 1, PurchasedAt: now.AddDate(0, 0, -9)},
	}
	user := domain.UserProfile{Gender: "F", AgeGroup: "30s"}

	profile := Analyze(history, catalog, now)
	assert.Equal(t, 75.0, PurchaseScore(&catalog[6], profile)) // 60 + 5*3

	candidates := SelectCandidates(catalog, profile, &user, DefaultCandidateCap)
	require.Len(t, candidates, DefaultCandidateCap)
	assert.Equal(t, 7, candidates[0].Product.ID)

	// End to end with a failing oracle the result stays deterministic and
	// still leads with the repeat purchase.
	engine := NewEngine(&fakeRanker{err: errors.New("down")}, WithClock(func() time.Time { return now }))
	result := engine.Recommend(context.Background(), "저녁 추천해줘", nil, user, history, catalog)

	assert.Equal(t, domain.SourceFallback, result.Source)
	require.GreaterOrEqual(t, len(result.Recommendations), MinRecommendations)
	assert.Equal(t, 7, result.Recommendations[0].ProductID)
}

func TestEngineEmptyCatalog(t *testing.T) {
	engine := NewEngine(nil)
	result := engine.Recommend(context.Background(), "뭐 먹지", nil, domain.UserProfile{}, nil, nil)

	assert.Empty(t, result.Recommendations)
	assert.Equal(t, domain.SourceEmptyCatalog, result.Source)
}

func TestEngineBoundsWithSmallCatalog(t *testing.T) {
	catalog := []domain.Product{
		{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "c"}, {ID: 4, Name: "d"},
	}

	engine := NewEngine(nil)
	result := engine.Recommend(context.Background(), "추천", nil, domain.UserProfile{}, nil, catalog)

	assert.GreaterOrEqual(t, len(result.Recommendations), MinRecommendations)
	assert.LessOrEqual(t, len(result.Recommendations), MaxRecommendations)
	for _, r := range result.Recommendations {
		assert.Contains(t, []int{1, 2, 3, 4}, r.ProductID)
	}
}
