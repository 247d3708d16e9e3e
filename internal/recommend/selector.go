package recommend

import (
	"sort"

	"github.com/freshmind/recommender/internal/domain"
)

// DefaultCandidateCap bounds the payload handed to the ranking oracle.
// It exists for cost and latency control, not correctness; it must stay
// at or above MinRecommendations so the fallback can always fill the
// minimum result count.
const DefaultCandidateCap = 30

// ScoredCandidate pairs a product with its multi-factor score.
type ScoredCandidate struct {
	Product domain.Product
	Score   float64
}

// SelectCandidates scores the whole catalog and returns the top cap
// products in descending score order. Ties keep catalog iteration order
// (stable sort). A cap below MinRecommendations is raised to it.
func SelectCandidates(catalog []domain.Product, prof *PurchaseProfile, user *domain.UserProfile, cap int) []ScoredCandidate {
	if cap < MinRecommendations {
		cap = MinRecommendations
	}

	scored := make([]ScoredCandidate, 0, len(catalog))
	for _, p := range catalog {
		p := p
		scored = append(scored, ScoredCandidate{Product: p, Score: Score(&p, prof, user)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > cap {
		scored = scored[:cap]
	}
	return scored
}
