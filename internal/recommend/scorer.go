package recommend

import (
	"github.com/freshmind/recommender/internal/domain"
)

// Sub-score weights. Tunable, but changing them shifts the balance between
// personal history, demographic fit, and raw popularity.
const (
	weightPurchase   = 0.5
	weightProfile    = 0.3
	weightPopularity = 0.1
)

// Purchase tier scores. Tiers must not overlap in achievable range: a
// repeat purchase always outranks a same-category-but-never-bought product.
const (
	repeatPurchaseBase  = 60.0
	repeatPurchasePer   = 5.0
	recentCategoryScore = 60.0 // 40 base + 20 recency bonus
	topCategoryScore    = 20.0
)

// Profile sub-score bonuses.
const (
	ageMatchBonus    = 30.0
	genderMatchBonus = 20.0
	stapleBonus      = 7.5
)

// Popularity saturates at popularityMax; popularityCalibration reviews is
// the calibration point for "very popular".
const (
	popularityCalibration = 2000.0
	popularityMax         = 10.0
)

// stapleCategories have broad appeal independent of demographics.
var stapleCategories = map[string]bool{
	"간편식/밀키트": true,
	"과일":      true,
	"채소":      true,
}

// purchaseTier is one entry of the ordered tier table. The first tier whose
// predicate matches wins; tiers never sum.
type purchaseTier struct {
	name    string
	applies func(p *domain.Product, prof *PurchaseProfile) bool
	score   func(p *domain.Product, prof *PurchaseProfile) float64
}

var purchaseTiers = []purchaseTier{
	{
		name:    "repeat_purchase",
		applies: func(p *domain.Product, prof *PurchaseProfile) bool { return prof.Purchased(p.ID) },
		score: func(p *domain.Product, prof *PurchaseProfile) float64 {
			return repeatPurchaseBase + repeatPurchasePer*float64(prof.Counts[p.ID])
		},
	},
	{
		name:    "recent_category",
		applies: func(p *domain.Product, prof *PurchaseProfile) bool { return prof.RecentCategories[p.Category] },
		score:   func(*domain.Product, *PurchaseProfile) float64 { return recentCategoryScore },
	},
	{
		name:    "top_category",
		applies: func(p *domain.Product, prof *PurchaseProfile) bool { return prof.HasTopCategory(p.Category) },
		score:   func(*domain.Product, *PurchaseProfile) float64 { return topCategoryScore },
	},
}

// PurchaseScore evaluates the tier table in priority order, highest tier
// wins. A product with no history signal scores zero.
func PurchaseScore(p *domain.Product, prof *PurchaseProfile) float64 {
	for _, tier := range purchaseTiers {
		if tier.applies(p, prof) {
			return tier.score(p, prof)
		}
	}
	return 0
}

// ProfileScore scores demographic fit: age bracket, gender targeting, and a
// flat bonus for staple grocery categories.
func ProfileScore(p *domain.Product, user *domain.UserProfile) float64 {
	score := 0.0
	if p.MatchesAgeGroup(user.AgeGroup) {
		score += ageMatchBonus
	}
	if p.MatchesGender(user.Gender) {
		score += genderMatchBonus
	}
	if stapleCategories[p.Category] {
		score += stapleBonus
	}
	return score
}

// PopularityScore maps review count onto a saturating 0..10 scale so very
// popular products cannot dominate personalization.
func PopularityScore(p *domain.Product) float64 {
	score := float64(p.ReviewCount) / popularityCalibration * popularityMax
	if score > popularityMax {
		return popularityMax
	}
	return score
}

// Score combines the three weighted sub-scores. Purely deterministic, no I/O.
func Score(p *domain.Product, prof *PurchaseProfile, user *domain.UserProfile) float64 {
	return weightPurchase*PurchaseScore(p, prof) +
		weightProfile*ProfileScore(p, user) +
		weightPopularity*PopularityScore(p)
}
