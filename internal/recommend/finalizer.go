package recommend

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/freshmind/recommender/internal/domain"
)

// Output bounds. Whenever the catalog is non-empty the finalizer returns at
// least MinRecommendations entries (fewer only if the catalog itself is
// smaller) and never more than MaxRecommendations.
const (
	MinRecommendations = 3
	MaxRecommendations = 5
)

// paddedRelevance is the fixed moderate relevance assigned to entries filled
// in from the deterministic candidate ranking.
const paddedRelevance = 0.7

// paddedReason tags deterministically padded entries.
const paddedReason = "구매 이력과 인기도를 바탕으로 추천하는 상품이에요"

// CandidateView is the reduced product view serialized into the ranking
// oracle request.
type CandidateView struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Description  string   `json:"description,omitempty"`
	TargetAge    []string `json:"target_age,omitempty"`
	TargetGender string   `json:"target_gender,omitempty"`
	UsedIn       []string `json:"used_in,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// RankRequest is the payload handed to the ranking oracle.
type RankRequest struct {
	Message         string
	Keywords        []string
	PurchaseSummary string
	UserGender      string
	UserAgeGroup    string
	Candidates      []CandidateView
}

// RankedEntry is one validated entry of the oracle's response.
type RankedEntry struct {
	ProductID      int     `json:"product_id"`
	Reason         string  `json:"reason"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Ranker is the external ranking oracle. Implementations are treated as
// untrusted and fallible: any error or malformed response triggers the
// deterministic fallback.
type Ranker interface {
	RankProducts(ctx context.Context, req RankRequest) ([]RankedEntry, error)
}

// Finalize sends the candidate pool to the ranking oracle and enforces the
// output contract: every productID resolves against the original catalog
// (the oracle is not trusted to echo only IDs it was given), duplicates are
// dropped preserving oracle order, results are padded from the candidate
// ranking up to MinRecommendations and truncated at MaxRecommendations.
// Oracle failure degrades to the deterministic top candidates; it never
// produces an error or an empty result while candidates exist.
func Finalize(
	ctx context.Context,
	ranker Ranker,
	message string,
	sentimentKeywords []string,
	candidates []ScoredCandidate,
	user *domain.UserProfile,
	prof *PurchaseProfile,
	catalog []domain.Product,
) ([]domain.Recommendation, domain.RecommendationSource) {
	if len(catalog) == 0 {
		return nil, domain.SourceEmptyCatalog
	}

	byID := make(map[int]domain.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	var (
		recs   []domain.Recommendation
		seen   = make(map[int]bool)
		source = domain.SourceFallback
	)

	if ranker != nil {
		req := RankRequest{
			Message:         message,
			Keywords:        sentimentKeywords,
			PurchaseSummary: BuildPurchaseSummary(prof),
			UserGender:      user.Gender,
			UserAgeGroup:    user.AgeGroup,
			Candidates:      candidateViews(candidates),
		}

		entries, err := ranker.RankProducts(ctx, req)
		if err != nil {
			log.Printf("recommend: ranking oracle failed, using deterministic fallback: %v", err)
		} else {
			for _, e := range entries {
				product, ok := byID[e.ProductID]
				if !ok || seen[e.ProductID] {
					continue // unknown or duplicate ID: dropped, not fatal
				}
				if e.Reason == "" || e.RelevanceScore < 0 || e.RelevanceScore > 1 {
					continue
				}
				seen[e.ProductID] = true
				recs = append(recs, domain.Recommendation{
					ProductID:      e.ProductID,
					Name:           product.Name,
					Reason:         e.Reason,
					RelevanceScore: e.RelevanceScore,
				})
				if len(recs) == MaxRecommendations {
					break
				}
			}
			if len(recs) > 0 {
				source = domain.SourceOracle
			}
		}
	}

	// Pad deterministically from the top of the candidate ranking until the
	// minimum count is reached.
	for _, c := range candidates {
		if len(recs) >= MinRecommendations {
			break
		}
		if seen[c.Product.ID] {
			continue
		}
		seen[c.Product.ID] = true
		recs = append(recs, domain.Recommendation{
			ProductID:      c.Product.ID,
			Name:           c.Product.Name,
			Reason:         paddedReason,
			RelevanceScore: paddedRelevance,
		})
	}

	return recs, source
}

func candidateViews(candidates []ScoredCandidate) []CandidateView {
	views := make([]CandidateView, 0, len(candidates))
	for _, c := range candidates {
		views = append(views, CandidateView{
			ID:           c.Product.ID,
			Name:         c.Product.Name,
			Category:     c.Product.Category,
			Description:  c.Product.Description,
			TargetAge:    c.Product.TargetAge,
			TargetGender: string(c.Product.EffectiveTargetGender()),
			UsedIn:       c.Product.UsedIn,
			Tags:         c.Product.Tags,
		})
	}
	return views
}

// BuildPurchaseSummary renders the profile as a short natural-language
// summary for the oracle prompt.
func BuildPurchaseSummary(prof *PurchaseProfile) string {
	if prof == nil || len(prof.Counts) == 0 {
		return "구매 이력이 없는 고객입니다."
	}

	total := 0
	for _, n := range prof.Counts {
		total += n
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "총 %d회 구매한 고객입니다.", total)
	if len(prof.TopCategories) > 0 {
		fmt.Fprintf(&sb, " 자주 구매하는 카테고리: %s.", strings.Join(prof.TopCategories, ", "))
	}
	if len(prof.RecentCategories) > 0 {
		recent := make([]string, 0, len(prof.RecentCategories))
		for c := range prof.RecentCategories {
			recent = append(recent, c)
		}
		sort.Strings(recent)
		fmt.Fprintf(&sb, " 최근 30일 구매 카테고리: %s.", strings.Join(recent, ", "))
	}
	return sb.String()
}
