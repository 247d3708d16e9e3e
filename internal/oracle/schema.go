package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/freshmind/recommender/internal/domain"
	"github.com/freshmind/recommender/internal/intent"
	"github.com/freshmind/recommender/internal/recommend"
)

// Strict response schemas. Pointer fields distinguish "absent" from zero
// values; a missing required field invalidates the entry (ranking) or the
// whole response (intent, sentiment).

type intentPayload struct {
	NeedsProductRecommendation *bool  `json:"needs_product_recommendation"`
	IntentType                 string `json:"intent_type"`
	Reason                     string `json:"reason"`
}

func parseIntent(raw string) (intent.Analysis, error) {
	var p intentPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &p); err != nil {
		return intent.Analysis{}, fmt.Errorf("parsing intent response: %w (body: %s)", err, raw)
	}
	if p.NeedsProductRecommendation == nil || p.IntentType == "" {
		return intent.Analysis{}, fmt.Errorf("intent response missing required fields (body: %s)", raw)
	}
	return intent.Analysis{
		NeedsRecommendation: *p.NeedsProductRecommendation,
		IntentType:          intent.Type(p.IntentType),
		Reason:              p.Reason,
	}, nil
}

type sentimentPayload struct {
	Sentiment string   `json:"sentiment"`
	Score     *float64 `json:"score"`
	Keywords  []string `json:"keywords"`
}

func parseSentiment(raw string) (domain.Sentiment, error) {
	var p sentimentPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &p); err != nil {
		return domain.Sentiment{}, fmt.Errorf("parsing sentiment response: %w (body: %s)", err, raw)
	}
	switch p.Sentiment {
	case "positive", "neutral", "negative":
	default:
		return domain.Sentiment{}, fmt.Errorf("sentiment response has unknown label %q", p.Sentiment)
	}
	if p.Score == nil || *p.Score < 0 || *p.Score > 1 {
		return domain.Sentiment{}, fmt.Errorf("sentiment response score out of range")
	}
	return domain.Sentiment{Label: p.Sentiment, Score: *p.Score, Keywords: p.Keywords}, nil
}

type rankingPayload struct {
	Recommendations []rankedEntryPayload `json:"recommendations"`
}

type rankedEntryPayload struct {
	ProductID      *int     `json:"product_id"`
	Reason         string   `json:"reason"`
	RelevanceScore *float64 `json:"relevance_score"`
}

// parseRanking validates the ranking response. Individual malformed entries
// are dropped, not fatal; only an unparseable body or a missing
// recommendations array is an error.
func parseRanking(raw string) ([]recommend.RankedEntry, error) {
	var p rankingPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &p); err != nil {
		return nil, fmt.Errorf("parsing ranking response: %w (body: %s)", err, raw)
	}
	if p.Recommendations == nil {
		return nil, fmt.Errorf("ranking response missing recommendations array (body: %s)", raw)
	}

	entries := make([]recommend.RankedEntry, 0, len(p.Recommendations))
	for _, e := range p.Recommendations {
		if e.ProductID == nil || e.Reason == "" || e.RelevanceScore == nil {
			continue
		}
		if *e.RelevanceScore < 0 || *e.RelevanceScore > 1 {
			continue
		}
		entries = append(entries, recommend.RankedEntry{
			ProductID:      *e.ProductID,
			Reason:         e.Reason,
			RelevanceScore: *e.RelevanceScore,
		})
	}
	return entries, nil
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
