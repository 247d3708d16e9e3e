package insights

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/osteele/liquid"

	"github.com/freshmind/recommender/internal/domain"
)

// BannerTemplate is one candidate banner for a shopper segment. Weight
// biases the random pick toward higher values.
type BannerTemplate struct {
	ID       int
	Template string
	Weight   float64
}

// defaultBannerTemplates holds Liquid templates keyed by "<ageGroup>_<gender>"
// (e.g. "20s_female"). The generic key "default" covers unmatched segments.
var defaultBannerTemplates = map[string][]BannerTemplate{
	"20s_female": {
		{ID: 1, Weight: 1.0, Template: `{{ user_name | default: "고객" }}님, 지난 한 달간 <strong>{{ count }}회</strong> 구매하셨네요!<br/>{{ products }} 같은 간편식을 자주 주문하시는 걸 보니 바쁜 일상 속에서도 꼼꼼하게 끼니를 챙기시는군요! 오늘도 간단하게 해결할 수 있는 상품을 준비했어요 🍱`},
		{ID: 2, Weight: 0.8, Template: `{{ user_name | default: "고객" }}님, 지난 한 달간 <strong>{{ count }}회</strong> 구매하셨네요!<br/>{{ products }}를 즐겨 주문하시는 걸 보니 가성비 좋은 상품을 잘 찾으시는군요! 오늘도 합리적인 가격의 상품을 추천해드릴게요 💰`},
		{ID: 3, Weight: 1.0, Template: `{{ user_name | default: "고객" }}님, 지난 한 달간 <strong>{{ count }}회</strong> 구매하셨네요!<br/>{{ most_purchased }}를 <strong>{{ repeat_count }}번</strong>이나 주문하시는 걸 보니 정말 좋아하시는군요! 비슷한 맛의 상품도 추천해드릴게요 🎯`},
	},
	"30s_male": {
		{ID: 1, Weight: 1.0, Template: `{{ user_name | default: "고객" }}님, 지난 한 달간 <strong>{{ count }}회</strong> 구매하셨네요!<br/>{{ products }} 같은 프리미엄 밀키트와 해산물을 즐겨 주문하시는 요리 고수시군요! 오늘 저녁도 맛있게 즐길 수 있는 상품을 추천해드릴게요 🍽️`},
		{ID: 2, Weight: 0.9, Template: `{{ user_name | default: "고객" }}님, 지난 한 달간 <strong>{{ count }}회</strong> 구매하셨네요!<br/>{{ products }} 같은 고급 식재료를 자주 주문하시는 걸 보니 퀄리티를 중시하시는군요! 오늘도 프리미엄 상품을 골라봤어요 ⭐`},
		{ID: 3, Weight: 1.0, Template: `{{ user_name | default: "고객" }}님, 지난 한 달간 <strong>{{ count }}회</strong> 구매하셨네요!<br/>{{ most_purchased }}를 <strong>{{ repeat_count }}번</strong>이나 주문하시는 걸 보니 정말 맛있게 드시는군요! 오늘도 비슷한 맛의 상품을 추천해드릴게요 🎯`},
	},
	"40s_female": {
		{ID: 1, Weight: 1.0, Template: `{{ user_name | default: "고객" }}님, 지난 한 달간 <strong>{{ count }}회</strong> 구매하셨네요!<br/>가족을 위한 {{ products }} 같은 건강식품을 자주 주문하시는 걸 보니 가족 건강을 최우선으로 생각하시는군요! 주말 가족 식사 준비해드릴게요 👨‍👩‍👧`},
		{ID: 2, Weight: 1.0, Template: `{{ user_name | default: "고객" }}님, 지난 한 달간 <strong>{{ count }}회</strong> 구매하셨네요!<br/>{{ most_purchased }}를 <strong>{{ repeat_count }}번</strong>이나 주문하시는 걸 보니 가족들이 정말 좋아하시는군요! 비슷한 상품도 추천해드릴게요 🎯`},
	},
	"default": {
		{ID: 1, Weight: 1.0, Template: `{{ user_name | default: "고객" }}님, 지난 한 달간 <strong>{{ count }}회</strong> 구매하셨네요!<br/>{{ top_category }} 상품을 즐겨 찾으시는군요! 오늘도 취향에 맞는 상품을 추천해드릴게요 🛒`},
	},
}

// BannerRenderer renders the purchase-summary banner through Liquid
// templates, with compiled templates cached per segment/ID.
type BannerRenderer struct {
	engine    *liquid.Engine
	templates map[string][]BannerTemplate
	cache     sync.Map // map[string]*liquid.Template
	randFloat func() float64
}

// BannerOption configures a BannerRenderer.
type BannerOption func(*BannerRenderer)

// WithBannerTemplates replaces the built-in template set.
func WithBannerTemplates(templates map[string][]BannerTemplate) BannerOption {
	return func(r *BannerRenderer) { r.templates = templates }
}

// WithRandFloat overrides the [0,1) source used for weighted selection.
// Used by tests.
func WithRandFloat(f func() float64) BannerOption {
	return func(r *BannerRenderer) { r.randFloat = f }
}

// NewBannerRenderer creates a renderer with the built-in Korean templates.
func NewBannerRenderer(opts ...BannerOption) *BannerRenderer {
	engine := liquid.NewEngine()
	engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		strVal := fmt.Sprintf("%v", value)
		if strVal == "" || strVal == "<nil>" {
			return defaultVal
		}
		return value
	})

	r := &BannerRenderer{
		engine:    engine,
		templates: defaultBannerTemplates,
		randFloat: rand.Float64,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces the banner line for a user's summary. Returns "" when
// there is nothing to summarize. Template errors degrade to "" with a log
// line rather than failing the request.
func (r *BannerRenderer) Render(user domain.UserProfile, summary domain.InsightSummary) string {
	if summary.TotalPurchases == 0 {
		return ""
	}

	key := segmentKey(user)
	templates, ok := r.templates[key]
	if !ok || len(templates) == 0 {
		templates = r.templates["default"]
	}
	if len(templates) == 0 {
		return ""
	}
	tpl := r.pick(templates)

	out, err := r.render(key, tpl, bannerVariables(user, summary))
	if err != nil {
		log.Printf("insights: banner render error (segment=%s, template=%d): %v", key, tpl.ID, err)
		return ""
	}
	return out
}

// pick does weighted random selection over the segment's templates.
func (r *BannerRenderer) pick(templates []BannerTemplate) BannerTemplate {
	var total float64
	for _, t := range templates {
		total += t.Weight
	}
	remaining := r.randFloat() * total
	for _, t := range templates {
		remaining -= t.Weight
		if remaining <= 0 {
			return t
		}
	}
	return templates[0]
}

func (r *BannerRenderer) render(segment string, tpl BannerTemplate, vars map[string]interface{}) (string, error) {
	cacheKey := fmt.Sprintf("%s/%d", segment, tpl.ID)
	if cached, ok := r.cache.Load(cacheKey); ok {
		return cached.(*liquid.Template).RenderString(vars)
	}

	compiled, err := r.engine.ParseString(tpl.Template)
	if err != nil {
		return "", err
	}
	r.cache.Store(cacheKey, compiled)
	return compiled.RenderString(vars)
}

// bannerVariables builds the Liquid context from a summary.
func bannerVariables(user domain.UserProfile, summary domain.InsightSummary) map[string]interface{} {
	names := make([]string, 0, len(summary.TopProducts))
	for _, p := range summary.TopProducts {
		names = append(names, p.Name)
	}

	mostPurchased := ""
	if len(summary.TopProducts) > 0 {
		mostPurchased = summary.TopProducts[0].Name
	}

	repeatCount := 0
	if len(summary.RepeatPurchases) > 0 {
		repeatCount = summary.RepeatPurchases[0].PurchaseCount
	}

	return map[string]interface{}{
		"user_name":      user.Name,
		"count":          summary.TotalPurchases,
		"products":       strings.Join(names, ", "),
		"most_purchased": mostPurchased,
		"repeat_count":   repeatCount,
		"top_category":   topCategory(summary.CategoryPreferences),
	}
}

// topCategory returns the highest-weight category, breaking ties by name
// so the output stays deterministic.
func topCategory(preferences map[string]float64) string {
	categories := make([]string, 0, len(preferences))
	for c := range preferences {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	best := ""
	bestWeight := -1.0
	for _, c := range categories {
		if preferences[c] > bestWeight {
			best = c
			bestWeight = preferences[c]
		}
	}
	return best
}

// segmentKey maps a profile to a template key like "30s_male".
func segmentKey(user domain.UserProfile) string {
	if user.AgeGroup == "" {
		return "default"
	}
	var gender string
	switch user.Gender {
	case "M":
		gender = "male"
	case "F":
		gender = "female"
	default:
		return "default"
	}
	return fmt.Sprintf("%s_%s", strings.ToLower(user.AgeGroup), gender)
}
