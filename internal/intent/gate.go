// Package intent decides whether a chat message warrants a product
// recommendation. A deterministic keyword gate runs first and short-circuits
// the external classifier; the classifier is only consulted for messages the
// gate cannot decide, and its failure fails closed (no recommendation).
package intent

import (
	"context"
	"log"
	"strings"
)

// Type enumerates the conversational intents the classifier may return.
type Type string

const (
	Greeting       Type = "greeting"
	CasualChat     Type = "casual_chat"
	ProductInquiry Type = "product_inquiry"
	RecipeQuestion Type = "recipe_question"
	Complaint      Type = "complaint"
)

// Analysis is the gate's output.
type Analysis struct {
	NeedsRecommendation bool   `json:"needs_product_recommendation"`
	IntentType          Type   `json:"intent_type"`
	Reason              string `json:"reason"`
}

// Classifier is the external intent classification oracle, consulted only
// when the keyword gate does not already decide.
type Classifier interface {
	ClassifyIntent(ctx context.Context, message string) (Analysis, error)
}

// triggerKeywords are food-and-shopping terms that deterministically mark a
// message as a product inquiry. Matched case-insensitively as substrings.
var triggerKeywords = []string{
	// categories
	"채소", "과일", "육류", "고기", "해산물", "생선", "유제품", "우유",
	"밀키트", "간편식", "양념", "소스", "쌀", "곡물", "음료", "냉동",
	// meals and occasions
	"아침", "점심", "저녁", "야식", "간식", "식사", "끼니", "메뉴", "도시락",
	// cooking and shopping
	"추천", "먹을", "먹고", "먹지", "요리", "레시피", "재료", "반찬",
	"찌개", "볶음", "구이", "샐러드", "파스타", "디저트",
	// dietary
	"다이어트", "건강", "영양", "식단", "비건", "단백질",
	// english
	"recommend", "recipe", "meal", "snack", "breakfast", "lunch", "dinner",
	"diet", "grocery", "ingredient", "cook", "food",
}

// greetings are matched exactly (after trimming) so pure greetings and
// thanks never cost an oracle call. Longer messages that merely contain a
// greeting still go through the classifier.
var greetings = map[string]bool{
	"안녕":     true,
	"안녕하세요":  true,
	"하이":     true,
	"헬로":     true,
	"고마워":    true,
	"고맙습니다":  true,
	"감사":     true,
	"감사합니다":  true,
	"잘 지내?":  true,
	"hi":     true,
	"hello":  true,
	"thanks": true,
	"thank you": true,
}

// Gate applies the keyword test, then the classifier.
type Gate struct {
	classifier Classifier
}

// NewGate creates a gate. A nil classifier is valid; undecided messages then
// default to casual chat.
func NewGate(classifier Classifier) *Gate {
	return &Gate{classifier: classifier}
}

// Classify decides whether the message needs a recommendation. Keyword
// matches take precedence over the classifier: they are cheap,
// deterministic, and testable. No side effects.
func (g *Gate) Classify(ctx context.Context, message string) Analysis {
	if containsAny(strings.ToLower(message), triggerKeywords) {
		return Analysis{
			NeedsRecommendation: true,
			IntentType:          ProductInquiry,
			Reason:              "식품 관련 키워드가 포함된 메시지",
		}
	}

	if greetings[strings.ToLower(strings.TrimSpace(message))] {
		return Analysis{
			NeedsRecommendation: false,
			IntentType:          Greeting,
			Reason:              "단순 인사/감사 표현",
		}
	}

	if g.classifier == nil {
		return failClosed("분류기가 설정되지 않아 기본값 반환")
	}

	analysis, err := g.classifier.ClassifyIntent(ctx, message)
	if err != nil {
		log.Printf("intent: classifier failed, defaulting to casual chat: %v", err)
		return failClosed("분석 오류로 기본값 반환")
	}
	if !validType(analysis.IntentType) {
		return failClosed("알 수 없는 의도 유형으로 기본값 반환")
	}
	return analysis
}

// failClosed never recommends on an ambiguous or failed signal.
func failClosed(reason string) Analysis {
	return Analysis{
		NeedsRecommendation: false,
		IntentType:          CasualChat,
		Reason:              reason,
	}
}

func validType(t Type) bool {
	switch t {
	case Greeting, CasualChat, ProductInquiry, RecipeQuestion, Complaint:
		return true
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
