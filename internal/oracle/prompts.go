package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/freshmind/recommender/internal/domain"
	"github.com/freshmind/recommender/internal/recommend"
)

const intentSystemPrompt = "당신은 사용자의 의도를 정확히 파악하는 전문가입니다. JSON 형식으로만 응답하세요."

func intentPrompt(message string) string {
	return fmt.Sprintf(`다음 사용자 메시지를 분석하여 상품 추천이 필요한지 판단해주세요.

사용자 메시지: %q

응답은 반드시 다음 JSON 형식으로만 작성해주세요:
{
    "needs_product_recommendation": true 또는 false,
    "intent_type": "greeting" 또는 "casual_chat" 또는 "product_inquiry" 또는 "recipe_question" 또는 "complaint",
    "reason": "판단 이유를 한 문장으로"
}

상품 추천이 필요한 경우: 식재료, 음식, 요리에 대한 구체적 질문이나 추천 요청, 건강/영양/식단 고민.
상품 추천이 필요 없는 경우: 단순 인사, 감사 표현, 일상 대화, 챗봇에 대한 질문, 불만/컴플레인.`, message)
}

const sentimentSystemPrompt = "당신은 감정 분석 전문가입니다. JSON 형식으로만 응답하세요."

func sentimentPrompt(message string) string {
	return fmt.Sprintf(`다음 사용자 메시지의 감정을 분석하고 키워드를 추출해주세요.

사용자 메시지: %q

응답은 반드시 다음 JSON 형식으로만 작성해주세요:
{
    "sentiment": "positive" 또는 "neutral" 또는 "negative",
    "score": 0.0에서 1.0 사이의 숫자,
    "keywords": ["키워드1", "키워드2"]
}

키워드는 상품 검색에 사용될 핵심 단어들을 추출해주세요.`, message)
}

const rankingSystemPrompt = "당신은 식재료 전문 추천 시스템입니다. JSON 형식으로만 응답하세요."

func rankingPrompt(req recommend.RankRequest) (string, error) {
	candidates, err := json.Marshal(req.Candidates)
	if err != nil {
		return "", fmt.Errorf("marshaling candidates: %w", err)
	}

	return fmt.Sprintf(`사용자 정보:
- 성별: %s
- 연령대: %s
- 메시지: %q
- 키워드: %s
- 구매 요약: %s

상품 목록:
%s

위 정보를 바탕으로 사용자에게 가장 적합한 상품 3-5개를 추천하고, 각 상품마다 추천 이유를 설명해주세요.

응답은 반드시 다음 JSON 형식으로만 작성해주세요:
{
    "recommendations": [
        {
            "product_id": 상품ID(숫자),
            "reason": "추천 이유 (한 문장)",
            "relevance_score": 관련도 점수 (0.0~1.0)
        }
    ]
}

추천 기준:
1. 사용자의 연령대와 성별에 맞는 상품
2. 메시지 키워드와 관련된 상품
3. 구매 요약에 나타난 취향과 비슷한 상품
4. 상품의 target_age, target_gender, used_in, tags 고려`,
		req.UserGender, req.UserAgeGroup, req.Message,
		strings.Join(req.Keywords, ", "), req.PurchaseSummary, candidates), nil
}

const casualSystemPrompt = "당신은 친근하고 공감 능력이 뛰어난 쇼핑 도우미입니다."

// CasualReplyRequest carries the context for a no-recommendation reply.
// RecentTurns is optional short conversation memory, oldest first.
type CasualReplyRequest struct {
	Message     string
	UserName    string
	Sentiment   domain.Sentiment
	IntentType  string
	RecentTurns []domain.ChatMessage
}

func casualPrompt(req CasualReplyRequest) string {
	name := req.UserName
	if name == "" {
		name = "고객"
	}

	var history strings.Builder
	if len(req.RecentTurns) > 0 {
		history.WriteString("\n최근 대화:\n")
		for _, turn := range req.RecentTurns {
			speaker := "사용자"
			if turn.Sender == domain.SenderAI {
				speaker = "도우미"
			}
			fmt.Fprintf(&history, "- %s: %s\n", speaker, turn.Text)
		}
	}

	return fmt.Sprintf(`당신은 친근하고 공감 능력이 뛰어난 FreshMind AI 쇼핑 도우미입니다.

사용자 정보:
- 이름: %s님
- 메시지: %q
- 감정 상태: %s (점수: %.1f)
- 대화 의도: %s
%s
지침: 인사나 감사에는 친근하게, 일상 대화에는 공감하며, 불만에는 위로로 답하세요.
필요시 음식이나 식재료 관련 도움을 안내하고, 2-3문장으로 간결하게 작성하세요.

응답만 작성해주세요 (JSON 형식 아님, 순수 텍스트):`,
		name, req.Message, req.Sentiment.Label, req.Sentiment.Score, req.IntentType,
		history.String())
}
