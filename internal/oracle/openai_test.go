package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshmind/recommender/internal/config"
	"github.com/freshmind/recommender/internal/recommend"
)

// newTestClient points an OpenAIClient at a stub chat-completions server
// that always returns content as the first choice.
func newTestClient(t *testing.T, content string, status int) *OpenAIClient {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.WriteHeader(status)
		resp := map[string]interface{}{
			"id": "chatcmpl-test",
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	client, err := NewOpenAIClient(config.OracleConfig{
		APIKey:         "test-key",
		BaseURL:        srv.URL,
		Model:          "gpt-4o-mini",
		TimeoutSeconds: 5,
	})
	require.NoError(t, err)
	return client
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(config.OracleConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClassifyIntent(t *testing.T) {
	client := newTestClient(t, `{"needs_product_recommendation": true, "intent_type": "product_inquiry", "reason": "식품 질문"}`, http.StatusOK)

	got, err := client.ClassifyIntent(context.Background(), "토마토 뭐가 좋아?")
	require.NoError(t, err)

	assert.True(t, got.NeedsRecommendation)
	assert.Equal(t, "product_inquiry", string(got.IntentType))
}

func TestClassifyIntentMissingField(t *testing.T) {
	client := newTestClient(t, `{"intent_type": "greeting"}`, http.StatusOK)

	_, err := client.ClassifyIntent(context.Background(), "안녕")
	assert.Error(t, err)
}

func TestAnalyzeSentiment(t *testing.T) {
	client := newTestClient(t, `{"sentiment": "positive", "score": 0.9, "keywords": ["토마토", "샐러드"]}`, http.StatusOK)

	got, err := client.AnalyzeSentiment(context.Background(), "샐러드용 토마토 추천해줘!")
	require.NoError(t, err)

	assert.Equal(t, "positive", got.Label)
	assert.Equal(t, 0.9, got.Score)
	assert.Equal(t, []string{"토마토", "샐러드"}, got.Keywords)
}

func TestAnalyzeSentimentRejectsUnknownLabel(t *testing.T) {
	client := newTestClient(t, `{"sentiment": "ecstatic", "score": 0.9, "keywords": []}`, http.StatusOK)

	_, err := client.AnalyzeSentiment(context.Background(), "hi")
	assert.Error(t, err)
}

func TestRankProductsDropsMalformedEntries(t *testing.T) {
	content := `{"recommendations": [
		{"product_id": 3, "reason": "좋아요", "relevance_score": 0.9},
		{"reason": "missing id", "relevance_score": 0.8},
		{"product_id": 5, "relevance_score": 0.8},
		{"product_id": 6, "reason": "out of range", "relevance_score": 1.8},
		{"product_id": 7, "reason": "괜찮아요", "relevance_score": 0.7}
	]}`
	client := newTestClient(t, content, http.StatusOK)

	got, err := client.RankProducts(context.Background(), recommend.RankRequest{Message: "저녁 추천"})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].ProductID)
	assert.Equal(t, 7, got[1].ProductID)
}

func TestRankProductsMalformedBody(t *testing.T) {
	client := newTestClient(t, `this is not json`, http.StatusOK)

	_, err := client.RankProducts(context.Background(), recommend.RankRequest{})
	assert.Error(t, err)
}

func TestRankProductsHandlesCodeFences(t *testing.T) {
	content := "```json\n{\"recommendations\": [{\"product_id\": 1, \"reason\": \"ok\", \"relevance_score\": 0.5}]}\n```"
	client := newTestClient(t, content, http.StatusOK)

	got, err := client.RankProducts(context.Background(), recommend.RankRequest{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ProductID)
}

func TestCasualReply(t *testing.T) {
	client := newTestClient(t, "  안녕하세요, 지은님! 오늘 하루 어떠셨나요?  ", http.StatusOK)

	got, err := client.CasualReply(context.Background(), CasualReplyRequest{Message: "안녕", UserName: "지은"})
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요, 지은님! 오늘 하루 어떠셨나요?", got)
}

func TestAPIErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "rate limited", "type": "rate_limit_error"},
		})
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(config.OracleConfig{APIKey: "test-key", BaseURL: srv.URL, TimeoutSeconds: 5})
	require.NoError(t, err)

	_, err = client.ClassifyIntent(context.Background(), "msg")
	assert.ErrorContains(t, err, "rate limited")
}
