package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshmind/recommender/internal/chat"
	"github.com/freshmind/recommender/internal/domain"
	"github.com/freshmind/recommender/internal/intent"
	"github.com/freshmind/recommender/internal/oracle"
	"github.com/freshmind/recommender/internal/recommend"
	"github.com/freshmind/recommender/internal/repository/memory"
)

type fakeOracle struct {
	sentiment    domain.Sentiment
	sentimentErr error
	reply        string
	replyErr     error
	gotCasual    oracle.CasualReplyRequest
}

func (f *fakeOracle) AnalyzeSentiment(ctx context.Context, message string) (domain.Sentiment, error) {
	if f.sentimentErr != nil {
		return domain.Sentiment{}, f.sentimentErr
	}
	return f.sentiment, nil
}

func (f *fakeOracle) CasualReply(ctx context.Context, req oracle.CasualReplyRequest) (string, error) {
	f.gotCasual = req
	return f.reply, f.replyErr
}

type fakeCache struct {
	turns map[int][]domain.ChatMessage
}

func newFakeCache() *fakeCache {
	return &fakeCache{turns: map[int][]domain.ChatMessage{}}
}

func (f *fakeCache) Append(ctx context.Context, msg domain.ChatMessage) error {
	f.turns[msg.UserID] = append(f.turns[msg.UserID], msg)
	return nil
}

func (f *fakeCache) Recent(ctx context.Context, userID int) ([]domain.ChatMessage, error) {
	return f.turns[userID], nil
}

func seededStore() *memory.Store {
	store := memory.NewStore()
	store.SetUser(domain.UserProfile{UserID: 1, Name: "지은", Gender: "F", AgeGroup: "20s"})
	store.SetProducts([]domain.Product{
		{ID: 1, Name: "유기농 토마토", Category: "채소", ReviewCount: 4000, Price: 4980},
		{ID: 2, Name: "비건 두부 밀키트", Category: "간편식/밀키트", ReviewCount: 2500, Price: 10900},
		{ID: 3, Name: "무항생제 계란", Category: "유제품/계란", ReviewCount: 6000, Price: 7900},
		{ID: 4, Name: "제주 감귤", Category: "과일", ReviewCount: 1800, Price: 8900},
	})
	store.AddPurchase(1, domain.PurchaseEvent{ProductID: 2, Quantity: 1, PurchasedAt: time.Now().AddDate(0, 0, -3)})
	return store
}

func newService(store *memory.Store, o *fakeOracle, opts ...chat.ServiceOption) *chat.Service {
	base := []chat.ServiceOption{
		chat.WithSentimentAnalyzer(o),
		chat.WithCasualResponder(o),
	}
	return chat.NewService(
		intent.NewGate(nil),
		recommend.NewEngine(nil),
		store, store, store,
		append(base, opts...)...,
	)
}

func TestHandleProductInquiry(t *testing.T) {
	store := seededStore()
	o := &fakeOracle{sentiment: domain.Sentiment{Label: "positive", Score: 0.9, Keywords: []string{"토마토"}}}
	svc := newService(store, o)

	got, err := svc.Handle(context.Background(), 1, "샐러드용 토마토 추천해줘")
	require.NoError(t, err)

	assert.Equal(t, intent.ProductInquiry, got.IntentType)
	assert.Equal(t, "positive", got.Sentiment)
	assert.Equal(t, domain.SourceFallback, got.Source)
	require.NotEmpty(t, got.RecommendedProducts)
	assert.Contains(t, got.Message, "지은님, 좋은 선택이에요!")
	assert.Contains(t, got.Message, "골라봤어요")

	// Catalog detail is joined onto each recommendation.
	for _, p := range got.RecommendedProducts {
		assert.NotEmpty(t, p.Name)
		assert.Greater(t, p.Price, 0.0)
	}
}

func TestHandleGreetingUsesCasualReply(t *testing.T) {
	store := seededStore()
	o := &fakeOracle{
		sentiment: domain.Sentiment{Label: "positive", Score: 0.8, Keywords: []string{"안녕"}},
		reply:     "안녕하세요, 지은님! 오늘도 반가워요.",
	}
	svc := newService(store, o)

	got, err := svc.Handle(context.Background(), 1, "안녕")
	require.NoError(t, err)

	assert.Equal(t, intent.Greeting, got.IntentType)
	assert.Equal(t, "안녕하세요, 지은님! 오늘도 반가워요.", got.Message)
	assert.Empty(t, got.RecommendedProducts)
	assert.Equal(t, "지은", o.gotCasual.UserName)
}

func TestHandleCasualReplyFailureFallsBack(t *testing.T) {
	store := seededStore()
	o := &fakeOracle{
		sentiment: domain.Sentiment{Label: "neutral", Score: 0.5},
		replyErr:  errors.New("oracle down"),
	}
	svc := newService(store, o)

	got, err := svc.Handle(context.Background(), 1, "안녕")
	require.NoError(t, err)

	assert.Contains(t, got.Message, "안녕하세요, 지은님!")
	assert.Contains(t, got.Message, "쇼핑 도우미")
}

func TestHandleSentimentFailureDefaultsNeutral(t *testing.T) {
	store := seededStore()
	o := &fakeOracle{
		sentimentErr: errors.New("oracle down"),
		reply:        "네, 말씀하세요!",
	}
	svc := newService(store, o)

	got, err := svc.Handle(context.Background(), 1, "오늘 날씨 참 좋네요 그렇죠")
	require.NoError(t, err)

	assert.Equal(t, "neutral", got.Sentiment)
	assert.Equal(t, 0.5, got.SentimentScore)
	assert.Equal(t, []string{"오늘", "날씨", "참"}, got.Keywords)
}

func TestHandleUnknownUser(t *testing.T) {
	svc := newService(seededStore(), &fakeOracle{})

	_, err := svc.Handle(context.Background(), 99, "안녕")
	assert.ErrorIs(t, err, chat.ErrUserNotFound)
}

func TestHandlePersistsBothTurns(t *testing.T) {
	store := seededStore()
	o := &fakeOracle{sentiment: domain.Sentiment{Label: "positive", Score: 0.9, Keywords: []string{"저녁"}}}
	svc := newService(store, o, chat.WithMessageStore(store))

	got, err := svc.Handle(context.Background(), 1, "저녁 추천해줘")
	require.NoError(t, err)

	saved, err := store.Recent(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, saved, 2)

	// Newest first: the AI turn carries the recommended product IDs.
	assert.Equal(t, domain.SenderAI, saved[0].Sender)
	assert.Len(t, saved[0].ProductIDs, len(got.RecommendedProducts))
	assert.Equal(t, domain.SenderUser, saved[1].Sender)
	assert.Equal(t, "저녁 추천해줘", saved[1].Text)
	assert.Equal(t, "positive", saved[1].Sentiment)
}

func TestHandleCasualSeesConversationMemory(t *testing.T) {
	store := seededStore()
	cache := newFakeCache()
	o := &fakeOracle{
		sentiment: domain.Sentiment{Label: "neutral", Score: 0.5},
		reply:     "네!",
	}
	svc := newService(store, o, chat.WithConversationCache(cache))

	_, err := svc.Handle(context.Background(), 1, "안녕")
	require.NoError(t, err)

	_, err = svc.Handle(context.Background(), 1, "잘 지내?")
	require.NoError(t, err)

	// The second turn's oracle request includes the first exchange.
	require.Len(t, o.gotCasual.RecentTurns, 2)
	assert.Equal(t, "안녕", o.gotCasual.RecentTurns[0].Text)
}

func TestResponseMessage(t *testing.T) {
	assert.Equal(t,
		"지은님, 좋은 선택이에요! 😊 고객님께 딱 맞는 상품 3개를 골라봤어요. 한번 살펴보시겠어요?",
		chat.ResponseMessage("positive", 3, "지은"))
	assert.Contains(t, chat.ResponseMessage("negative", 2, "민수"), "걱정 마세요")
	assert.Contains(t, chat.ResponseMessage("neutral", 0, ""), "고객님,")
	assert.Contains(t, chat.ResponseMessage("neutral", 0, "지은"), "찾지 못했어요")
}
