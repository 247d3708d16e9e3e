// Package chat orchestrates one chatbot turn: intent gating, sentiment
// analysis, recommendation or casual reply, persistence, and the
// conversation cache.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/freshmind/recommender/internal/domain"
	"github.com/freshmind/recommender/internal/intent"
	"github.com/freshmind/recommender/internal/oracle"
	"github.com/freshmind/recommender/internal/recommend"
)

// SentimentAnalyzer reads the shopper's mood and search keywords.
type SentimentAnalyzer interface {
	AnalyzeSentiment(ctx context.Context, message string) (domain.Sentiment, error)
}

// CasualResponder generates replies for messages that need no
// recommendation.
type CasualResponder interface {
	CasualReply(ctx context.Context, req oracle.CasualReplyRequest) (string, error)
}

// ConversationCache keeps a short rolling window of turns per user.
type ConversationCache interface {
	Append(ctx context.Context, msg domain.ChatMessage) error
	Recent(ctx context.Context, userID int) ([]domain.ChatMessage, error)
}

// Service handles one chat turn end to end. The sentiment analyzer,
// casual responder, message store, and conversation cache are all
// optional; a missing piece degrades to deterministic behavior instead of
// failing the turn.
type Service struct {
	gate          *intent.Gate
	engine        *recommend.Engine
	sentiment     SentimentAnalyzer
	responder     CasualResponder
	catalog       CatalogRepository
	history       HistoryRepository
	users         UserRepository
	messages      MessageRepository
	conversations ConversationCache
	windowDays    int
}

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithSentimentAnalyzer wires the sentiment oracle.
func WithSentimentAnalyzer(a SentimentAnalyzer) ServiceOption {
	return func(s *Service) { s.sentiment = a }
}

// WithCasualResponder wires the casual-reply oracle.
func WithCasualResponder(r CasualResponder) ServiceOption {
	return func(s *Service) { s.responder = r }
}

// WithMessageStore wires chat turn persistence.
func WithMessageStore(m MessageRepository) ServiceOption {
	return func(s *Service) { s.messages = m }
}

// WithConversationCache wires the short-term conversation memory.
func WithConversationCache(c ConversationCache) ServiceOption {
	return func(s *Service) { s.conversations = c }
}

// WithHistoryWindow overrides the purchase lookback in days.
func WithHistoryWindow(days int) ServiceOption {
	return func(s *Service) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// NewService builds the chat service around its required collaborators.
func NewService(
	gate *intent.Gate,
	engine *recommend.Engine,
	catalog CatalogRepository,
	history HistoryRepository,
	users UserRepository,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		gate:       gate,
		engine:     engine,
		catalog:    catalog,
		history:    history,
		users:      users,
		windowDays: 30,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecommendedProduct is one recommendation joined with its catalog detail.
type RecommendedProduct struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Reason         string  `json:"reason"`
	RelevanceScore float64 `json:"relevance_score"`
	Price          float64 `json:"price"`
	ImageURL       string  `json:"image,omitempty"`
	Rating         float64 `json:"rating"`
	Reviews        int     `json:"reviews"`
	Category       string  `json:"category"`
}

// Response is the caller-facing result of one chat turn.
type Response struct {
	Message             string                      `json:"message"`
	Sentiment           string                      `json:"sentiment"`
	SentimentScore      float64                     `json:"sentiment_score"`
	Keywords            []string                    `json:"keywords"`
	RecommendedProducts []RecommendedProduct        `json:"recommended_products"`
	IntentType          intent.Type                 `json:"intent_type"`
	Source              domain.RecommendationSource `json:"source,omitempty"`
}

// Handle runs one chat turn. Oracle failures never surface; the only
// errors returned are an unknown user or a failing data layer.
func (s *Service) Handle(ctx context.Context, userID int, message string) (*Response, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	analysis := s.gate.Classify(ctx, message)
	log.Printf("chat: user=%d intent=%s recommend=%t", userID, analysis.IntentType, analysis.NeedsRecommendation)

	sentiment := s.analyzeSentiment(ctx, message)

	resp := &Response{
		Sentiment:           sentiment.Label,
		SentimentScore:      sentiment.Score,
		Keywords:            sentiment.Keywords,
		RecommendedProducts: []RecommendedProduct{},
		IntentType:          analysis.IntentType,
	}

	if analysis.NeedsRecommendation {
		if err := s.recommendTurn(ctx, user, message, sentiment, resp); err != nil {
			return nil, err
		}
	} else {
		resp.Message = s.casualTurn(ctx, user, message, sentiment, analysis)
	}

	s.persistTurn(ctx, userID, message, sentiment, resp)
	return resp, nil
}

// recommendTurn fills the response with ranked products and the
// deterministic response message.
func (s *Service) recommendTurn(ctx context.Context, user domain.UserProfile, message string, sentiment domain.Sentiment, resp *Response) error {
	catalog, err := s.catalog.List(ctx, "")
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	history, err := s.history.ListForUser(ctx, user.UserID, s.windowDays)
	if err != nil {
		return fmt.Errorf("loading purchase history: %w", err)
	}

	result := s.engine.Recommend(ctx, message, sentiment.Keywords, user, history, catalog)
	resp.Source = result.Source

	byID := make(map[int]domain.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}
	for _, rec := range result.Recommendations {
		product, ok := byID[rec.ProductID]
		if !ok {
			continue
		}
		resp.RecommendedProducts = append(resp.RecommendedProducts, RecommendedProduct{
			ID:             rec.ProductID,
			Name:           product.Name,
			Reason:         rec.Reason,
			RelevanceScore: rec.RelevanceScore,
			Price:          product.Price,
			ImageURL:       product.ImageURL,
			Rating:         product.Rating,
			Reviews:        product.ReviewCount,
			Category:       product.Category,
		})
	}

	resp.Message = ResponseMessage(sentiment.Label, len(resp.RecommendedProducts), user.Name)
	return nil
}

// casualTurn generates the no-recommendation reply, consulting the
// conversation cache when available and falling back to canned replies.
func (s *Service) casualTurn(ctx context.Context, user domain.UserProfile, message string, sentiment domain.Sentiment, analysis intent.Analysis) string {
	if s.responder == nil {
		return casualFallback(analysis.IntentType, user.Name)
	}

	var turns []domain.ChatMessage
	if s.conversations != nil {
		cached, err := s.conversations.Recent(ctx, user.UserID)
		if err != nil {
			log.Printf("chat: conversation cache read failed: %v", err)
		} else {
			turns = cached
		}
	}

	reply, err := s.responder.CasualReply(ctx, oracle.CasualReplyRequest{
		Message:     message,
		UserName:    user.Name,
		Sentiment:   sentiment,
		IntentType:  string(analysis.IntentType),
		RecentTurns: turns,
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			log.Printf("chat: casual reply oracle failed: %v", err)
		}
		return casualFallback(analysis.IntentType, user.Name)
	}
	return reply
}

// analyzeSentiment degrades to a neutral reading with the first words of
// the message as keywords.
func (s *Service) analyzeSentiment(ctx context.Context, message string) domain.Sentiment {
	if s.sentiment != nil {
		sentiment, err := s.sentiment.AnalyzeSentiment(ctx, message)
		if err == nil {
			return sentiment
		}
		log.Printf("chat: sentiment oracle failed, defaulting to neutral: %v", err)
	}

	words := strings.Fields(message)
	if len(words) > 3 {
		words = words[:3]
	}
	return domain.Sentiment{Label: "neutral", Score: 0.5, Keywords: words}
}

// persistTurn writes both turns to the message store and the conversation
// cache. Failures are logged, never surfaced.
func (s *Service) persistTurn(ctx context.Context, userID int, message string, sentiment domain.Sentiment, resp *Response) {
	productIDs := make([]int, 0, len(resp.RecommendedProducts))
	for _, p := range resp.RecommendedProducts {
		productIDs = append(productIDs, p.ID)
	}

	userTurn := domain.ChatMessage{
		UserID:         userID,
		Sender:         domain.SenderUser,
		Text:           message,
		Sentiment:      sentiment.Label,
		SentimentScore: sentiment.Score,
	}
	aiTurn := domain.ChatMessage{
		UserID:     userID,
		Sender:     domain.SenderAI,
		Text:       resp.Message,
		ProductIDs: productIDs,
	}

	for _, turn := range []*domain.ChatMessage{&userTurn, &aiTurn} {
		if s.messages != nil {
			if err := s.messages.Save(ctx, turn); err != nil {
				log.Printf("chat: saving %s turn failed: %v", turn.Sender, err)
			}
		}
		if s.conversations != nil {
			if err := s.conversations.Append(ctx, *turn); err != nil {
				log.Printf("chat: caching %s turn failed: %v", turn.Sender, err)
			}
		}
	}
}

// ResponseMessage builds the deterministic reply shown with product
// recommendations, keyed on the message sentiment.
func ResponseMessage(sentiment string, count int, userName string) string {
	if userName == "" {
		userName = "고객"
	}

	var greeting string
	switch sentiment {
	case "positive":
		greeting = fmt.Sprintf("%s님, 좋은 선택이에요! 😊", userName)
	case "negative":
		greeting = fmt.Sprintf("%s님, 걱정 마세요. 제가 도와드릴게요.", userName)
	default:
		greeting = fmt.Sprintf("%s님,", userName)
	}

	if count > 0 {
		return fmt.Sprintf("%s 고객님께 딱 맞는 상품 %d개를 골라봤어요. 한번 살펴보시겠어요?", greeting, count)
	}
	return fmt.Sprintf("%s 아쉽지만 지금은 딱 맞는 상품을 찾지 못했어요. 다른 키워드로 다시 물어봐주시겠어요?", greeting)
}

// casualFallback is the canned reply used when the oracle is unavailable.
func casualFallback(intentType intent.Type, userName string) string {
	if userName == "" {
		userName = "고객"
	}
	switch intentType {
	case intent.Greeting:
		return fmt.Sprintf("안녕하세요, %s님! 😊 FreshMind AI 쇼핑 도우미입니다. 오늘 하루 어떠셨나요?", userName)
	case intent.CasualChat:
		return fmt.Sprintf("%s님, 궁금하신 점이 있으시면 편하게 물어보세요! 음식이나 식재료 관련해서 도와드릴 수 있어요.", userName)
	default:
		return "무엇을 도와드릴까요? 식재료나 요리에 관련된 것이라면 언제든 말씀해주세요!"
	}
}
