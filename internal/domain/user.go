package domain

import "time"

// UserProfile is a demographic snapshot supplied per request. The engine
// never mutates or persists it.
type UserProfile struct {
	UserID   int    `json:"user_id" db:"user_id"`
	Name     string `json:"name,omitempty" db:"name"`
	Gender   string `json:"gender" db:"gender"`       // "M", "F", "U"
	AgeGroup string `json:"age_group" db:"age_group"` // "10s".."50s+"
}

// PurchaseEvent is one raw, unaggregated purchase. Input ordering is
// irrelevant; the analyzer imposes recency order internally.
type PurchaseEvent struct {
	ProductID   int       `json:"product_id" db:"product_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	PurchasedAt time.Time `json:"purchased_at" db:"purchased_at"`
}

// ChatSender identifies who produced a chat turn.
type ChatSender string

const (
	SenderUser ChatSender = "user"
	SenderAI   ChatSender = "ai"
)

// ChatMessage is one persisted chat turn, with the sentiment analysis and
// recommendation results attached to AI turns.
type ChatMessage struct {
	ID             string     `json:"id" db:"message_id"`
	UserID         int        `json:"user_id" db:"user_id"`
	Sender         ChatSender `json:"sender" db:"sender"`
	Text           string     `json:"text" db:"message_text"`
	Sentiment      string     `json:"sentiment,omitempty" db:"sentiment"`
	SentimentScore float64    `json:"sentiment_score,omitempty" db:"sentiment_score"`
	ProductIDs     []int      `json:"product_ids,omitempty" db:"recommended_products"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}
