package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/freshmind/recommender/internal/domain"
)

// MessageRepo implements chat.MessageRepository against PostgreSQL.
type MessageRepo struct{ db *sql.DB }

// NewMessageRepo creates a Postgres-backed chat message repository.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

func (r *MessageRepo) Save(ctx context.Context, msg *domain.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	ids := msg.ProductIDs
	if ids == nil {
		ids = []int{}
	}
	productIDs, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal product ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO chat_messages
			(message_id, user_id, sender, message_text, sentiment,
			 sentiment_score, recommended_products, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, msg.ID, msg.UserID, msg.Sender, msg.Text, msg.Sentiment,
		msg.SentimentScore, string(productIDs), msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

func (r *MessageRepo) Recent(ctx context.Context, userID, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT message_id, user_id, sender, message_text,
		       COALESCE(sentiment,''), COALESCE(sentiment_score,0),
		       COALESCE(recommended_products,'[]'), created_at
		FROM chat_messages
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		var productIDs string
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.Sender, &m.Text,
			&m.Sentiment, &m.SentimentScore,
			&productIDs, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if productIDs != "" && productIDs != "[]" {
			if err := json.Unmarshal([]byte(productIDs), &m.ProductIDs); err != nil {
				return nil, fmt.Errorf("parse recommended products: %w", err)
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}
