// Package storage holds the Redis-backed conversation cache. It keeps a
// short rolling window of chat turns per user so casual replies can see
// recent context without a database round trip.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freshmind/recommender/internal/config"
	"github.com/freshmind/recommender/internal/domain"
)

// DefaultTurnLimit caps how many turns are retained per user.
const DefaultTurnLimit = 10

// ConversationStore caches recent chat turns in a Redis list per user,
// trimmed to a fixed length and expired on inactivity.
type ConversationStore struct {
	client    *redis.Client
	ttl       time.Duration
	turnLimit int
}

// NewConversationStore builds the store from config.
func NewConversationStore(cfg config.RedisConfig) *ConversationStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewConversationStoreWithClient(client, time.Duration(cfg.ConversationTTLMin)*time.Minute)
}

// NewConversationStoreWithClient wraps an existing client. Used by tests.
func NewConversationStoreWithClient(client *redis.Client, ttl time.Duration) *ConversationStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ConversationStore{client: client, ttl: ttl, turnLimit: DefaultTurnLimit}
}

func conversationKey(userID int) string {
	return fmt.Sprintf("conversation:%d", userID)
}

// Append pushes one turn onto the user's conversation, trims to the turn
// limit, and refreshes the TTL.
func (s *ConversationStore) Append(ctx context.Context, msg domain.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	key := conversationKey(msg.UserID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, int64(-s.turnLimit), -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// Recent returns the user's cached turns, oldest first. A missing key
// yields an empty slice.
func (s *ConversationStore) Recent(ctx context.Context, userID int) ([]domain.ChatMessage, error) {
	raw, err := s.client.LRange(ctx, conversationKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read conversation: %w", err)
	}

	out := make([]domain.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg domain.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			// Skip unreadable turns instead of poisoning the whole read.
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// Clear drops the user's cached conversation.
func (s *ConversationStore) Clear(ctx context.Context, userID int) error {
	if err := s.client.Del(ctx, conversationKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear conversation: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection.
func (s *ConversationStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
