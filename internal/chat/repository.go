package chat

import (
	"context"

	"github.com/freshmind/recommender/internal/domain"
)

// CatalogRepository provides the product catalog.
// Implementations must be safe for concurrent use.
type CatalogRepository interface {
	// List returns products, optionally filtered by category. An empty
	// category returns the whole catalog.
	List(ctx context.Context, category string) ([]domain.Product, error)
}

// HistoryRepository provides per-user purchase events.
type HistoryRepository interface {
	// ListForUser returns the user's purchases within the trailing
	// windowDays, newest first. No purchases is not an error.
	ListForUser(ctx context.Context, userID, windowDays int) ([]domain.PurchaseEvent, error)
}

// UserRepository resolves shopper profiles.
type UserRepository interface {
	// Get returns a single profile. Returns ErrUserNotFound if it doesn't exist.
	Get(ctx context.Context, userID int) (domain.UserProfile, error)
}

// MessageRepository persists chat turns.
type MessageRepository interface {
	// Save inserts a chat turn, assigning an ID when the message has none.
	Save(ctx context.Context, msg *domain.ChatMessage) error

	// Recent returns the user's latest turns, newest first.
	Recent(ctx context.Context, userID, limit int) ([]domain.ChatMessage, error)
}
