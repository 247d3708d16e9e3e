// Package memory holds in-process implementations of the chat repository
// contracts. Suitable for demos and tests; not durable.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freshmind/recommender/internal/chat"
	"github.com/freshmind/recommender/internal/domain"
)

// Store keeps the whole dataset in memory behind one mutex. It implements
// chat.CatalogRepository, chat.HistoryRepository, chat.UserRepository and
// chat.MessageRepository.
type Store struct {
	mu        sync.RWMutex
	products  []domain.Product
	users     map[int]domain.UserProfile
	purchases map[int][]domain.PurchaseEvent
	messages  map[int][]domain.ChatMessage
	now       func() time.Time
}

var (
	_ chat.CatalogRepository = (*Store)(nil)
	_ chat.HistoryRepository = (*Store)(nil)
	_ chat.UserRepository    = (*Store)(nil)
	_ chat.MessageRepository = (*Store)(nil)
)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:     map[int]domain.UserProfile{},
		purchases: map[int][]domain.PurchaseEvent{},
		messages:  map[int][]domain.ChatMessage{},
		now:       time.Now,
	}
}

// SetClock overrides the time source used for window filtering. Used by
// tests to pin "now".
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetProducts replaces the catalog.
func (s *Store) SetProducts(products []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append([]domain.Product(nil), products...)
}

// SetUser adds or replaces a shopper profile.
func (s *Store) SetUser(u domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UserID] = u
}

// AddPurchase appends one purchase event for a user.
func (s *Store) AddPurchase(userID int, ev domain.PurchaseEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases[userID] = append(s.purchases[userID], ev)
}

func (s *Store) List(ctx context.Context, category string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) ListForUser(ctx context.Context, userID, windowDays int) ([]domain.PurchaseEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().AddDate(0, 0, -windowDays)
	var out []domain.PurchaseEvent
	for _, ev := range s.purchases[userID] {
		if !ev.PurchasedAt.Before(cutoff) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchasedAt.After(out[j].PurchasedAt) })
	return out, nil
}

func (s *Store) Get(ctx context.Context, userID int) (domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.UserProfile{}, chat.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) Save(ctx context.Context, msg *domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now().UTC()
	}
	s.messages[msg.UserID] = append(s.messages[msg.UserID], *msg)
	return nil
}

func (s *Store) Recent(ctx context.Context, userID, limit int) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 10
	}
	all := s.messages[userID]
	out := make([]domain.ChatMessage, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}
