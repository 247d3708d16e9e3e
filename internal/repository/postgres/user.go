package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/freshmind/recommender/internal/chat"
	"github.com/freshmind/recommender/internal/domain"
)

// UserRepo implements chat.UserRepository against PostgreSQL.
type UserRepo struct{ db *sql.DB }

// NewUserRepo creates a Postgres-backed user repository.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Get(ctx context.Context, userID int) (domain.UserProfile, error) {
	var u domain.UserProfile
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, name, COALESCE(gender,'U'), COALESCE(age_group,'')
		FROM users
		WHERE user_id = $1
	`, userID).Scan(&u.UserID, &u.Name, &u.Gender, &u.AgeGroup)
	if err == sql.ErrNoRows {
		return domain.UserProfile{}, chat.ErrUserNotFound
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// HistoryRepo implements chat.HistoryRepository against PostgreSQL.
type HistoryRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewHistoryRepo creates a Postgres-backed purchase history repository.
func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db, now: time.Now}
}

func (r *HistoryRepo) ListForUser(ctx context.Context, userID, windowDays int) ([]domain.PurchaseEvent, error) {
	cutoff := r.now().AddDate(0, 0, -windowDays)

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, purchased_at
		FROM purchase_history
		WHERE user_id = $1 AND purchased_at >= $2
		ORDER BY purchased_at DESC
	`, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []domain.PurchaseEvent
	for rows.Next() {
		var ev domain.PurchaseEvent
		if err := rows.Scan(&ev.ProductID, &ev.Quantity, &ev.PurchasedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return out, nil
}
