// Package postgres implements the chat service's repository contracts
// against PostgreSQL via lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/freshmind/recommender/internal/domain"
)

// ProductRepo implements chat.CatalogRepository against PostgreSQL.
type ProductRepo struct{ db *sql.DB }

// NewProductRepo creates a Postgres-backed catalog repository.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `
	product_id, name, COALESCE(description,''), COALESCE(category,''),
	COALESCE(sub_category,''), price, COALESCE(rating,0), COALESCE(review_count,0),
	COALESCE(target_gender,''), COALESCE(target_age_groups,'[]'),
	COALESCE(used_in,'[]'), COALESCE(tags,'[]'), COALESCE(stock,0),
	COALESCE(image_url,'')`

func (r *ProductRepo) List(ctx context.Context, category string) ([]domain.Product, error) {
	q := `SELECT` + productColumns + ` FROM products`
	args := []interface{}{}
	if category != "" {
		q += ` WHERE category = $1`
		args = append(args, category)
	}
	q += ` ORDER BY product_id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func scanProduct(rows *sql.Rows) (domain.Product, error) {
	var p domain.Product
	var targetAge, usedIn, tags string
	if err := rows.Scan(
		&p.ID, &p.Name, &p.Description, &p.Category,
		&p.SubCategory, &p.Price, &p.Rating, &p.ReviewCount,
		&p.TargetGender, &targetAge,
		&usedIn, &tags, &p.Stock,
		&p.ImageURL,
	); err != nil {
		return domain.Product{}, fmt.Errorf("scan product: %w", err)
	}

	// Targeting lists are stored as JSON text columns. A column that fails
	// to parse degrades to no restriction rather than failing the query.
	p.TargetAge = parseJSONList(targetAge)
	p.UsedIn = parseJSONList(usedIn)
	p.Tags = parseJSONList(tags)
	return p, nil
}

func parseJSONList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
