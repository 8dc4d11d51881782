package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pricehunt-engine/internal/domain"
)

// SaveResults writes every accepted record for a job and, when there is at
// least one, sets the product's best price to the cheapest of them. It is one
// transaction: on any error no result of this call is visible.
func (d *DB) SaveResults(ctx context.Context, jobID, productID string, accepted []domain.Accepted) (best *float64, err error) {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, d.q(`
INSERT INTO search_results(
  id, job_id, product_id, title, price, shipping, link, image, marketplace,
  seller_name, item_condition, location, match_score, reasoning, normalized_name,
  city, state, group_hash, suggestion, created_at)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);`))
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	now := formatTime(time.Now())
	for i, a := range accepted {
		o, m := a.Offer, a.Analysis
		if _, err := stmt.ExecContext(ctx,
			uuid.NewString(), jobID, productID, o.Title, o.Price, o.Shipping, o.Link, o.Image, o.Marketplace,
			o.SellerName, o.Condition, o.Location, m.Score, m.Reasoning, m.NormalizedName,
			m.City, m.State, a.GroupHash, encodeSuggestion(m.Suggestion), now,
		); err != nil {
			return nil, fmt.Errorf("insert result %d (%s): %w", i, o.Link, err)
		}
		if best == nil || o.Price < *best {
			p := o.Price
			best = &p
		}
	}

	if best != nil {
		res, err := tx.ExecContext(ctx, d.q(`
UPDATE products SET last_best_price = ?, last_best_price_date = ? WHERE id = ?;`),
			*best, now, productID)
		if err != nil {
			return nil, fmt.Errorf("update best price: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, fmt.Errorf("update best price: product %s: %w", productID, ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return best, nil
}

func (d *DB) ListResults(ctx context.Context, jobID string) ([]domain.SearchResult, error) {
	rows, err := d.Pool.QueryContext(ctx, d.q(`
SELECT id, job_id, product_id, title, price, shipping, link, image, marketplace,
       seller_name, item_condition, location, match_score, reasoning, normalized_name,
       city, state, group_hash, suggestion, created_at
FROM search_results
WHERE job_id = ?
ORDER BY price ASC, id ASC;`), jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		var suggestion, createdAt string
		if err := rows.Scan(
			&r.ID, &r.JobID, &r.ProductID, &r.Title, &r.Price, &r.Shipping, &r.Link, &r.Image, &r.Marketplace,
			&r.SellerName, &r.Condition, &r.Location, &r.MatchScore, &r.Reasoning, &r.NormalizedName,
			&r.City, &r.State, &r.GroupHash, &suggestion, &createdAt,
		); err != nil {
			return nil, err
		}
		r.Suggestion = decodeSuggestion(suggestion)
		r.CreatedAt = parseTime(createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func encodeSuggestion(s *domain.Suggestion) string {
	if s == nil {
		return ""
	}
	b, _ := json.Marshal(s)
	return string(b)
}

func decodeSuggestion(raw string) *domain.Suggestion {
	if raw == "" {
		return nil
	}
	var s domain.Suggestion
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil
	}
	return &s
}
