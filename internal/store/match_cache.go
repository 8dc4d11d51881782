package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pricehunt-engine/internal/domain"
)

// MatchCache persists relevance judgments by content hash in the match_cache
// table. Rows are never updated once written.
type MatchCache struct {
	db *DB
}

func (d *DB) MatchCache() *MatchCache { return &MatchCache{db: d} }

func (c *MatchCache) Get(ctx context.Context, hash string) (domain.MatchAnalysis, bool, error) {
	var m domain.MatchAnalysis
	var suggestion string
	err := c.db.Pool.QueryRowContext(ctx, c.db.q(`
SELECT score, reasoning, normalized_name, city, state, suggestion
FROM match_cache
WHERE hash = ?;`), hash).Scan(&m.Score, &m.Reasoning, &m.NormalizedName, &m.City, &m.State, &suggestion)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MatchAnalysis{}, false, nil
	}
	if err != nil {
		return domain.MatchAnalysis{}, false, err
	}
	m.Suggestion = decodeSuggestion(suggestion)
	return m, true, nil
}

// Put inserts if absent. A concurrent writer that got there first wins and
// this call is a no-op.
func (c *MatchCache) Put(ctx context.Context, hash string, m domain.MatchAnalysis) error {
	_, err := c.db.Pool.ExecContext(ctx, c.db.q(`
INSERT INTO match_cache(hash, score, reasoning, normalized_name, city, state, suggestion, created_at)
VALUES(?,?,?,?,?,?,?,?)
ON CONFLICT(hash) DO NOTHING;`),
		hash, m.Score, m.Reasoning, m.NormalizedName, m.City, m.State,
		encodeSuggestion(m.Suggestion), formatTime(time.Now()))
	return err
}
