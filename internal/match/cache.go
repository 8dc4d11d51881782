// Package match scores how well a scraped offer matches a tracked product and
// memoizes the judgments by content hash.
package match

import (
	"context"

	"pricehunt-engine/internal/domain"
)

// Cache memoizes analyses by group hash. Put must be insert-if-absent: a
// second writer for the same hash is a silent no-op.
type Cache interface {
	Get(ctx context.Context, hash string) (domain.MatchAnalysis, bool, error)
	Put(ctx context.Context, hash string, m domain.MatchAnalysis) error
}

// NoCache is the null object used when caching is disabled.
type NoCache struct{}

func (NoCache) Get(context.Context, string) (domain.MatchAnalysis, bool, error) {
	return domain.MatchAnalysis{}, false, nil
}

func (NoCache) Put(context.Context, string, domain.MatchAnalysis) error { return nil }
