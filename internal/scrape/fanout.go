package scrape

import (
	"context"

	"golang.org/x/sync/errgroup"

	"pricehunt-engine/internal/browser"
	"pricehunt-engine/internal/domain"
	"pricehunt-engine/internal/scrape/types"
)

// RunAll scrapes every site concurrently, each on its own page of session.
// A failing or blocked site never affects the others. onDone is called once
// per site as it finishes and may be called concurrently.
func RunAll(ctx context.Context, r *Runner, session browser.Session, sites []types.Site, query, category string, onDone func(types.SourceResult)) ([]domain.RawOffer, []types.SourceResult) {
	results := make([]types.SourceResult, len(sites))

	var g errgroup.Group
	for i, s := range sites {
		g.Go(func() error {
			res := r.Scrape(ctx, s, query, category, session)
			results[i] = res
			if onDone != nil {
				onDone(res)
			}
			return nil // best-effort: don’t cancel siblings
		})
	}
	_ = g.Wait()

	var offers []domain.RawOffer
	for _, res := range results {
		offers = append(offers, res.Offers...)
	}
	return offers, results
}
