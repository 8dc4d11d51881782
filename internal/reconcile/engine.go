// Package reconcile turns raw marketplace offers into accepted, labeled
// records: pre-filter, group by content hash, label each group once through
// the cache or the oracle, keep groups above the threshold.
package reconcile

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pricehunt-engine/internal/domain"
	"pricehunt-engine/internal/match"
)

// Evaluator labels one candidate against a target.
type Evaluator interface {
	Evaluate(ctx context.Context, target string, candidate domain.RawOffer, instructions string) domain.MatchAnalysis
}

type Options struct {
	Threshold int      // accept when score > Threshold
	BatchSize int      // concurrent evaluations per batch
	Exclude   []string // extends DefaultExclusions
}

type Engine struct {
	oracle Evaluator
	cache  match.Cache
	opts   Options
}

func New(oracle Evaluator, cache match.Cache, opts Options) *Engine {
	if cache == nil {
		cache = match.NoCache{}
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 5
	}
	if opts.Threshold < 50 {
		opts.Threshold = 50
	}
	return &Engine{oracle: oracle, cache: cache, opts: opts}
}

// Outcome summarizes one reconciliation run.
type Outcome struct {
	Accepted    []domain.Accepted
	Excluded    int
	Groups      int
	CacheHits   int
	OracleCalls int
}

// Reconcile never fails; oracle and cache problems degrade to dropped groups.
// onBatch, when set, is called after each batch with the number of groups
// evaluated so far.
func (e *Engine) Reconcile(ctx context.Context, target string, offers []domain.RawOffer, instructions string, onBatch func(done, total int)) Outcome {
	var out Outcome
	log := zap.L().With(zap.String("target", target))

	filter := NewFilter(target, e.opts.Exclude)
	kept := make([]domain.RawOffer, 0, len(offers))
	for _, o := range offers {
		if why := filter.Excluded(o); why != "" {
			out.Excluded++
			log.Debug("offer excluded", zap.String("title", o.Title), zap.String("reason", why))
			continue
		}
		kept = append(kept, o)
	}

	groups := Group(target, kept)
	out.Groups = len(groups)

	analyses := make([]domain.MatchAnalysis, len(groups))
	hits := make([]bool, len(groups))
	for start := 0; start < len(groups); start += e.opts.BatchSize {
		end := min(start+e.opts.BatchSize, len(groups))

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				analyses[i], hits[i] = e.label(ctx, target, groups[i], instructions)
				return nil
			})
		}
		_ = g.Wait()

		if onBatch != nil {
			onBatch(end, len(groups))
		}
	}

	for i, grp := range groups {
		if hits[i] {
			out.CacheHits++
		} else {
			out.OracleCalls++
		}
		a := analyses[i]
		if a.Score <= e.opts.Threshold {
			continue
		}
		for _, m := range grp.Members {
			out.Accepted = append(out.Accepted, domain.Accepted{Offer: m, Analysis: a, GroupHash: grp.Hash})
		}
	}

	log.Info("reconciled",
		zap.Int("offers", len(offers)),
		zap.Int("excluded", out.Excluded),
		zap.Int("groups", out.Groups),
		zap.Int("cache_hits", out.CacheHits),
		zap.Int("oracle_calls", out.OracleCalls),
		zap.Int("accepted", len(out.Accepted)))
	return out
}

// label returns the group's analysis and whether it came from the cache.
func (e *Engine) label(ctx context.Context, target string, grp domain.OfferGroup, instructions string) (domain.MatchAnalysis, bool) {
	cached, ok, err := e.cache.Get(ctx, grp.Hash)
	if err != nil {
		zap.L().Warn("match cache read failed", zap.String("hash", grp.Hash), zap.Error(err))
	} else if ok {
		return cached, true
	}

	a := e.oracle.Evaluate(ctx, target, grp.Representative(), instructions)
	if a.Degraded {
		return a, false
	}
	if err := e.cache.Put(ctx, grp.Hash, a); err != nil {
		zap.L().Warn("match cache write failed", zap.String("hash", grp.Hash), zap.Error(err))
	}
	return a, false
}

// Group clusters offers by match.GroupHash, keeping first-seen order. The
// first member of each group is its representative.
func Group(target string, offers []domain.RawOffer) []domain.OfferGroup {
	idx := map[string]int{}
	var groups []domain.OfferGroup
	for _, o := range offers {
		h := match.GroupHash(target, o.Title)
		if i, ok := idx[h]; ok {
			groups[i].Members = append(groups[i].Members, o)
			continue
		}
		idx[h] = len(groups)
		groups = append(groups, domain.OfferGroup{Hash: h, Members: []domain.RawOffer{o}})
	}
	return groups
}
