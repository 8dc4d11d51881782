package reconcile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricehunt-engine/internal/domain"
	"pricehunt-engine/internal/match"
)

type fakeOracle struct {
	mu    sync.Mutex
	calls map[string]int // by representative title
	score func(title string) int
}

func newFakeOracle(score func(string) int) *fakeOracle {
	return &fakeOracle{calls: map[string]int{}, score: score}
}

func (f *fakeOracle) Evaluate(_ context.Context, target string, c domain.RawOffer, _ string) domain.MatchAnalysis {
	f.mu.Lock()
	f.calls[c.Title]++
	f.mu.Unlock()
	return domain.MatchAnalysis{
		Score:          f.score(c.Title),
		Reasoning:      "compared " + c.Title + " with " + target,
		NormalizedName: strings.ToUpper(c.Title),
		City:           "São Paulo",
		State:          "SP",
	}
}

func (f *fakeOracle) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type memCache struct {
	mu     sync.Mutex
	m      map[string]domain.MatchAnalysis
	getErr error
	putErr error
}

func newMemCache() *memCache { return &memCache{m: map[string]domain.MatchAnalysis{}} }

func (c *memCache) Get(_ context.Context, h string) (domain.MatchAnalysis, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return domain.MatchAnalysis{}, false, c.getErr
	}
	a, ok := c.m[h]
	return a, ok, nil
}

func (c *memCache) Put(_ context.Context, h string, a domain.MatchAnalysis) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	if _, ok := c.m[h]; !ok {
		c.m[h] = a
	}
	return nil
}

func iphoneOffers() []domain.RawOffer {
	return []domain.RawOffer{
		{Title: "iPhone 13 128GB", Price: 4000, Marketplace: "A", Link: "https://a/1"},
		{Title: "iphone 13   128gb", Price: 4050, Marketplace: "B", Link: "https://b/1"},
		{Title: "iPhone 13 Capinha", Price: 30, Marketplace: "C", Link: "https://c/1"},
	}
}

func TestReconcile_IPhone13Scenario(t *testing.T) {
	oracle := newFakeOracle(func(string) int { return 85 })
	e := New(oracle, newMemCache(), Options{Threshold: 50, BatchSize: 5})

	out := e.Reconcile(context.Background(), "iPhone 13", iphoneOffers(), "", nil)

	assert.Equal(t, 1, out.Excluded)
	assert.Equal(t, 1, out.Groups)
	assert.Equal(t, 1, oracle.total())
	require.Len(t, out.Accepted, 2)
	assert.Equal(t, "A", out.Accepted[0].Offer.Marketplace)
	assert.Equal(t, 4000.0, out.Accepted[0].Offer.Price)
	assert.Equal(t, "B", out.Accepted[1].Offer.Marketplace)
	assert.Equal(t, 4050.0, out.Accepted[1].Offer.Price)
	for _, a := range out.Accepted {
		assert.Equal(t, 85, a.Analysis.Score)
	}
}

func TestReconcile_ReplicationAndOneCallPerHash(t *testing.T) {
	oracle := newFakeOracle(func(title string) int {
		if strings.Contains(strings.ToLower(title), "pro") {
			return 40
		}
		return 90
	})
	e := New(oracle, newMemCache(), Options{Threshold: 50, BatchSize: 2})

	var offers []domain.RawOffer
	for i := 0; i < 6; i++ {
		offers = append(offers,
			domain.RawOffer{Title: "Galaxy S23 256GB", Price: float64(3000 + i), Link: "https://x/" + string(rune('a'+i))},
			domain.RawOffer{Title: "GALAXY  s23 256gb ", Price: float64(3100 + i), Link: "https://y/" + string(rune('a'+i))},
			domain.RawOffer{Title: "Galaxy S23 Pro", Price: 5000, Link: "https://z/" + string(rune('a'+i))},
		)
	}
	offers = append(offers, domain.RawOffer{Title: "Galaxy S23 Verde", Price: 2900, Link: "https://w/1"})

	var batches []int
	out := e.Reconcile(context.Background(), "Galaxy S23", offers, "", func(done, total int) {
		batches = append(batches, done)
		assert.Equal(t, 3, total)
	})

	assert.Equal(t, 3, out.Groups)
	assert.Equal(t, []int{2, 3}, batches)
	for title, n := range oracle.calls {
		assert.Equal(t, 1, n, title)
	}
	assert.Equal(t, 3, oracle.total())

	require.Len(t, out.Accepted, 13)
	byHash := map[string]domain.MatchAnalysis{}
	for _, a := range out.Accepted {
		if prev, ok := byHash[a.GroupHash]; ok {
			assert.Equal(t, prev, a.Analysis)
		}
		byHash[a.GroupHash] = a.Analysis
		assert.Greater(t, a.Analysis.Score, 50)
	}
	assert.Len(t, byHash, 2)
}

func TestReconcile_ThresholdIsStrict(t *testing.T) {
	oracle := newFakeOracle(func(title string) int {
		if title == "exact" {
			return 50
		}
		return 51
	})
	e := New(oracle, nil, Options{Threshold: 50})

	out := e.Reconcile(context.Background(), "t", []domain.RawOffer{
		{Title: "exact", Price: 1, Link: "l1"},
		{Title: "above", Price: 1, Link: "l2"},
	}, "", nil)
	require.Len(t, out.Accepted, 1)
	assert.Equal(t, "above", out.Accepted[0].Offer.Title)
}

func TestReconcile_IdempotentWithWarmCache(t *testing.T) {
	cache := newMemCache()
	first := newFakeOracle(func(string) int { return 85 })
	out1 := New(first, cache, Options{Threshold: 50}).Reconcile(context.Background(), "iPhone 13", iphoneOffers(), "", nil)

	second := newFakeOracle(func(string) int { return 10 })
	out2 := New(second, cache, Options{Threshold: 50}).Reconcile(context.Background(), "iPhone 13", iphoneOffers(), "", nil)

	assert.Equal(t, 0, second.total())
	assert.Equal(t, out1.Accepted, out2.Accepted)
	assert.Equal(t, 1, out2.CacheHits)
	assert.Equal(t, 0, out2.OracleCalls)
}

func TestReconcile_CacheErrorsAreIgnored(t *testing.T) {
	cache := newMemCache()
	cache.getErr = errors.New("db locked")
	cache.putErr = errors.New("db locked")
	oracle := newFakeOracle(func(string) int { return 80 })

	out := New(oracle, cache, Options{Threshold: 50}).Reconcile(context.Background(), "iPhone 13", iphoneOffers(), "", nil)
	assert.Len(t, out.Accepted, 2)
	assert.Equal(t, 1, oracle.total())
}

type degradedOracle struct{}

func (degradedOracle) Evaluate(context.Context, string, domain.RawOffer, string) domain.MatchAnalysis {
	return domain.MatchAnalysis{Reasoning: "analysis unavailable: timeout", Degraded: true}
}

func TestReconcile_DegradedAnalysisIsDroppedAndNotCached(t *testing.T) {
	cache := newMemCache()
	out := New(degradedOracle{}, cache, Options{Threshold: 50}).Reconcile(context.Background(), "iPhone 13", iphoneOffers(), "", nil)
	assert.Empty(t, out.Accepted)
	assert.Empty(t, cache.m)
}

func TestReconcile_CacheIsWrittenForRejectedGroupsToo(t *testing.T) {
	cache := newMemCache()
	oracle := newFakeOracle(func(string) int { return 5 })
	New(oracle, cache, Options{Threshold: 50}).Reconcile(context.Background(), "iPhone 13", iphoneOffers(), "", nil)

	a, ok := cache.m[match.GroupHash("iPhone 13", "iPhone 13 128GB")]
	require.True(t, ok)
	assert.Equal(t, 5, a.Score)
}

func TestFilter(t *testing.T) {
	f := NewFilter("iPhone 13", []string{"Lacrado Falso"})

	assert.Equal(t, "capinha", f.Excluded(domain.RawOffer{Title: "Capinha iPhone 13 Silicone"}))
	assert.Equal(t, "seminovo", f.Excluded(domain.RawOffer{Title: "iPhone 13 seminovo 128GB"}))
	assert.Equal(t, "lacrado falso", f.Excluded(domain.RawOffer{Title: "iPhone 13 lacrado-falso"}))
	assert.Equal(t, "condition used", f.Excluded(domain.RawOffer{Title: "iPhone 13", Condition: "used"}))
	assert.Equal(t, "condition refurbished", f.Excluded(domain.RawOffer{Title: "iPhone 13", Condition: "refurbished"}))
	assert.Empty(t, f.Excluded(domain.RawOffer{Title: "iPhone 13 Showcase Edition"}))
	assert.Empty(t, f.Excluded(domain.RawOffer{Title: "Apple iPhone 13 128GB Azul", Condition: "new"}))

	capa := NewFilter("Capa iPhone 13", nil)
	assert.Empty(t, capa.Excluded(domain.RawOffer{Title: "Capa iPhone 13 Transparente"}))
	assert.Equal(t, "usado", capa.Excluded(domain.RawOffer{Title: "Capa iPhone 13 usado"}))
}

func TestGroup_KeepsFirstSeenOrder(t *testing.T) {
	groups := Group("tv", []domain.RawOffer{
		{Title: "TV 50"}, {Title: "TV 43"}, {Title: "tv  50"},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "TV 50", groups[0].Representative().Title)
	assert.Len(t, groups[0].Members, 2)
	assert.Equal(t, "TV 43", groups[1].Representative().Title)
}
