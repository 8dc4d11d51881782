package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricehunt-engine/internal/domain"
	"pricehunt-engine/internal/events"
)

type memLog struct {
	mu      sync.Mutex
	entries []domain.LogEntry
	err     error
}

func (m *memLog) AppendLog(_ context.Context, _ string, e domain.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memLog) progresses() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int
	for _, e := range m.entries {
		out = append(out, e.Progress)
	}
	return out
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestReporter(store LogAppender, pub events.Publisher) (*Reporter, *clock) {
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewReporter("job-1", store, pub, 2*time.Second).WithClock(c.now), c
}

func TestReport_RateLimitsIntermediateWrites(t *testing.T) {
	store := &memLog{}
	r, c := newTestReporter(store, nil)
	ctx := context.Background()

	require.NoError(t, r.Report(ctx, 10, "starting"))
	require.NoError(t, r.Report(ctx, 20, "dropped"))
	c.advance(time.Second)
	require.NoError(t, r.Report(ctx, 25, "still dropped"))
	c.advance(time.Second)
	require.NoError(t, r.Report(ctx, 30, "written"))

	assert.Equal(t, []int{10, 30}, store.progresses())
}

func TestReport_TerminalWritesBypassLimiter(t *testing.T) {
	store := &memLog{}
	r, _ := newTestReporter(store, nil)
	ctx := context.Background()

	require.NoError(t, r.Report(ctx, 40, "scraping"))
	require.NoError(t, r.Report(ctx, 100, "done"))
	require.NoError(t, r.Fail(ctx, "persist failed"))

	assert.Equal(t, []int{40, 100, 0}, store.progresses())
}

func TestReport_ProgressIsMonotonic(t *testing.T) {
	store := &memLog{}
	r, c := newTestReporter(store, nil)
	ctx := context.Background()

	for _, p := range []int{10, 50, 30, 60, 45, 150} {
		require.NoError(t, r.Report(ctx, p, "step"))
		c.advance(3 * time.Second)
	}
	require.NoError(t, r.Fail(ctx, "boom"))

	got := store.progresses()
	assert.Equal(t, []int{10, 50, 50, 60, 60, 100, 0}, got)
	for i := 1; i < len(got)-1; i++ {
		assert.GreaterOrEqual(t, got[i], got[i-1])
	}
	assert.Equal(t, 100, r.Last())
}

func TestReport_StoreErrorIsReturnedAndNotCounted(t *testing.T) {
	store := &memLog{err: errors.New("disk full")}
	r, _ := newTestReporter(store, nil)

	err := r.Report(context.Background(), 100, "done")
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 0, r.Last())
}

func TestReport_PublishesEvents(t *testing.T) {
	hub := events.NewHub()
	ch := hub.Subscribe("job-1")
	r, _ := newTestReporter(&memLog{}, hub)

	require.NoError(t, r.Report(context.Background(), 100, "done"))
	select {
	case evt := <-ch:
		assert.Contains(t, evt, `"job_progress"`)
		assert.Contains(t, evt, `"job-1"`)
	default:
		t.Fatal("no event published")
	}
}
