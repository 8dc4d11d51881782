// Package jobs runs search jobs: a Controller executes one job end to end and
// a Dispatcher queues jobs onto a bounded worker pool.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"pricehunt-engine/internal/browser"
	"pricehunt-engine/internal/domain"
	"pricehunt-engine/internal/events"
	"pricehunt-engine/internal/progress"
	"pricehunt-engine/internal/reconcile"
	"pricehunt-engine/internal/scrape"
	"pricehunt-engine/internal/scrape/types"
	"pricehunt-engine/internal/store"
)

// Store is the persistence the controller needs.
type Store interface {
	TransitionJob(ctx context.Context, id string, to domain.JobStatus) error
	AppendLog(ctx context.Context, jobID string, e domain.LogEntry) error
	SaveResults(ctx context.Context, jobID, productID string, accepted []domain.Accepted) (*float64, error)
}

// Task is one queued job.
type Task struct {
	JobID     string
	ProductID string
	Target    string // product name searched for and matched against
	Options   domain.SearchOptions
}

type Deps struct {
	Store    Store
	Launcher browser.Launcher
	Runner   *scrape.Runner
	Engine   *reconcile.Engine
	Events   events.Publisher // optional

	// Sites resolves marketplace names; defaults to scrape.Sites.
	Sites               func(names []string) ([]types.Site, []string)
	DefaultMarketplaces []string
	ProgressEvery       time.Duration
}

type Controller struct {
	d Deps
}

func NewController(d Deps) *Controller {
	if d.Sites == nil {
		d.Sites = scrape.Sites
	}
	return &Controller{d: d}
}

// Progress checkpoints.
const (
	pctStarted    = 5
	pctScrapeFrom = 10
	pctScrapeTo   = 60
	pctMatchTo    = 90
	pctPersisted  = 95
)

// RunJob executes t to a terminal state. It never returns an error and never
// panics; every failure ends as FAILED with a 0% log entry.
func (c *Controller) RunJob(ctx context.Context, t Task) {
	rep := progress.NewReporter(t.JobID, c.d.Store, c.d.Events, c.d.ProgressEvery)
	log := zap.L().With(zap.String("job_id", t.JobID), zap.String("target", t.Target))

	defer func() {
		if p := recover(); p != nil {
			log.Error("job panic recovered", zap.Any("panic", p))
			c.fail(ctx, t, rep, fmt.Sprintf("internal error: %v", p))
		}
	}()

	if err := c.d.Store.TransitionJob(ctx, t.JobID, domain.JobRunning); err != nil {
		log.Error("cannot start job", zap.Error(err))
		if !errors.Is(err, store.ErrInvalidTransition) {
			c.fail(ctx, t, rep, "could not start: "+err.Error())
		}
		return
	}
	c.publishStatus(t.JobID, domain.JobRunning)
	_ = rep.Report(ctx, pctStarted, fmt.Sprintf("Searching for %q", t.Target))

	marketplaces := t.Options.Marketplaces
	if len(marketplaces) == 0 {
		marketplaces = c.d.DefaultMarketplaces
	}
	sites, unknown := c.d.Sites(marketplaces)
	if len(unknown) > 0 {
		_ = rep.Report(ctx, pctStarted, "Ignoring unknown marketplaces: "+strings.Join(unknown, ", "))
	}
	if len(sites) == 0 {
		c.fail(ctx, t, rep, "no marketplace to search")
		return
	}

	offers, results, err := c.collect(ctx, t, sites, rep)
	if err != nil {
		c.fail(ctx, t, rep, err.Error())
		return
	}
	_ = rep.Report(ctx, pctScrapeTo, fmt.Sprintf("Collected %d offers from %d marketplaces", len(offers), usable(results)))

	out := c.d.Engine.Reconcile(ctx, t.Target, offers, t.Options.Instructions, func(done, total int) {
		_ = rep.Report(ctx, pctScrapeTo+(pctMatchTo-pctScrapeTo)*done/max(total, 1),
			fmt.Sprintf("Analyzed %d of %d offer groups", done, total))
	})
	_ = rep.Report(ctx, pctMatchTo, fmt.Sprintf("%d offers accepted (%d excluded, %d groups, %d cached)",
		len(out.Accepted), out.Excluded, out.Groups, out.CacheHits))

	best, err := c.d.Store.SaveResults(ctx, t.JobID, t.ProductID, out.Accepted)
	if err != nil {
		log.Error("persist results failed", zap.Error(err))
		c.fail(ctx, t, rep, "saving results failed: "+err.Error())
		return
	}
	if best == nil {
		_ = rep.Report(ctx, pctPersisted, "No relevant offers found")
	}

	if err := c.d.Store.TransitionJob(ctx, t.JobID, domain.JobCompleted); err != nil {
		log.Error("complete job failed", zap.Error(err))
		c.fail(ctx, t, rep, "could not complete: "+err.Error())
		return
	}
	msg := fmt.Sprintf("Completed: %d results", len(out.Accepted))
	if best != nil {
		msg += fmt.Sprintf(", best price R$ %.2f", *best)
	}
	_ = rep.Report(context.WithoutCancel(ctx), 100, msg)
	c.publishStatus(t.JobID, domain.JobCompleted)
	log.Info("job completed", zap.Int("results", len(out.Accepted)))
}

// collect runs every scraper on one browser session and closes the session
// before returning. It fails only when the session cannot be opened or when
// no marketplace produced a usable answer.
func (c *Controller) collect(ctx context.Context, t Task, sites []types.Site, rep *progress.Reporter) ([]domain.RawOffer, []types.SourceResult, error) {
	session, err := c.d.Launcher.Open(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("browser session failed: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			zap.L().Warn("browser session close failed", zap.String("job_id", t.JobID), zap.Error(err))
		}
	}()

	var done atomic.Int32
	offers, results := scrape.RunAll(ctx, c.d.Runner, session, sites, t.Target, t.Options.Category, func(r types.SourceResult) {
		n := int(done.Add(1))
		pct := pctScrapeFrom + (pctScrapeTo-pctScrapeFrom)*n/len(sites)
		_ = rep.Report(ctx, pct, sourceMessage(r))
	})

	if usable(results) == 0 {
		return nil, results, errors.New("every marketplace failed or was blocked")
	}
	return offers, results, nil
}

func sourceMessage(r types.SourceResult) string {
	switch {
	case r.Blocked && len(r.Offers) > 0:
		return fmt.Sprintf("%s: %d offers (blocked after %d pages)", r.Source, len(r.Offers), r.Pages)
	case r.Blocked:
		return r.Source + ": blocked"
	case r.Err != nil && len(r.Offers) == 0:
		return fmt.Sprintf("%s: failed (%v)", r.Source, r.Err)
	}
	return fmt.Sprintf("%s: %d offers", r.Source, len(r.Offers))
}

// usable counts sources that answered, even with zero offers.
func usable(results []types.SourceResult) int {
	n := 0
	for _, r := range results {
		if len(r.Offers) > 0 || (!r.Blocked && r.Err == nil) {
			n++
		}
	}
	return n
}

// fail moves the job to FAILED and writes the 0% marker. Terminal writes use
// a context that survives cancellation of ctx.
func (c *Controller) fail(ctx context.Context, t Task, rep *progress.Reporter, reason string) {
	wctx := context.WithoutCancel(ctx)
	if err := c.d.Store.TransitionJob(wctx, t.JobID, domain.JobFailed); err != nil {
		zap.L().Error("mark job failed", zap.String("job_id", t.JobID), zap.Error(err))
	}
	_ = rep.Fail(wctx, "Failed: "+reason)
	c.publishStatus(t.JobID, domain.JobFailed)
}

func (c *Controller) publishStatus(jobID string, st domain.JobStatus) {
	if c.d.Events == nil {
		return
	}
	c.d.Events.Publish(jobID, events.MakeEvent("", events.TypeJobStatus, 1, events.JobStatus{JobID: jobID, Status: string(st)}))
}
