package scrape

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"pricehunt-engine/internal/browser"
	"pricehunt-engine/internal/config"
	"pricehunt-engine/internal/domain"
	"pricehunt-engine/internal/scrape/types"
	"pricehunt-engine/internal/scrape/util"
)

// Runner drives one Site through a browser page: navigation with retries,
// block detection, pagination and cleanup of extracted offers.
type Runner struct {
	MaxPages    int
	MaxResults  int
	NavRetries  int
	Backoff     time.Duration
	ScrollSteps int
	Limiter     *util.HostLimiter
}

func NewRunner(cfg config.Config, limiter *util.HostLimiter) *Runner {
	return &Runner{
		MaxPages:    cfg.Scrape.MaxPages,
		MaxResults:  cfg.Scrape.MaxResults,
		NavRetries:  cfg.Scrape.NavRetries,
		Backoff:     time.Duration(cfg.Scrape.RetryBackoffMs) * time.Millisecond,
		ScrollSteps: 3,
		Limiter:     limiter,
	}
}

// Scrape never returns an error; failures are reported in the result and
// whatever was collected before them is kept.
func (r *Runner) Scrape(ctx context.Context, site types.Site, query, category string, session browser.Session) (res types.SourceResult) {
	res.Source = site.Name()
	log := zap.L().With(zap.String("source", res.Source))

	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("scraper panic: %v", p)
			log.Error("scraper panic recovered", zap.Any("panic", p))
		}
	}()

	page, err := session.NewPage(ctx)
	if err != nil {
		res.Err = fmt.Errorf("open page: %w", err)
		log.Warn("open page failed", zap.Error(err))
		return res
	}
	defer func() { _ = page.Close() }()

	limit := r.MaxResults
	if limit <= 0 {
		limit = math.MaxInt
	}

	seen := map[string]bool{}
	for p := 1; p <= max(r.MaxPages, 1); p++ {
		target := site.SearchURL(query, category, p)
		doc, finalURL, err := r.load(ctx, page, site, target)
		if err != nil {
			if errors.Is(err, types.ErrBlocked) {
				res.Blocked = true
				log.Warn("blocked, stopping source", zap.String("url", target))
			} else {
				res.Err = err
				log.Warn("page load failed", zap.String("url", target), zap.Error(err))
			}
			break
		}
		res.Pages++

		added := 0
		for _, o := range site.Extract(doc, finalURL) {
			o, ok := sanitize(o, finalURL, res.Source)
			if !ok || seen[o.Link] {
				continue
			}
			seen[o.Link] = true
			res.Offers = append(res.Offers, o)
			added++
			if len(res.Offers) >= limit {
				break
			}
		}
		log.Debug("page scraped", zap.Int("page", p), zap.Int("new", added), zap.Int("total", len(res.Offers)))

		if added == 0 || len(res.Offers) >= limit {
			break
		}
	}
	return res
}

// load navigates with retries. Blocks are not retried.
func (r *Runner) load(ctx context.Context, page browser.Page, site types.Site, target string) (*goquery.Document, string, error) {
	var lastErr error
	attempts := max(r.NavRetries, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(r.Backoff):
			}
		}
		if err := r.Limiter.WaitURL(ctx, target); err != nil {
			return nil, "", err
		}

		doc, finalURL, err := r.visit(ctx, page, site, target)
		if err == nil || errors.Is(err, types.ErrBlocked) {
			return doc, finalURL, err
		}
		lastErr = err
		zap.L().Debug("navigation attempt failed",
			zap.String("source", site.Name()),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return nil, "", fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

func (r *Runner) visit(ctx context.Context, page browser.Page, site types.Site, target string) (*goquery.Document, string, error) {
	nav, err := page.Navigate(ctx, target)
	if err != nil {
		return nil, "", err
	}
	if r.ScrollSteps > 0 {
		_ = page.Scroll(ctx, r.ScrollSteps)
	}
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("read html: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", fmt.Errorf("parse html: %w", err)
	}
	title, _ := page.Title(ctx)
	if title == "" {
		title = util.CleanText(doc.Find("title").First().Text())
	}

	sig := types.Signals{
		Status: nav.Status,
		URL:    nav.URL,
		Title:  title,
		Body:   strings.ToLower(util.CleanText(doc.Find("body").Text())),
	}
	if site.DetectBlocked(sig) {
		return nil, "", types.ErrBlocked
	}
	if nav.Status >= 500 {
		return nil, "", fmt.Errorf("status %d", nav.Status)
	}
	return doc, nav.URL, nil
}

// sanitize drops offers without title, positive price or link and makes the
// link absolute.
func sanitize(o domain.RawOffer, pageURL, source string) (domain.RawOffer, bool) {
	o.Title = util.CleanText(o.Title)
	o.Link = util.Absolutize(pageURL, o.Link)
	if o.Title == "" || o.Link == "" || o.Price <= 0 {
		return o, false
	}
	if o.Shipping < 0 {
		o.Shipping = 0
	}
	if o.Marketplace == "" {
		o.Marketplace = source
	}
	return o, true
}
