package types

import (
	"errors"

	"github.com/PuerkitoBio/goquery"

	"pricehunt-engine/internal/domain"
)

// ErrBlocked means the marketplace served a captcha, login wall or block page.
var ErrBlocked = errors.New("blocked by marketplace")

// Signals is what a Site looks at to decide whether a page is a block page.
type Signals struct {
	Status int    // main document status, 0 if unknown
	URL    string // final URL after redirects
	Title  string
	Body   string // lower-cased visible text
}

// Site is one marketplace. Implementations are stateless and safe for
// concurrent use.
type Site interface {
	Name() string
	// SearchURL builds the listing URL for a 1-based page. category is an
	// optional hint; sites that cannot use it ignore it.
	SearchURL(query, category string, page int) string
	// Extract maps listing cards to offers. It does not filter; the runner
	// drops incomplete items and dedupes.
	Extract(doc *goquery.Document, pageURL string) []domain.RawOffer
	DetectBlocked(sig Signals) bool
}

// SourceResult is the outcome of scraping one marketplace.
type SourceResult struct {
	Source  string
	Offers  []domain.RawOffer
	Pages   int
	Blocked bool
	Err     error
}
