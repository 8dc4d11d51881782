// Package magalu scrapes magazineluiza.com.br search results.
package magalu

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricehunt-engine/internal/domain"
	"pricehunt-engine/internal/scrape/types"
	"pricehunt-engine/internal/scrape/util"
)

const baseURL = "https://www.magazineluiza.com.br/busca/"

// Product cards are themselves anchors on the current layout, hence the
// empty link selector.
var selectors = util.CardSelectors{
	Cards:    []string{`[data-testid="product-card-container"]`, `li[class*="ProductCard"]`},
	Title:    []string{`[data-testid="product-title"]`, "h2"},
	Link:     []string{"", "a"},
	Price:    []string{`[data-testid="price-value"]`, `p[class*="price"]`},
	Image:    []string{`img[data-testid="image"]`, "img"},
	Shipping: []string{`[data-testid="shipping-tag"]`},
}

type Site struct{}

func New() Site { return Site{} }

func (Site) Name() string { return "magalu" }

func (Site) SearchURL(query, category string, page int) string {
	u := baseURL + url.PathEscape(util.QuerySlug(query, "+")) + "/"
	q := url.Values{}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if c := strings.TrimSpace(category); c != "" {
		q.Set("filters", "category---"+strings.ToUpper(c))
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (s Site) Extract(doc *goquery.Document, pageURL string) []domain.RawOffer {
	cards := util.Cards(doc, pageURL, selectors)
	out := make([]domain.RawOffer, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Offer(s.Name()))
	}
	return out
}

func (Site) DetectBlocked(sig types.Signals) bool {
	return util.GenericBlocked(sig)
}
