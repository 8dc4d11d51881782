// Package casasbahia scrapes casasbahia.com.br search results.
package casasbahia

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricehunt-engine/internal/domain"
	"pricehunt-engine/internal/scrape/types"
	"pricehunt-engine/internal/scrape/util"
)

const baseURL = "https://www.casasbahia.com.br/"

var selectors = util.CardSelectors{
	Cards:    []string{`div[data-testid="product-card"]`, `div.product-card`, `li[class*="ProductCard"]`},
	Title:    []string{`h3.product-card__title`, `[data-testid="product-card::name"]`, "h3", "h2"},
	Link:     []string{`a.product-card__title`, `a[data-testid="product-card::link"]`, "a"},
	Price:    []string{`[data-testid="product-card::price"]`, `.product-card__highlight-price`, `span[class*="price"]`},
	Image:    []string{"img"},
	Shipping: []string{`[data-testid="product-card::shipping"]`},
	Seller:   []string{`.product-card__seller`},
}

type Site struct{}

func New() Site { return Site{} }

func (Site) Name() string { return "casasbahia" }

func (Site) SearchURL(query, category string, page int) string {
	u := baseURL + url.PathEscape(util.QuerySlug(query, "-")) + "/b"
	q := url.Values{}
	if c := strings.TrimSpace(category); c != "" {
		q.Set("filter", "d"+c)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
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

// Casas Bahia sits behind Akamai; its block page is a bare 200 with a
// reference number.
func (Site) DetectBlocked(sig types.Signals) bool {
	if util.GenericBlocked(sig) {
		return true
	}
	return strings.Contains(sig.Body, "reference #") && strings.Contains(sig.Body, "access")
}
