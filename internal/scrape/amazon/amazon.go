// Package amazon scrapes amazon.com.br search results.
package amazon

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricehunt-engine/internal/domain"
	"pricehunt-engine/internal/scrape/types"
	"pricehunt-engine/internal/scrape/util"
)

const baseURL = "https://www.amazon.com.br/s"

var selectors = util.CardSelectors{
	Cards:    []string{`div[data-component-type="s-search-result"]`, `div.s-result-item[data-asin]`},
	Title:    []string{`[data-cy="title-recipe"] h2 span`, "h2 a span", "h2 span"},
	Link:     []string{`[data-cy="title-recipe"] a`, "h2 a", "a.a-link-normal.s-no-outline"},
	Price:    []string{".a-price:not(.a-text-price) .a-offscreen", ".a-price .a-offscreen", ".a-color-price"},
	Image:    []string{"img.s-image"},
	Shipping: []string{`[data-cy="delivery-recipe"]`, ".s-align-children-center"},
}

type Site struct{}

func New() Site { return Site{} }

func (Site) Name() string { return "amazon" }

// SearchURL treats category as an Amazon search alias ("electronics").
func (Site) SearchURL(query, category string, page int) string {
	q := url.Values{}
	q.Set("k", strings.TrimSpace(query))
	if c := strings.TrimSpace(category); c != "" {
		q.Set("i", c)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	return baseURL + "?" + q.Encode()
}

func (s Site) Extract(doc *goquery.Document, pageURL string) []domain.RawOffer {
	cards := util.Cards(doc, pageURL, selectors)
	out := make([]domain.RawOffer, 0, len(cards))
	for _, c := range cards {
		// placeholders and widgets in the result grid carry no ASIN
		if asin, _ := c.Sel.Attr("data-asin"); strings.TrimSpace(asin) == "" {
			continue
		}
		o := c.Offer(s.Name())
		o.Link = util.CanonicalURL(o.Link)
		out = append(out, o)
	}
	return out
}

func (Site) DetectBlocked(sig types.Signals) bool {
	if util.GenericBlocked(sig) {
		return true
	}
	return strings.Contains(strings.ToLower(sig.URL), "/errors/validatecaptcha") ||
		strings.Contains(sig.Body, "api-services-support@amazon.com")
}
