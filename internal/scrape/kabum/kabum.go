// Package kabum scrapes kabum.com.br search results.
package kabum

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricehunt-engine/internal/domain"
	"pricehunt-engine/internal/scrape/types"
	"pricehunt-engine/internal/scrape/util"
)

const (
	baseURL  = "https://www.kabum.com.br/busca/"
	pageSize = 20
)

var selectors = util.CardSelectors{
	Cards: []string{"article.productCard", "div.productCard", `div[class*="productCard"]`},
	Title: []string{"span.nameCard", `span[class*="nameCard"]`, "h3", "h2"},
	Link:  []string{"a.productLink", `a[href*="/produto/"]`, "a"},
	Price: []string{"span.priceCard", `span[class*="priceCard"]`},
	Image: []string{"img.imageCard", "img"},
}

type Site struct{}

func New() Site { return Site{} }

func (Site) Name() string { return "kabum" }

// KaBuM! has no free-form category filter on search; category is ignored.
func (Site) SearchURL(query, _ string, page int) string {
	q := url.Values{}
	q.Set("page_number", strconv.Itoa(max(page, 1)))
	q.Set("page_size", strconv.Itoa(pageSize))
	return baseURL + url.PathEscape(util.QuerySlug(query, "-")) + "?" + q.Encode()
}

func (s Site) Extract(doc *goquery.Document, pageURL string) []domain.RawOffer {
	cards := util.Cards(doc, pageURL, selectors)
	out := make([]domain.RawOffer, 0, len(cards))
	for _, c := range cards {
		o := c.Offer(s.Name())
		if o.SellerName == "" {
			o.SellerName = "KaBuM!"
		}
		out = append(out, o)
	}
	return out
}

func (Site) DetectBlocked(sig types.Signals) bool {
	if util.GenericBlocked(sig) {
		return true
	}
	return strings.Contains(strings.ToLower(sig.Title), "cloudflare")
}
