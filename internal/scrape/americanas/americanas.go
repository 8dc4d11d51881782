// Package americanas scrapes americanas.com.br search results.
package americanas

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
	baseURL  = "https://www.americanas.com.br/busca/"
	pageSize = 24
)

var selectors = util.CardSelectors{
	Cards:  []string{`div[class*="ProductCard_productCard"]`, `div[class*="inStockCard"]`, `a[href*="/produto/"]`},
	Title:  []string{`h3[class*="ProductCard_name"]`, `[class*="product-name"]`, "h3"},
	Link:   []string{`a[href*="/produto/"]`, "", "a"},
	Price:  []string{`[class*="ProductCard_salesPrice"]`, `[class*="price__SalesPrice"]`, `span[class*="price"]`},
	Image:  []string{"img"},
	Seller: []string{`[class*="ProductCard_seller"]`},
}

type Site struct{}

func New() Site { return Site{} }

func (Site) Name() string { return "americanas" }

func (Site) SearchURL(query, category string, page int) string {
	u := baseURL + url.PathEscape(util.QuerySlug(query, "-"))
	q := url.Values{}
	q.Set("limit", strconv.Itoa(pageSize))
	q.Set("offset", strconv.Itoa((max(page, 1)-1)*pageSize))
	if c := strings.TrimSpace(category); c != "" {
		q.Set("categoria", c)
	}
	return u + "?" + q.Encode()
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
