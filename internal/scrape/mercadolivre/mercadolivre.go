// Package mercadolivre scrapes lista.mercadolivre.com.br search listings.
package mercadolivre

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricehunt-engine/internal/domain"
	"pricehunt-engine/internal/scrape/types"
	"pricehunt-engine/internal/scrape/util"
)

const (
	baseURL  = "https://lista.mercadolivre.com.br/"
	pageSize = 48
)

// Poly cards are the 2024+ layout; ui-search-* is the previous one.
var selectors = util.CardSelectors{
	Cards:     []string{"li.ui-search-layout__item", "div.poly-card", "div.ui-search-result__wrapper"},
	Title:     []string{"a.poly-component__title", "h3.poly-component__title-wrapper", "h2.ui-search-item__title"},
	Link:      []string{"a.poly-component__title", "a.ui-search-item__group__element", "a.ui-search-link", "a"},
	Image:     []string{"img.poly-component__picture", "img.ui-search-result-image__element", "img"},
	Shipping:  []string{".poly-component__shipping", ".ui-search-item__shipping"},
	Seller:    []string{".poly-component__seller", ".ui-search-official-store-label"},
	Condition: []string{".poly-component__item-condition", ".ui-search-item__group__element--condition"},
	Location:  []string{".poly-component__location", ".ui-search-item__location"},
}

var priceBoxes = []string{".poly-price__current", ".ui-search-price__second-line", ".andes-money-amount"}

type Site struct{}

func New() Site { return Site{} }

func (Site) Name() string { return "mercadolivre" }

func (Site) SearchURL(query, category string, page int) string {
	u := baseURL
	if c := util.QuerySlug(category, "-"); c != "" {
		u += url.PathEscape(c) + "/"
	}
	u += url.PathEscape(util.QuerySlug(query, "-"))
	if page > 1 {
		u += fmt.Sprintf("_Desde_%d_NoIndex_True", (page-1)*pageSize+1)
	}
	return u
}

func (s Site) Extract(doc *goquery.Document, pageURL string) []domain.RawOffer {
	cards := util.Cards(doc, pageURL, selectors)
	out := make([]domain.RawOffer, 0, len(cards))
	for _, c := range cards {
		o := c.Offer(s.Name())
		o.Price = price(c.Sel)
		out = append(out, o)
	}
	return out
}

// price reads the split fraction/cents widget of the current price box.
func price(card *goquery.Selection) float64 {
	box := util.FirstMatch(card, priceBoxes...).First()
	v, ok := util.ParseFractionCents(
		box.Find(".andes-money-amount__fraction").First().Text(),
		box.Find(".andes-money-amount__cents").First().Text(),
	)
	if !ok {
		return 0
	}
	return v
}

func (Site) DetectBlocked(sig types.Signals) bool {
	if util.GenericBlocked(sig) {
		return true
	}
	return strings.Contains(sig.URL, "mercadolivre.com.br/gz/") ||
		strings.Contains(sig.Body, "para continuar, acesse sua conta")
}
