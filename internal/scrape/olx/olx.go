// Package olx scrapes olx.com.br classified ads.
package olx

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricehunt-engine/internal/domain"
	"pricehunt-engine/internal/scrape/types"
	"pricehunt-engine/internal/scrape/util"
)

const baseURL = "https://www.olx.com.br/"

var selectors = util.CardSelectors{
	Cards:     []string{`section[data-ds-component="DS-AdCard"]`, "section.olx-ad-card", `li[data-testid="ad-card"]`},
	Title:     []string{"h2", `a[data-testid="adcard-link"]`},
	Link:      []string{`a[data-testid="adcard-link"]`, "a.olx-ad-card__link-wrapper", "a"},
	Price:     []string{"h3.olx-ad-card__price", `[class*="price"]`, "h3"},
	Image:     []string{"img"},
	Location:  []string{".olx-ad-card__location-date-container p", `[class*="location"]`},
	Condition: []string{`[data-testid="condition"]`},
}

type Site struct{}

func New() Site { return Site{} }

func (Site) Name() string { return "olx" }

// SearchURL treats category as an OLX path segment ("celulares").
func (Site) SearchURL(query, category string, page int) string {
	path := "brasil"
	if c := util.QuerySlug(category, "-"); c != "" {
		path = "brasil/" + url.PathEscape(c)
	}
	q := url.Values{}
	q.Set("q", strings.TrimSpace(query))
	if page > 1 {
		q.Set("o", strconv.Itoa(page))
	}
	return baseURL + path + "?" + q.Encode()
}

func (s Site) Extract(doc *goquery.Document, pageURL string) []domain.RawOffer {
	cards := util.Cards(doc, pageURL, selectors)
	out := make([]domain.RawOffer, 0, len(cards))
	for _, c := range cards {
		o := c.Offer(s.Name())
		o.Link = util.CanonicalURL(o.Link)
		out = append(out, o)
	}
	return out
}

func (Site) DetectBlocked(sig types.Signals) bool {
	return util.GenericBlocked(sig)
}
