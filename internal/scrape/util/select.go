package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricehunt-engine/internal/domain"
)

// FirstMatch returns the matches of the first selector in chain that finds
// anything. Chains list the current layout first and older layouts after.
func FirstMatch(s interface {
	Find(string) *goquery.Selection
}, chain ...string) *goquery.Selection {
	var last *goquery.Selection
	for _, sel := range chain {
		last = s.Find(sel)
		if last.Length() > 0 {
			return last
		}
	}
	if last == nil {
		return &goquery.Selection{}
	}
	return last
}

// FirstText is the cleaned text of the first non-empty match in chain.
func FirstText(s *goquery.Selection, chain ...string) string {
	for _, sel := range chain {
		if t := CleanText(s.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// FirstAttr is the first non-empty value of any attr on any selector in
// chain. An empty selector means s itself.
func FirstAttr(s *goquery.Selection, attrs []string, chain ...string) string {
	for _, sel := range chain {
		node := s
		if sel != "" {
			node = s.Find(sel).First()
		}
		for _, a := range attrs {
			if v, ok := node.Attr(a); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// ImageURL reads lazy-loaded images first.
func ImageURL(s *goquery.Selection, chain ...string) string {
	return FirstAttr(s, []string{"data-src", "data-lazy", "src"}, chain...)
}

// CardSelectors describes where a site keeps listing fields. Every field is
// an ordered fallback chain relative to one card.
type CardSelectors struct {
	Cards     []string
	Title     []string
	Link      []string
	Price     []string
	Image     []string
	Shipping  []string
	Seller    []string
	Condition []string
	Location  []string
}

// Card is one listing card with its fields resolved by CardSelectors.
type Card struct {
	Sel       *goquery.Selection
	Title     string
	Link      string
	PriceText string
	Image     string
	Shipping  string
	Seller    string
	Condition string
	Location  string
}

// Cards resolves every card on the page. Links and images are absolutized
// against pageURL.
func Cards(doc *goquery.Document, pageURL string, cs CardSelectors) []Card {
	var out []Card
	FirstMatch(doc, cs.Cards...).Each(func(_ int, s *goquery.Selection) {
		c := Card{
			Sel:       s,
			Title:     FirstText(s, cs.Title...),
			Link:      Absolutize(pageURL, FirstAttr(s, []string{"href"}, cs.Link...)),
			PriceText: FirstText(s, cs.Price...),
			Image:     Absolutize(pageURL, ImageURL(s, cs.Image...)),
			Shipping:  FirstText(s, cs.Shipping...),
			Seller:    FirstText(s, cs.Seller...),
			Condition: FirstText(s, cs.Condition...),
			Location:  FirstText(s, cs.Location...),
		}
		if c.Title == "" {
			c.Title = FirstAttr(s, []string{"title", "aria-label"}, cs.Link...)
		}
		out = append(out, c)
	})
	return out
}

// Offer maps the card to a RawOffer. Price and shipping parse as BRL; a free
// shipping label or an unparsable one counts as zero.
func (c Card) Offer(marketplace string) domain.RawOffer {
	price, _ := ParseBRL(c.PriceText)
	var shipping float64
	if c.Shipping != "" && !FreeShipping(c.Shipping) && strings.Contains(c.Shipping, "R$") {
		shipping, _ = ParseBRL(c.Shipping[strings.Index(c.Shipping, "R$"):])
	}
	return domain.RawOffer{
		Title:       c.Title,
		Price:       price,
		Shipping:    shipping,
		Link:        c.Link,
		Image:       c.Image,
		Marketplace: marketplace,
		SellerName:  c.Seller,
		Condition:   NormalizeCondition(c.Condition),
		Location:    NormalizeLocation(c.Location),
	}
}
