package olx

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const results = `<html><body>
<section data-ds-component="DS-AdCard">
  <a data-testid="adcard-link" href="https://sp.olx.com.br/sao-paulo-e-regiao/celulares/iphone-13-lacrado-1234567890?lis=listing_2020"><h2>iPhone 13 128gb lacrado</h2></a>
  <h3 class="olx-ad-card__price">R$ 3.500</h3>
  <div class="olx-ad-card__location-date-container"><p>São Paulo, SP</p></div>
</section>
</body></html>`

func TestSearchURL(t *testing.T) {
	s := New()
	assert.Equal(t, "https://www.olx.com.br/brasil?q=iPhone+13", s.SearchURL("iPhone 13", "", 1))
	assert.Equal(t, "https://www.olx.com.br/brasil/celulares?o=2&q=iPhone+13", s.SearchURL("iPhone 13", "celulares", 2))
}

func TestExtract(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(results))
	require.NoError(t, err)

	offers := New().Extract(doc, "https://www.olx.com.br/brasil?q=iPhone+13")
	require.Len(t, offers, 1)
	o := offers[0]
	assert.Equal(t, "iPhone 13 128gb lacrado", o.Title)
	assert.InDelta(t, 3500.0, o.Price, 0.001)
	assert.Equal(t, "São Paulo, SP", o.Location)
	assert.Equal(t, "https://sp.olx.com.br/sao-paulo-e-regiao/celulares/iphone-13-lacrado-1234567890?lis=listing_2020", o.Link)
}
