package mercadolivre

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricehunt-engine/internal/scrape/types"
)

const listing = `<html><body><ol>
<li class="ui-search-layout__item"><div class="poly-card">
  <img class="poly-component__picture" data-src="https://http2.mlstatic.com/D_1.webp">
  <h3 class="poly-component__title-wrapper"><a class="poly-component__title" href="https://www.mercadolivre.com.br/apple-iphone-13-128-gb-azul/p/MLB1?pdp_filters=x#reviews">Apple iPhone 13 (128 GB) - Azul</a></h3>
  <span class="poly-component__seller">Por Apple</span>
  <div class="poly-price__current"><span class="andes-money-amount"><span class="andes-money-amount__currency-symbol">R$</span><span class="andes-money-amount__fraction">3.799</span><span class="andes-money-amount__cents">90</span></span></div>
  <div class="poly-component__shipping">Frete grátis</div>
</div></li>
<li class="ui-search-layout__item"><div class="poly-card">
  <h3><a class="poly-component__title" href="/capinha-iphone-13/p/MLB2">Capinha iPhone 13 Silicone</a></h3>
  <span class="poly-component__item-condition">Usado</span>
  <div class="poly-price__current"><span class="andes-money-amount__fraction">29</span></div>
</div></li>
</ol></body></html>`

func TestSearchURL(t *testing.T) {
	s := New()
	assert.Equal(t, "https://lista.mercadolivre.com.br/iphone-13", s.SearchURL("iPhone 13", "", 1))
	assert.Equal(t, "https://lista.mercadolivre.com.br/celulares/iphone-13_Desde_49_NoIndex_True", s.SearchURL("iPhone 13", "Celulares", 2))
}

func TestExtract(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listing))
	require.NoError(t, err)

	offers := New().Extract(doc, "https://lista.mercadolivre.com.br/iphone-13")
	require.Len(t, offers, 2)

	o := offers[0]
	assert.Equal(t, "Apple iPhone 13 (128 GB) - Azul", o.Title)
	assert.InDelta(t, 3799.90, o.Price, 0.001)
	assert.Equal(t, 0.0, o.Shipping)
	assert.Equal(t, "mercadolivre", o.Marketplace)
	assert.Equal(t, "Por Apple", o.SellerName)
	assert.Equal(t, "https://http2.mlstatic.com/D_1.webp", o.Image)

	assert.Equal(t, "https://lista.mercadolivre.com.br/capinha-iphone-13/p/MLB2", offers[1].Link)
	assert.InDelta(t, 29.0, offers[1].Price, 0.001)
	assert.Equal(t, "used", offers[1].Condition)
}

func TestDetectBlocked(t *testing.T) {
	s := New()
	assert.True(t, s.DetectBlocked(types.Signals{Status: 200, URL: "https://www.mercadolivre.com.br/gz/account-verification"}))
	assert.True(t, s.DetectBlocked(types.Signals{Status: 403}))
	assert.False(t, s.DetectBlocked(types.Signals{Status: 200, URL: "https://lista.mercadolivre.com.br/iphone-13", Title: "Iphone 13 | MercadoLivre"}))
}
