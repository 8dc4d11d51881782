package kabum

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricehunt-engine/internal/scrape/types"
)

const results = `<html><body><main>
<article class="productCard"><a class="productLink" href="/produto/239478/iphone-13-128gb">
  <img class="imageCard" src="https://images.kabum.com.br/1.jpg">
  <span class="nameCard">iPhone 13 Apple 128GB, Tela 6.1, Meia-Noite</span>
  <span class="priceCard">R$ 3.699,99</span>
</a></article>
</main></body></html>`

func TestSearchURL(t *testing.T) {
	assert.Equal(t, "https://www.kabum.com.br/busca/iphone-13?page_number=1&page_size=20", New().SearchURL("iPhone 13", "ignored", 1))
}

func TestExtract(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(results))
	require.NoError(t, err)

	offers := New().Extract(doc, "https://www.kabum.com.br/busca/iphone-13")
	require.Len(t, offers, 1)
	o := offers[0]
	assert.Equal(t, "iPhone 13 Apple 128GB, Tela 6.1, Meia-Noite", o.Title)
	assert.InDelta(t, 3699.99, o.Price, 0.001)
	assert.Equal(t, "https://www.kabum.com.br/produto/239478/iphone-13-128gb", o.Link)
	assert.Equal(t, "KaBuM!", o.SellerName)
}

func TestDetectBlocked(t *testing.T) {
	assert.True(t, New().DetectBlocked(types.Signals{Status: 200, Title: "Attention Required! | Cloudflare"}))
	assert.False(t, New().DetectBlocked(types.Signals{Status: 200, Title: "iphone 13 | KaBuM!"}))
}
