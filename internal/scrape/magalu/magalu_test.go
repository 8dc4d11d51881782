package magalu

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const results = `<html><body><ul>
<li><a data-testid="product-card-container" href="/iphone-13-apple-128gb-azul/p/234567800/te/ip13/">
  <img data-testid="image" src="https://a-static.mlcdn.com.br/1.jpg">
  <h2 data-testid="product-title">iPhone 13 Apple 128GB Azul Tela 6,1”</h2>
  <p data-testid="price-value">ou R$ 4.199,00</p>
  <span data-testid="shipping-tag">Frete grátis</span>
</a></li>
</ul></body></html>`

func TestSearchURL(t *testing.T) {
	s := New()
	assert.Equal(t, "https://www.magazineluiza.com.br/busca/iphone+13/", s.SearchURL("iPhone 13", "", 1))
	assert.Equal(t, "https://www.magazineluiza.com.br/busca/iphone+13/?page=2", s.SearchURL("iPhone 13", "", 2))
}

func TestExtract(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(results))
	require.NoError(t, err)

	offers := New().Extract(doc, "https://www.magazineluiza.com.br/busca/iphone+13/")
	require.Len(t, offers, 1)
	o := offers[0]
	assert.Equal(t, "iPhone 13 Apple 128GB Azul Tela 6,1”", o.Title)
	assert.InDelta(t, 4199.0, o.Price, 0.001)
	assert.Equal(t, "https://www.magazineluiza.com.br/iphone-13-apple-128gb-azul/p/234567800/te/ip13/", o.Link)
	assert.Equal(t, "https://a-static.mlcdn.com.br/1.jpg", o.Image)
}
