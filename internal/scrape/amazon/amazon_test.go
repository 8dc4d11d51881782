package amazon

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricehunt-engine/internal/scrape/types"
)

const results = `<html><body><div class="s-main-slot">
<div data-component-type="s-search-result" data-asin="B09G9HD6PD" class="s-result-item">
  <img class="s-image" src="https://m.media-amazon.com/images/I/1.jpg">
  <div data-cy="title-recipe"><a class="a-link-normal" href="/Apple-iPhone-13-128-GB/dp/B09G9HD6PD/ref=sr_1_1?qid=1&sr=8-1"><h2><span>Apple iPhone 13 (128 GB) - Meia-noite</span></h2></a></div>
  <span class="a-price"><span class="a-offscreen">R$ 3.999,00</span></span>
  <span class="a-price a-text-price"><span class="a-offscreen">R$ 5.999,00</span></span>
  <div data-cy="delivery-recipe">Entrega GRÁTIS sexta-feira</div>
</div>
<div data-component-type="s-search-result" data-asin="" class="s-result-item"><h2><span>Patrocinado</span></h2></div>
</div></body></html>`

func TestSearchURL(t *testing.T) {
	s := New()
	assert.Equal(t, "https://www.amazon.com.br/s?k=iPhone+13", s.SearchURL("iPhone 13", "", 1))
	assert.Equal(t, "https://www.amazon.com.br/s?i=electronics&k=iPhone+13&page=3", s.SearchURL("iPhone 13", "electronics", 3))
}

func TestExtract(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(results))
	require.NoError(t, err)

	offers := New().Extract(doc, "https://www.amazon.com.br/s?k=iPhone+13")
	require.Len(t, offers, 1)
	o := offers[0]
	assert.Equal(t, "Apple iPhone 13 (128 GB) - Meia-noite", o.Title)
	assert.InDelta(t, 3999.0, o.Price, 0.001)
	assert.Equal(t, "https://www.amazon.com.br/Apple-iPhone-13-128-GB/dp/B09G9HD6PD", o.Link)
	assert.Equal(t, 0.0, o.Shipping)
	assert.Equal(t, "amazon", o.Marketplace)
}

func TestDetectBlocked(t *testing.T) {
	s := New()
	assert.True(t, s.DetectBlocked(types.Signals{Status: 200, URL: "https://www.amazon.com.br/errors/validateCaptcha", Title: "Amazon.com.br"}))
	assert.True(t, s.DetectBlocked(types.Signals{Status: 503}))
	assert.True(t, s.DetectBlocked(types.Signals{Status: 200, Body: "to discuss automated access to amazon data please contact api-services-support@amazon.com."}))
	assert.False(t, s.DetectBlocked(types.Signals{Status: 200, Title: "Amazon.com.br : iPhone 13"}))
}
