package browser

import (
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"

	"pricehunt-engine/internal/config"
)

func TestOptionsFromConfig_Defaults(t *testing.T) {
	cfg := config.Default()
	o := OptionsFromConfig(cfg)

	assert.True(t, o.Headless)
	assert.Equal(t, "pt-BR", o.Locale)
	assert.Equal(t, "America/Sao_Paulo", o.Timezone)
	assert.Equal(t, 1366, o.Width)
	assert.Equal(t, 768, o.Height)
	assert.Equal(t, defaultUserAgent, o.UserAgent)
	assert.Equal(t, "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7", o.AcceptLanguage)
	assert.Equal(t, 45*time.Second, o.NavTimeout)
}

func TestOptionsFromConfig_FillsBlanks(t *testing.T) {
	cfg := config.Default()
	cfg.Browser.Locale = ""
	cfg.Browser.Timezone = " "
	cfg.Browser.ViewportWidth = 0
	cfg.Browser.UserAgent = "custom-ua"
	cfg.Scrape.NavTimeoutSecs = 0

	o := OptionsFromConfig(cfg)
	assert.Equal(t, "pt-BR", o.Locale)
	assert.Equal(t, "America/Sao_Paulo", o.Timezone)
	assert.Equal(t, 1366, o.Width)
	assert.Equal(t, "custom-ua", o.UserAgent)
	assert.Equal(t, 45*time.Second, o.NavTimeout)
}

func TestAcceptLanguage(t *testing.T) {
	assert.Equal(t, "en-US,en;q=0.9", acceptLanguage("en-US"))
	assert.Equal(t, "es,en-US;q=0.8,en;q=0.7", acceptLanguage("es"))
}

func TestBlockedResource(t *testing.T) {
	for _, rt := range []proto.NetworkResourceType{
		proto.NetworkResourceTypeImage,
		proto.NetworkResourceTypeFont,
		proto.NetworkResourceTypeStylesheet,
		proto.NetworkResourceTypeMedia,
	} {
		assert.True(t, blockedResource(rt), rt)
	}
	for _, rt := range []proto.NetworkResourceType{
		proto.NetworkResourceTypeDocument,
		proto.NetworkResourceTypeScript,
		proto.NetworkResourceTypeXHR,
		proto.NetworkResourceTypeFetch,
	} {
		assert.False(t, blockedResource(rt), rt)
	}
}
