// Package browser provides isolated, fingerprint-configured headless browsing
// sessions. Scrapers depend on the Session and Page interfaces only.
package browser

import (
	"context"
	"strings"
	"time"

	"pricehunt-engine/internal/config"
)

// NavResult describes where a navigation ended up.
type NavResult struct {
	Status int    // HTTP status of the main document, 0 if unknown
	URL    string // final URL after redirects
}

type Page interface {
	Navigate(ctx context.Context, url string) (NavResult, error)
	HTML(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	// Scroll moves down one viewport n times to trigger lazy lists.
	Scroll(ctx context.Context, n int) error
	Close() error
}

// Session is one isolated browser context. Close releases every page and the
// underlying process; it is safe to call more than once.
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

type Launcher interface {
	Open(ctx context.Context) (Session, error)
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Options is the fingerprint every page of a session presents.
type Options struct {
	Headless       bool
	BinPath        string
	Proxy          string
	Locale         string
	Timezone       string
	UserAgent      string
	AcceptLanguage string
	Width, Height  int
	NavTimeout     time.Duration
}

func OptionsFromConfig(cfg config.Config) Options {
	b := cfg.Browser
	o := Options{
		Headless:   b.Headless,
		BinPath:    strings.TrimSpace(b.BinPath),
		Proxy:      strings.TrimSpace(b.Proxy),
		Locale:     strings.TrimSpace(b.Locale),
		Timezone:   strings.TrimSpace(b.Timezone),
		UserAgent:  strings.TrimSpace(b.UserAgent),
		Width:      b.ViewportWidth,
		Height:     b.ViewportHeight,
		NavTimeout: time.Duration(cfg.Scrape.NavTimeoutSecs) * time.Second,
	}
	if o.Locale == "" {
		o.Locale = "pt-BR"
	}
	if o.Timezone == "" {
		o.Timezone = "America/Sao_Paulo"
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.Width <= 0 || o.Height <= 0 {
		o.Width, o.Height = 1366, 768
	}
	if o.NavTimeout <= 0 {
		o.NavTimeout = 45 * time.Second
	}
	o.AcceptLanguage = acceptLanguage(o.Locale)
	return o
}

// acceptLanguage expands "pt-BR" to "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7".
func acceptLanguage(locale string) string {
	parts := []string{locale}
	if i := strings.IndexByte(locale, '-'); i > 0 {
		parts = append(parts, locale[:i]+";q=0.9")
	}
	if !strings.HasPrefix(locale, "en") {
		parts = append(parts, "en-US;q=0.8", "en;q=0.7")
	}
	return strings.Join(parts, ",")
}
