package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"
)

// RodLauncher starts a fresh Chromium per session.
type RodLauncher struct {
	opts Options
}

func NewRodLauncher(opts Options) *RodLauncher { return &RodLauncher{opts: opts} }

func (l *RodLauncher) Open(ctx context.Context) (Session, error) {
	ln := launcher.New().
		Headless(l.opts.Headless).
		Set("lang", l.opts.Locale).
		Set("window-size", fmt.Sprintf("%d,%d", l.opts.Width, l.opts.Height))
	if l.opts.BinPath != "" {
		ln = ln.Bin(l.opts.BinPath)
	}
	if l.opts.Proxy != "" {
		ln = ln.Proxy(l.opts.Proxy)
	}

	u, err := ln.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		ln.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	inc, err := b.Incognito()
	if err != nil {
		_ = b.Close()
		ln.Kill()
		return nil, fmt.Errorf("incognito context: %w", err)
	}

	router := inc.HijackRequests()
	if err := router.Add("*", "", blockHeavyResources); err != nil {
		_ = b.Close()
		ln.Kill()
		return nil, fmt.Errorf("hijack requests: %w", err)
	}
	go router.Run()

	zap.L().Debug("browser session opened", zap.String("control_url", u))
	return &rodSession{opts: l.opts, launcher: ln, browser: b, incognito: inc, router: router}, nil
}

func blockHeavyResources(h *rod.Hijack) {
	if blockedResource(h.Request.Type()) {
		h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		return
	}
	h.ContinueRequest(&proto.FetchContinueRequest{})
}

func blockedResource(t proto.NetworkResourceType) bool {
	switch t {
	case proto.NetworkResourceTypeImage,
		proto.NetworkResourceTypeFont,
		proto.NetworkResourceTypeStylesheet,
		proto.NetworkResourceTypeMedia:
		return true
	}
	return false
}

type rodSession struct {
	opts      Options
	launcher  *launcher.Launcher
	browser   *rod.Browser
	incognito *rod.Browser
	router    *rod.HijackRouter

	closeOnce sync.Once
	closeErr  error
}

func (s *rodSession) NewPage(ctx context.Context) (Page, error) {
	p, err := stealth.Page(s.incognito)
	if err != nil {
		return nil, fmt.Errorf("stealth page: %w", err)
	}
	if err := s.fingerprint(p); err != nil {
		_ = p.Close()
		return nil, err
	}
	return &rodPage{page: p, navTimeout: s.opts.NavTimeout}, nil
}

func (s *rodSession) fingerprint(p *rod.Page) error {
	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.opts.Width,
		Height:            s.opts.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}
	if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      s.opts.UserAgent,
		AcceptLanguage: s.opts.AcceptLanguage,
		Platform:       "Win32",
	}); err != nil {
		return fmt.Errorf("set user agent: %w", err)
	}
	if err := (proto.EmulationSetLocaleOverride{Locale: s.opts.Locale}).Call(p); err != nil {
		zap.L().Warn("locale override failed", zap.Error(err))
	}
	if err := (proto.EmulationSetTimezoneOverride{TimezoneID: s.opts.Timezone}).Call(p); err != nil {
		return fmt.Errorf("set timezone: %w", err)
	}
	return nil
}

func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.router.Stop(); err != nil {
			errs = append(errs, err)
		}
		if err := s.incognito.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		s.launcher.Kill()
		s.launcher.Cleanup()
		s.closeErr = errors.Join(errs...)
		zap.L().Debug("browser session closed")
	})
	return s.closeErr
}

type rodPage struct {
	page       *rod.Page
	navTimeout time.Duration
}

func (p *rodPage) Navigate(ctx context.Context, url string) (NavResult, error) {
	navCtx, cancel := context.WithTimeout(ctx, p.navTimeout)
	defer cancel()
	pg := p.page.Context(navCtx)

	var status int
	waitDoc := pg.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type == proto.NetworkResourceTypeDocument {
			status = e.Response.Status
			return true
		}
		return false
	})

	if err := pg.Navigate(url); err != nil {
		return NavResult{}, fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := pg.WaitLoad(); err != nil {
		return NavResult{}, fmt.Errorf("wait load %s: %w", url, err)
	}
	waitDoc()

	res := NavResult{Status: status, URL: url}
	if info, err := pg.Info(); err == nil {
		res.URL = info.URL
	}
	return res, nil
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

func (p *rodPage) Title(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

func (p *rodPage) Scroll(ctx context.Context, n int) error {
	pg := p.page.Context(ctx)
	for i := 0; i < n; i++ {
		if _, err := pg.Eval(`() => window.scrollBy(0, window.innerHeight)`); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(400 * time.Millisecond):
		}
	}
	return nil
}

func (p *rodPage) Close() error { return p.page.Close() }
