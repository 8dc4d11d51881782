// Package browsertest provides an in-memory browser.Launcher for tests.
package browsertest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"pricehunt-engine/internal/browser"
)

// Response is what a fake page shows after navigating to a URL.
type Response struct {
	Status   int
	FinalURL string // defaults to the requested URL
	Title    string
	HTML     string
	Err      error // returned by Navigate
}

// Launcher serves canned responses. Handler wins over Pages when set.
type Launcher struct {
	Pages   map[string]Response
	Handler func(url string) Response
	OpenErr error

	mu       sync.Mutex
	sessions []*Session
}

func (l *Launcher) Open(ctx context.Context) (browser.Session, error) {
	if l.OpenErr != nil {
		return nil, l.OpenErr
	}
	s := &Session{launcher: l}
	l.mu.Lock()
	l.sessions = append(l.sessions, s)
	l.mu.Unlock()
	return s, nil
}

// Sessions returns every session opened so far.
func (l *Launcher) Sessions() []*Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Session(nil), l.sessions...)
}

func (l *Launcher) respond(url string) Response {
	if l.Handler != nil {
		return l.Handler(url)
	}
	if r, ok := l.Pages[url]; ok {
		return r
	}
	return Response{Status: 404, Title: "Not Found", HTML: "<html><head><title>Not Found</title></head><body></body></html>"}
}

type Session struct {
	launcher *Launcher
	closed   atomic.Int32
	pages    atomic.Int32
	visits   sync.Map // url -> *atomic.Int32
}

var ErrSessionClosed = errors.New("session closed")

func (s *Session) NewPage(ctx context.Context) (browser.Page, error) {
	if s.closed.Load() > 0 {
		return nil, ErrSessionClosed
	}
	s.pages.Add(1)
	return &page{s: s}, nil
}

func (s *Session) Close() error {
	s.closed.Add(1)
	return nil
}

// Closed reports whether Close was called at least once.
func (s *Session) Closed() bool { return s.closed.Load() > 0 }

func (s *Session) PagesOpened() int { return int(s.pages.Load()) }

// Visits counts navigations to url.
func (s *Session) Visits(url string) int {
	v, ok := s.visits.Load(url)
	if !ok {
		return 0
	}
	return int(v.(*atomic.Int32).Load())
}

type page struct {
	s   *Session
	cur Response
}

func (p *page) Navigate(ctx context.Context, url string) (browser.NavResult, error) {
	if err := ctx.Err(); err != nil {
		return browser.NavResult{}, err
	}
	v, _ := p.s.visits.LoadOrStore(url, new(atomic.Int32))
	v.(*atomic.Int32).Add(1)

	r := p.s.launcher.respond(url)
	if r.Err != nil {
		return browser.NavResult{}, r.Err
	}
	if r.FinalURL == "" {
		r.FinalURL = url
	}
	p.cur = r
	return browser.NavResult{Status: r.Status, URL: r.FinalURL}, nil
}

func (p *page) HTML(context.Context) (string, error)  { return p.cur.HTML, nil }
func (p *page) Title(context.Context) (string, error) { return p.cur.Title, nil }
func (p *page) Scroll(context.Context, int) error     { return nil }
func (p *page) Close() error                          { return nil }
