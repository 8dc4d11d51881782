package util

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter paces navigations per site. One limiter is shared by every job
// so concurrent jobs do not multiply the request rate on a marketplace.
// A nil *HostLimiter never waits.
type HostLimiter struct {
	mu    sync.Mutex
	hosts map[string]*rate.Limiter
	every rate.Limit
	burst int
}

// NewHostLimiter returns nil when reqPerSec is not positive.
func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	if reqPerSec <= 0 {
		return nil
	}
	return &HostLimiter{
		hosts: make(map[string]*rate.Limiter),
		every: rate.Limit(reqPerSec),
		burst: max(burst, 1),
	}
}

// siteKey folds "www." and mobile prefixes so www.amazon.com.br and
// amazon.com.br share one budget.
func siteKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "_"
	}
	h := strings.ToLower(u.Hostname())
	for _, p := range []string{"www.", "m."} {
		h = strings.TrimPrefix(h, p)
	}
	return h
}

func (hl *HostLimiter) forKey(key string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	lim, ok := hl.hosts[key]
	if !ok {
		lim = rate.NewLimiter(hl.every, hl.burst)
		hl.hosts[key] = lim
	}
	return lim
}

// WaitURL blocks until raw's site may be visited or ctx ends.
func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	if hl == nil {
		return nil
	}
	return hl.forKey(siteKey(raw)).Wait(ctx)
}
