package util

import (
	"net/url"
	"sort"
	"strings"
)

var trackingParams = map[string]bool{
	"gclid": true, "fbclid": true, "msclkid": true,
	"tracking_id": true, "searchvariation": true, "position": true,
	"ref": true, "ref_": true, "sr": true, "qid": true,
	"pf_rd_p": true, "pf_rd_r": true, "sprefix": true, "crid": true,
}

// CanonicalURL drops fragments, tracking params and Amazon's /ref= path
// suffix so one listing reached through different campaigns dedupes to one link.
func CanonicalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if i := strings.Index(u.Path, "/ref="); i >= 0 {
		u.Path = u.Path[:i]
		u.RawPath = ""
	}

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if trackingParams[lk] || strings.HasPrefix(lk, "utm_") {
			q.Del(k)
		}
	}
	// Encode sorts keys; sort values too.
	for _, vals := range q {
		sort.Strings(vals)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Absolutize resolves href against the page it was found on.
func Absolutize(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") || href == "#" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		if ref.IsAbs() {
			return ref.String()
		}
		return ""
	}
	return base.ResolveReference(ref).String()
}

// QuerySlug joins query words with sep after lower-casing.
func QuerySlug(query, sep string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), sep)
}
