package scrape

import (
	"sort"
	"strings"

	"pricehunt-engine/internal/scrape/amazon"
	"pricehunt-engine/internal/scrape/americanas"
	"pricehunt-engine/internal/scrape/casasbahia"
	"pricehunt-engine/internal/scrape/kabum"
	"pricehunt-engine/internal/scrape/magalu"
	"pricehunt-engine/internal/scrape/mercadolivre"
	"pricehunt-engine/internal/scrape/olx"
	"pricehunt-engine/internal/scrape/types"
)

var registry = map[string]types.Site{
	"mercadolivre": mercadolivre.New(),
	"amazon":       amazon.New(),
	"magalu":       magalu.New(),
	"americanas":   americanas.New(),
	"casasbahia":   casasbahia.New(),
	"kabum":        kabum.New(),
	"olx":          olx.New(),
}

// Names lists every registered marketplace.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Sites resolves marketplace names in order, skipping duplicates. Unknown
// names are returned separately.
func Sites(names []string) (sites []types.Site, unknown []string) {
	seen := map[string]bool{}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		if s, ok := registry[n]; ok {
			sites = append(sites, s)
		} else {
			unknown = append(unknown, n)
		}
	}
	return sites, unknown
}
