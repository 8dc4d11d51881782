package reconcile

import (
	"strings"
	"unicode"

	"pricehunt-engine/internal/domain"
)

// DefaultExclusions flags accessories, parts and second-hand listings in
// Brazilian Portuguese marketplace titles. Terms match whole words.
var DefaultExclusions = []string{
	// accessories
	"capa", "capinha", "case", "película", "pelicula", "vidro temperado",
	"carregador", "suporte", "bumper", "skin",
	"adesivo", "protetor", "pulseira", "refil",
	// second hand
	"usado", "usada", "seminovo", "seminova", "recondicionado", "recondicionada",
	"vitrine", "mostruário", "mostruario",
	// damaged or parts
	"defeito", "com defeito", "quebrado", "quebrada", "trincado", "trincada",
	"peças", "pecas", "retirada de peças", "não liga", "nao liga",
	"caixa vazia", "réplica", "replica",
}

// Filter drops offers matching the exclusion vocabulary and offers flagged
// used or refurbished. A term that appears in the target itself is not used
// against offers, so "Capa iPhone 13" still finds capas.
type Filter struct {
	terms []string
}

func NewFilter(target string, extra []string) Filter {
	t := words(target)
	var terms []string
	seen := map[string]bool{}
	for _, term := range append(append([]string{}, DefaultExclusions...), extra...) {
		w := words(term)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		if strings.Contains(t, w) {
			continue
		}
		terms = append(terms, w)
	}
	return Filter{terms: terms}
}

// Excluded returns the matched reason, or "" to keep the offer.
func (f Filter) Excluded(o domain.RawOffer) string {
	switch strings.ToLower(strings.TrimSpace(o.Condition)) {
	case "used", "refurbished":
		return "condition " + strings.ToLower(o.Condition)
	}
	title := words(o.Title)
	for _, term := range f.terms {
		if strings.Contains(title, term) {
			return strings.TrimSpace(term)
		}
	}
	return ""
}

// words lower-cases s and reduces it to " w1 w2 ... " so substring checks
// only match whole words.
func words(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(fields) == 0 {
		return ""
	}
	return " " + strings.Join(fields, " ") + " "
}
