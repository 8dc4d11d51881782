package util

import (
	"strconv"
	"strings"
	"unicode"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// ParseBRL reads Brazilian-formatted amounts: "R$ 1.299,90", "1.299",
// "3999.90". Comma is the decimal separator when present.
func ParseBRL(s string) (float64, bool) {
	s = CleanText(s)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	n := strings.Trim(b.String(), ".,")
	if n == "" {
		return 0, false
	}

	switch {
	case strings.Contains(n, ","):
		i := strings.LastIndex(n, ",")
		n = strings.ReplaceAll(n[:i], ".", "") + "." + strings.ReplaceAll(n[i+1:], ".", "")
		n = strings.ReplaceAll(n, ",", "")
	case strings.Count(n, ".") == 1 && len(n)-strings.Index(n, ".") <= 3:
		// 3999.90 or 49.9: a dot before one or two digits is a decimal point
	default:
		n = strings.ReplaceAll(n, ".", "")
	}

	v, err := strconv.ParseFloat(n, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// ParseFractionCents joins split price widgets ("1.299" + "90").
func ParseFractionCents(fraction, cents string) (float64, bool) {
	whole, ok := ParseBRL(strings.ReplaceAll(CleanText(fraction), ",", ""))
	if !ok {
		return 0, false
	}
	c := CleanText(cents)
	if c == "" {
		return whole, true
	}
	cv, err := strconv.Atoi(c)
	if err != nil || cv < 0 || cv > 99 {
		return whole, true
	}
	if len(c) == 1 {
		cv *= 10
	}
	return whole + float64(cv)/100, true
}

// FreeShipping reports whether a shipping label advertises free delivery.
func FreeShipping(label string) bool {
	l := strings.ToLower(CleanText(label))
	return strings.Contains(l, "frete grátis") || strings.Contains(l, "frete gratis") ||
		strings.Contains(l, "entrega grátis") || strings.Contains(l, "free shipping")
}

// NormalizeCondition maps marketplace labels to new | used | refurbished.
func NormalizeCondition(label string) string {
	l := strings.ToLower(CleanText(label))
	switch {
	case l == "":
		return ""
	case strings.Contains(l, "recondicionado") || strings.Contains(l, "refurbished") ||
		strings.Contains(l, "renovado") || strings.Contains(l, "renewed"):
		return "refurbished"
	case strings.Contains(l, "usado") || strings.Contains(l, "seminovo") || strings.Contains(l, "used"):
		return "used"
	case strings.Contains(l, "novo") || strings.Contains(l, "new"):
		return "new"
	}
	return l
}
