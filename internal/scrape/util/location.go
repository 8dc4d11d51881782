package util

import (
	"strings"
)

var brazilUF = map[string]bool{
	"AC": true, "AL": true, "AP": true, "AM": true, "BA": true, "CE": true, "DF": true,
	"ES": true, "GO": true, "MA": true, "MT": true, "MS": true, "MG": true, "PA": true,
	"PB": true, "PR": true, "PE": true, "PI": true, "RJ": true, "RN": true, "RS": true,
	"RO": true, "RR": true, "SC": true, "SP": true, "SE": true, "TO": true,
}

// NormalizeLocation turns listing locations like "São Paulo - SP" or
// "Campinas, SP, Centro" into "City, UF". Unrecognized text is cleaned and
// returned as is.
func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}
	city, uf := SplitCityState(loc)
	if uf == "" {
		return loc
	}
	if city == "" {
		return uf
	}
	return city + ", " + uf
}

// SplitCityState finds a Brazilian state code in loc and the city before it.
func SplitCityState(loc string) (city, uf string) {
	parts := strings.FieldsFunc(loc, func(r rune) bool { return r == ',' || r == '-' || r == '/' || r == '|' })
	for i, p := range parts {
		p = strings.ToUpper(CleanText(p))
		if brazilUF[p] {
			uf = p
			if i > 0 {
				city = CleanText(parts[i-1])
			}
			return city, uf
		}
	}
	return "", ""
}
