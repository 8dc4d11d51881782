package match

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Normalize case-folds and collapses whitespace.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// GroupHash identifies an offer title relative to a target. Titles that differ
// only in case or spacing share a hash; any other wording difference does not,
// so "iPhone 13 Azul" and "iPhone 13 Blue" are evaluated separately.
func GroupHash(target, title string) string {
	h := sha256.Sum256([]byte(Normalize(target) + "\x00" + Normalize(title)))
	return hex.EncodeToString(h[:])
}
