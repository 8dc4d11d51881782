package util

import (
	"net/http"
	"strings"

	"pricehunt-engine/internal/scrape/types"
)

var blockURLMarkers = []string{
	"captcha",
	"/login",
	"/signin",
	"/ap/signin",
	"account-verification",
	"/challenge",
	"validate.perfdrive",
	"/blocked",
}

var blockTitleMarkers = []string{
	"robot check",
	"access denied",
	"acesso negado",
	"attention required",
	"just a moment",
	"verificação de segurança",
	"are you a robot",
	"pardon our interruption",
}

var blockBodyMarkers = []string{
	"não sou um robô",
	"nao sou um robo",
	"digite os caracteres que você vê",
	"enter the characters you see below",
	"verify you are human",
	"confirme que você é humano",
	"seu acesso foi bloqueado",
	"request unsuccessful. incapsula",
	"perimeterx",
}

// GenericBlocked applies heuristics every marketplace shares: hard block
// statuses, redirects to login or captcha pages and block-page wording.
func GenericBlocked(sig types.Signals) bool {
	switch sig.Status {
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	}
	u := strings.ToLower(sig.URL)
	for _, m := range blockURLMarkers {
		if strings.Contains(u, m) {
			return true
		}
	}
	t := strings.ToLower(sig.Title)
	for _, m := range blockTitleMarkers {
		if strings.Contains(t, m) {
			return true
		}
	}
	for _, m := range blockBodyMarkers {
		if strings.Contains(sig.Body, m) {
			return true
		}
	}
	return false
}
