package httpapi

import (
	"net/http"

	"pricehunt-engine/internal/events"
)

type HealthHandler struct {
	Jobs JobStarter
	Hub  *events.Hub
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"ok": true}
	if h.Jobs != nil {
		out["queued_jobs"] = h.Jobs.Queued()
	}
	if h.Hub != nil {
		out["subscribers"] = h.Hub.Subscribers()
		out["dropped_events"] = h.Hub.Dropped()
	}
	writeJSON(w, out)
}
