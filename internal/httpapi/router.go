package httpapi

import (
	"net/http"

	"pricehunt-engine/internal/secrets"
)

// NewMux returns the raw mux; main wraps it with middleware.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Products
	ph := ProductsHandler{Store: d.Store, Jobs: d.Jobs}
	mux.HandleFunc("/products/{id}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.Get,
	}))
	mux.HandleFunc("/products/{id}/search", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ph.Search,
	}))

	// Jobs
	jh := JobsHandler{Store: d.Store}
	mux.HandleFunc("/jobs/{id}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.Get,
	}))
	mux.HandleFunc("/jobs/{id}/logs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.Logs,
	}))
	mux.HandleFunc("/jobs/{id}/results", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.Results,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	setKey := d.SetLLMKey
	if setKey == nil {
		setKey = secrets.SetLLMKey
	}
	sh := SecretsHandler{CfgVal: d.CfgVal, SetLLMKey: setKey}
	mux.HandleFunc("/api/secrets/llm", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.StoreLLMKey,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	hh := HealthHandler{Jobs: d.Jobs, Hub: d.Hub}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	dh := DBHandler{Store: d.Store}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Checkpoint,
	}))

	if d.Shutdown != nil {
		mux.HandleFunc("/shutdown", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: d.Shutdown,
		}))
	}

	return mux
}

// Handler is the mux wrapped in the standard middleware chain.
func Handler(d Deps) http.Handler {
	return Chain(NewMux(d), RequestID, Recover, AccessLog, Cors)
}
