package httpapi

import (
	"net/http"
	"strings"
	"sync/atomic"

	"pricehunt-engine/internal/config"
)

type SecretsHandler struct {
	CfgVal    *atomic.Value // stores config.Config
	SetLLMKey func(account, key string) error
}

func (h SecretsHandler) StoreLLMKey(w http.ResponseWriter, r *http.Request) {
	var req setLLMKeyReq
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_key", "api_key is required")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := h.SetLLMKey(cfg.LLM.KeyringAccount, req.APIKey); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_error", "failed to store key: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
