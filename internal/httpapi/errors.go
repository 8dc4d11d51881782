package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"pricehunt-engine/internal/jobs"
	"pricehunt-engine/internal/store"
)

// APIError is the body of every non-2xx JSON response.
type APIError struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, APIError{Error: ErrorBody{
		Code:      code,
		Message:   message,
		RequestID: RequestIDFrom(r.Context()),
	}})
}

var sentinelStatus = []struct {
	err    error
	status int
	code   string
}{
	{store.ErrNotFound, http.StatusNotFound, "not_found"},
	{jobs.ErrProductInactive, http.StatusConflict, "product_inactive"},
	{jobs.ErrQueueFull, http.StatusServiceUnavailable, "queue_full"},
	{jobs.ErrClosed, http.StatusServiceUnavailable, "shutting_down"},
	{store.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
}

// writeDomainError maps package sentinels to statuses; anything else is a 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, s := range sentinelStatus {
		if errors.Is(err, s.err) {
			WriteError(w, r, s.status, s.code, err.Error())
			return
		}
	}
	zap.L().Error("request failed",
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
}
