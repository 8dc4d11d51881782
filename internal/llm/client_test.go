package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricehunt-engine/internal/config"
	"pricehunt-engine/internal/match"
)

func staticKey(k string) KeyFunc { return func() (string, error) { return k, nil } }

func TestComplete_SendsJSONModeAndReturnsContent(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"{\"score\":80}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.LLM.Provider = "custom"
	cfg.LLM.BaseURL = srv.URL + "/v1"
	cfg.LLM.Model = "test-model"

	c, err := New(cfg, staticKey("sk-123"))
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), []match.Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "hi"},
	}, match.CompleteOptions{JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"score":80}`, out)

	assert.Equal(t, "Bearer sk-123", auth)
	assert.Equal(t, "test-model", got["model"])
	rf, ok := got["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", rf["type"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestComplete_MissingKey(t *testing.T) {
	cfg := config.Default()
	c, err := New(cfg, func() (string, error) { return "", errors.New("no key") })
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), nil, match.CompleteOptions{})
	assert.EqualError(t, err, "no key")
}

func TestNew_Presets(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "groq"
	c, err := New(cfg, staticKey("k"))
	require.NoError(t, err)
	assert.Equal(t, "https://api.groq.com/openai/v1", c.baseURL)

	cfg.LLM.Provider = "custom"
	cfg.LLM.BaseURL = ""
	_, err = New(cfg, staticKey("k"))
	assert.Error(t, err)
}
