// Package llm adapts OpenAI-compatible chat completion APIs to match.Completer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"pricehunt-engine/internal/config"
	"pricehunt-engine/internal/match"
)

var presetBaseURLs = map[string]string{
	"openai":     "", // library default
	"openrouter": "https://openrouter.ai/api/v1",
	"groq":       "https://api.groq.com/openai/v1",
	"ollama":     "http://localhost:11434/v1",
}

// KeyFunc resolves the API key at call time so a key stored after startup is
// picked up without a restart.
type KeyFunc func() (string, error)

type Client struct {
	provider    string
	model       string
	baseURL     string
	temperature float32
	http        *http.Client
	key         KeyFunc
}

func New(cfg config.Config, key KeyFunc) (*Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	base := strings.TrimSpace(cfg.LLM.BaseURL)
	if base == "" {
		preset, ok := presetBaseURLs[provider]
		if !ok {
			return nil, fmt.Errorf("llm provider %q needs base_url", provider)
		}
		base = preset
	}
	timeout := time.Duration(cfg.LLM.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		provider:    provider,
		model:       cfg.LLM.Model,
		baseURL:     base,
		temperature: cfg.LLM.Temperature,
		http:        &http.Client{Timeout: timeout},
		key:         key,
	}, nil
}

func (c *Client) apiClient() (*openai.Client, error) {
	key, err := c.key()
	if err != nil {
		// ollama ignores the key but the library still sends a header
		if c.provider != "ollama" {
			return nil, err
		}
		key = "ollama"
	}
	oc := openai.DefaultConfig(key)
	if c.baseURL != "" {
		oc.BaseURL = c.baseURL
	}
	oc.HTTPClient = c.http
	return openai.NewClientWithConfig(oc), nil
}

func (c *Client) Complete(ctx context.Context, messages []match.Message, opts match.CompleteOptions) (string, error) {
	api, err := c.apiClient()
	if err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == "system" {
			role = openai.ChatMessageRoleSystem
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	if opts.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion (%s/%s): %w", c.provider, c.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ match.Completer = (*Client)(nil)
