package match

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricehunt-engine/internal/domain"
)

type scriptedCompleter struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   int
	last    []Message
}

func (s *scriptedCompleter) Complete(_ context.Context, msgs []Message, opts CompleteOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	s.last = msgs
	if !opts.JSON {
		return "", errors.New("expected JSON mode")
	}
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return s.replies[len(s.replies)-1], nil
}

var offer = domain.RawOffer{Title: "Apple iPhone 13 128GB Azul", Price: 3999.90, Marketplace: "amazon"}

func TestEvaluate_ValidAnswer(t *testing.T) {
	c := &scriptedCompleter{replies: []string{
		`{"score": 92, "reasoning": "same model and storage", "normalizedName": "iPhone 13 128GB", "city": "São Paulo", "state": "sp"}`,
	}}
	o := NewOracle(c, 3, 0)

	m := o.Evaluate(context.Background(), "iPhone 13", offer, "prefer blue")
	assert.Equal(t, 92, m.Score)
	assert.Equal(t, "same model and storage", m.Reasoning)
	assert.Equal(t, "iPhone 13 128GB", m.NormalizedName)
	assert.Equal(t, "SP", m.State)
	assert.Nil(t, m.Suggestion)
	assert.Equal(t, 1, c.calls)

	require.Len(t, c.last, 2)
	assert.Equal(t, "system", c.last[0].Role)
	assert.Contains(t, c.last[1].Content, "iPhone 13")
	assert.Contains(t, c.last[1].Content, offer.Title)
	assert.Contains(t, c.last[1].Content, "prefer blue")
}

func TestEvaluate_RetriesThenSucceeds(t *testing.T) {
	c := &scriptedCompleter{
		errs:    []error{errors.New("429 too many requests"), nil, nil},
		replies: []string{"", "not json at all", "```json\n{\"score\": 70, \"reasoning\": \"close\"}\n```"},
	}
	o := NewOracle(c, 3, 0)

	m := o.Evaluate(context.Background(), "iPhone 13", offer, "")
	assert.Equal(t, 70, m.Score)
	assert.Equal(t, 3, c.calls)
}

func TestEvaluate_ExhaustedRetriesYieldZeroScore(t *testing.T) {
	c := &scriptedCompleter{replies: []string{`{"score": 150, "reasoning": "x"}`}}
	o := NewOracle(c, 3, 0)

	m := o.Evaluate(context.Background(), "iPhone 13", offer, "")
	assert.Equal(t, 0, m.Score)
	assert.Contains(t, m.Reasoning, "analysis unavailable")
	assert.True(t, m.Degraded)
	assert.Equal(t, 3, c.calls)
}

func TestEvaluate_CanceledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &scriptedCompleter{errs: []error{errors.New("boom")}, replies: []string{""}}
	o := NewOracle(c, 5, 0)

	m := o.Evaluate(ctx, "iPhone 13", offer, "")
	assert.Equal(t, 0, m.Score)
	assert.Equal(t, 0, c.calls)
	assert.Contains(t, m.Reasoning, "context canceled")
}

func TestParseAnswer(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
		score   int
	}{
		{"plain", `{"score": 55, "reasoning": "ok"}`, false, 55},
		{"float score rounds", `{"score": 80.6, "reasoning": "ok"}`, false, 81},
		{"prose around object", `Here you go: {"score": 10, "reasoning": "case"} thanks`, false, 10},
		{"missing score", `{"reasoning": "ok"}`, true, 0},
		{"negative score", `{"score": -1, "reasoning": "ok"}`, true, 0},
		{"empty reasoning", `{"score": 60, "reasoning": "  "}`, true, 0},
		{"garbage", `¯\_(ツ)_/¯`, true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := parseAnswer(tc.raw)
			if tc.wantErr {
				assert.ErrorIs(t, err, errInvalidAnswer)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.score, m.Score)
		})
	}
}

func TestParseAnswer_Suggestion(t *testing.T) {
	m, err := parseAnswer(`{"score": 90, "reasoning": "r", "suggestion": {"name": "iPhone 13 Mini", "description": "smaller"}}`)
	require.NoError(t, err)
	require.NotNil(t, m.Suggestion)
	assert.Equal(t, "iPhone 13 Mini", m.Suggestion.Name)

	m, err = parseAnswer(`{"score": 90, "reasoning": "r", "suggestion": {"name": ""}}`)
	require.NoError(t, err)
	assert.Nil(t, m.Suggestion)
}
