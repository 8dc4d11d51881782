package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"pricehunt-engine/internal/domain"
)

type Message struct {
	Role    string // system | user
	Content string
}

type CompleteOptions struct {
	JSON bool // ask the model for a single JSON object
}

// Completer is a generative text completion capability.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts CompleteOptions) (string, error)
}

// Oracle turns completions into validated MatchAnalysis values. It never
// returns an error: after the last failed attempt it yields a zero score.
type Oracle struct {
	llm     Completer
	retries int
	delay   time.Duration
}

func NewOracle(llm Completer, retries int, delay time.Duration) *Oracle {
	if retries < 1 {
		retries = 1
	}
	return &Oracle{llm: llm, retries: retries, delay: delay}
}

const systemPrompt = `You compare product listings scraped from Brazilian marketplaces against a product tracked in a price catalog.
Answer with one JSON object and nothing else:
{"score": <integer 0-100>, "reasoning": "<one or two sentences>", "normalizedName": "<canonical product name of the listing>", "city": "<seller city or empty>", "state": "<two-letter UF or empty>", "suggestion": null | {"name": "<catalog name>", "description": "<short description>"}}
Score 100 means the listing is exactly the tracked product, new, in the same variant. Accessories, parts, used or damaged items, bundles of a different product and different models score below 30.
Set "suggestion" only when the listing is a relevant new product that the catalog should track under a different name.`

func buildMessages(target string, c domain.RawOffer, instructions string) []Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Tracked product: %s\n\n", target)
	fmt.Fprintf(&b, "Listing title: %s\n", c.Title)
	fmt.Fprintf(&b, "Marketplace: %s\n", c.Marketplace)
	fmt.Fprintf(&b, "Price: R$ %.2f\n", c.Price)
	if c.SellerName != "" {
		fmt.Fprintf(&b, "Seller: %s\n", c.SellerName)
	}
	if c.Condition != "" {
		fmt.Fprintf(&b, "Condition: %s\n", c.Condition)
	}
	if c.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", c.Location)
	}
	if s := strings.TrimSpace(instructions); s != "" {
		fmt.Fprintf(&b, "\nAdditional instructions from the catalog owner:\n%s\n", s)
	}
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}

type oracleResponse struct {
	Score          *float64 `json:"score"`
	Reasoning      string   `json:"reasoning"`
	NormalizedName string   `json:"normalizedName"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Suggestion     *struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"suggestion"`
}

var errInvalidAnswer = errors.New("invalid oracle answer")

// parseAnswer decodes and validates one completion.
func parseAnswer(raw string) (domain.MatchAnalysis, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	if i, j := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); i >= 0 && j > i {
		raw = raw[i : j+1]
	}

	var r oracleResponse
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return domain.MatchAnalysis{}, fmt.Errorf("%w: %v", errInvalidAnswer, err)
	}
	if r.Score == nil {
		return domain.MatchAnalysis{}, fmt.Errorf("%w: missing score", errInvalidAnswer)
	}
	if *r.Score < 0 || *r.Score > 100 || math.IsNaN(*r.Score) {
		return domain.MatchAnalysis{}, fmt.Errorf("%w: score %v out of range", errInvalidAnswer, *r.Score)
	}
	if strings.TrimSpace(r.Reasoning) == "" {
		return domain.MatchAnalysis{}, fmt.Errorf("%w: empty reasoning", errInvalidAnswer)
	}

	m := domain.MatchAnalysis{
		Score:          int(math.Round(*r.Score)),
		Reasoning:      strings.TrimSpace(r.Reasoning),
		NormalizedName: strings.TrimSpace(r.NormalizedName),
		City:           strings.TrimSpace(r.City),
		State:          strings.ToUpper(strings.TrimSpace(r.State)),
	}
	if r.Suggestion != nil && strings.TrimSpace(r.Suggestion.Name) != "" {
		m.Suggestion = &domain.Suggestion{
			Name:        strings.TrimSpace(r.Suggestion.Name),
			Description: strings.TrimSpace(r.Suggestion.Description),
		}
	}
	return m, nil
}

func (o *Oracle) Evaluate(ctx context.Context, target string, candidate domain.RawOffer, instructions string) domain.MatchAnalysis {
	msgs := buildMessages(target, candidate, instructions)

	var lastErr error
	for attempt := 1; attempt <= o.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		raw, err := o.llm.Complete(ctx, msgs, CompleteOptions{JSON: true})
		if err == nil {
			var m domain.MatchAnalysis
			if m, err = parseAnswer(raw); err == nil {
				return m
			}
		}
		lastErr = err
		zap.L().Warn("oracle attempt failed",
			zap.Int("attempt", attempt),
			zap.String("title", candidate.Title),
			zap.Error(err))

		if attempt == o.retries {
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(o.delay):
		}
	}

	return domain.MatchAnalysis{
		Score:     0,
		Reasoning: fmt.Sprintf("analysis unavailable: %v", lastErr),
		Degraded:  true,
	}
}
