package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cryptoganster/content-pipeline/internal/ports"
)

// QualityAnalyzer implements ports.QualityAnalyzer, delegating the
// coherence and relevance components (the two that need real language
// understanding) to the model; length and freshness are cheap enough to
// compute structurally instead of spending a call on them.
type QualityAnalyzer struct {
	client *Client
}

func NewQualityAnalyzer(client *Client) *QualityAnalyzer {
	return &QualityAnalyzer{client: client}
}

const (
	idealTokenCount    = 200
	freshnessHalfLifeH = 24 * 30 // ~30 days
)

type qualityResponse struct {
	Coherence float64 `json:"coherence"`
	Relevance float64 `json:"relevance"`
}

func (q *QualityAnalyzer) Analyze(ctx context.Context, content string, input ports.QualityInput) (ports.QualityComponents, error) {
	prompt := fmt.Sprintf(`Rate this crypto-news text chunk on two axes, each 0-1. "coherence": is it well-formed, readable prose rather than garbled fragments? "relevance": is it substantively about cryptocurrency/blockchain topics rather than incidental boilerplate? Respond with ONLY JSON {"coherence":number,"relevance":number}.

Text:
%s`, content)

	raw, err := q.client.generate(ctx, prompt)
	if err != nil {
		slog.ErrorContext(ctx, "gemini quality analysis failed", "error", err)
		return ports.QualityComponents{}, err
	}

	var parsed qualityResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return ports.QualityComponents{}, fmt.Errorf("gemini: parsing quality response: %w", err)
	}

	return ports.QualityComponents{
		Length:    lengthScore(input.TokenCount),
		Coherence: clamp01(parsed.Coherence),
		Relevance: clamp01(parsed.Relevance),
		Freshness: freshnessScore(input),
	}, nil
}

// lengthScore peaks at idealTokenCount and falls off on both sides; a
// chunk that's too short to carry context scores as poorly as one so long
// it was probably mis-chunked.
func lengthScore(tokenCount int) float64 {
	if tokenCount <= 0 {
		return 0
	}
	ratio := float64(tokenCount) / idealTokenCount
	if ratio > 1 {
		ratio = 1 / ratio
	}
	return clamp01(ratio)
}

// freshnessScore decays hyperbolically from the content's publication time
// as 1/(1+age/freshnessHalfLifeH), halving at freshnessHalfLifeH hours;
// it never looks at the chunk's own event timestamp, since TemporalContext
// is advisory metadata, not part of the scored signal (spec §9 Open
// Question 1).
func freshnessScore(input ports.QualityInput) float64 {
	ageHours := 0.0
	if !input.PublishedAt.IsZero() {
		ageHours = time.Since(input.PublishedAt).Hours()
	}
	if ageHours <= 0 {
		return 1
	}
	decay := ageHours / freshnessHalfLifeH
	score := 1 / (1 + decay)
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
