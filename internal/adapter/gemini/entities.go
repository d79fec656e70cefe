package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cryptoganster/content-pipeline/internal/ports"
)

// EntityExtractor implements ports.EntityExtractor by asking the model to
// tag crypto-domain entity mentions in a chunk and return them as JSON.
type EntityExtractor struct {
	client *Client
}

func NewEntityExtractor(client *Client) *EntityExtractor {
	return &EntityExtractor{client: client}
}

type entityResponse struct {
	Type       string  `json:"type"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	StartPos   int     `json:"startPos"`
	EndPos     int     `json:"endPos"`
}

func (e *EntityExtractor) Extract(ctx context.Context, content string) ([]ports.CryptoEntity, error) {
	prompt := fmt.Sprintf(`Identify cryptocurrency-related entity mentions (asset symbols, protocols, exchanges, people) in the text below. Respond with ONLY a JSON array, no prose, of objects shaped {"type":string,"value":string,"confidence":number 0-1,"startPos":int,"endPos":int} with character offsets into the text. If there are none, respond with [].

Text:
%s`, content)

	raw, err := e.client.generate(ctx, prompt)
	if err != nil {
		slog.ErrorContext(ctx, "gemini entity extraction failed", "error", err)
		return nil, err
	}

	var parsed []entityResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("gemini: parsing entity response: %w", err)
	}

	out := make([]ports.CryptoEntity, 0, len(parsed))
	for _, p := range parsed {
		out = append(out, ports.CryptoEntity{
			Type:       p.Type,
			Value:      p.Value,
			Confidence: p.Confidence,
			StartPos:   p.StartPos,
			EndPos:     p.EndPos,
		})
	}
	return out, nil
}

// TemporalExtractor implements ports.TemporalExtractor by asking the model
// whether the chunk describes an event at a time other than its content
// item's publication time.
type TemporalExtractor struct {
	client *Client
}

func NewTemporalExtractor(client *Client) *TemporalExtractor {
	return &TemporalExtractor{client: client}
}

type temporalResponse struct {
	EventTimestamp string `json:"eventTimestamp"` // RFC3339, or "" if none found
}

func (t *TemporalExtractor) Extract(ctx context.Context, content string, publishedAt time.Time) (*ports.TemporalResult, error) {
	prompt := fmt.Sprintf(`This text was published at %s. Does it describe a specific past or future event with its own distinct timestamp (e.g. "the halving on April 20, 2024")? Respond with ONLY JSON {"eventTimestamp":"RFC3339 string or empty"}.

Text:
%s`, publishedAt.Format(time.RFC3339), content)

	raw, err := t.client.generate(ctx, prompt)
	if err != nil {
		slog.ErrorContext(ctx, "gemini temporal extraction failed", "error", err)
		return nil, err
	}

	var parsed temporalResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("gemini: parsing temporal response: %w", err)
	}

	result := &ports.TemporalResult{PublishedAt: publishedAt}
	if parsed.EventTimestamp != "" {
		ts, err := time.Parse(time.RFC3339, parsed.EventTimestamp)
		if err == nil {
			result.EventTimestamp = &ts
		}
	}
	return result, nil
}
