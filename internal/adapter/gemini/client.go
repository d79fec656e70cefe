// Package gemini implements the NLP external collaborators
// (ports.EntityExtractor, ports.TemporalExtractor, ports.QualityAnalyzer)
// against the Gemini generative API, grounded on the teacher's
// internal/adapter/gemini.Embedder: same genai.Client construction, same
// option.WithAPIKey wiring, generalized from an embedding call to a
// generative one whose response is parsed as JSON.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.0-flash"

// Client wraps a genai.Client configured for a single generative model,
// shared by the entity extractor, temporal extractor, and quality
// analyzer adapters below.
type Client struct {
	inner *genai.Client
	model string
}

func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key not configured")
	}
	opts = append(opts, option.WithAPIKey(apiKey))
	inner, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{inner: inner, model: defaultModel}, nil
}

func (c *Client) Close() error {
	return c.inner.Close()
}

// generate sends a single-turn prompt and returns the concatenated text of
// the first candidate, or an error if Gemini returned no candidates.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	model := c.inner.GenerativeModel(c.model)
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: empty response")
	}

	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	if out == "" {
		return "", fmt.Errorf("gemini: response had no text parts")
	}
	return out, nil
}
