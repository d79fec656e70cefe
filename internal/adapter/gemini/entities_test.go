package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/cryptoganster/content-pipeline/internal/adapter/gemini"
)

func mockGenerateContentServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"parts": []map[string]any{{"text": text}},
						"role":  "model",
					},
				},
			},
		})
	}))
}

func TestEntityExtractor_Extract(t *testing.T) {
	ts := mockGenerateContentServer(t, `[{"type":"ASSET","value":"BTC","confidence":0.9,"startPos":0,"endPos":3}]`)
	defer ts.Close()

	client, err := gemini.NewClient(context.Background(), "test-key", option.WithEndpoint(ts.URL))
	require.NoError(t, err)

	extractor := gemini.NewEntityExtractor(client)
	entities, err := extractor.Extract(context.Background(), "BTC rallied today")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "BTC", entities[0].Value)
	assert.Equal(t, 0.9, entities[0].Confidence)
}

func TestEntityExtractor_Extract_FencedJSON(t *testing.T) {
	ts := mockGenerateContentServer(t, "```json\n[]\n```")
	defer ts.Close()

	client, err := gemini.NewClient(context.Background(), "test-key", option.WithEndpoint(ts.URL))
	require.NoError(t, err)

	entities, err := gemini.NewEntityExtractor(client).Extract(context.Background(), "no entities here")
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestTemporalExtractor_Extract(t *testing.T) {
	ts := mockGenerateContentServer(t, `{"eventTimestamp":"2024-04-20T00:00:00Z"}`)
	defer ts.Close()

	client, err := gemini.NewClient(context.Background(), "test-key", option.WithEndpoint(ts.URL))
	require.NoError(t, err)

	result, err := gemini.NewTemporalExtractor(client).Extract(context.Background(), "the halving happened", time.Now())
	require.NoError(t, err)
	require.NotNil(t, result.EventTimestamp)
	assert.Equal(t, 2024, result.EventTimestamp.Year())
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	_, err := gemini.NewClient(context.Background(), "")
	assert.Error(t, err)
}
