package gemini_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/cryptoganster/content-pipeline/internal/adapter/gemini"
	"github.com/cryptoganster/content-pipeline/internal/ports"
)

func TestQualityAnalyzer_Analyze(t *testing.T) {
	ts := mockGenerateContentServer(t, `{"coherence":0.8,"relevance":0.6}`)
	defer ts.Close()

	client, err := gemini.NewClient(context.Background(), "test-key", option.WithEndpoint(ts.URL))
	require.NoError(t, err)

	analyzer := gemini.NewQualityAnalyzer(client)
	components, err := analyzer.Analyze(context.Background(), "some chunk text", ports.QualityInput{
		TokenCount:  200,
		PublishedAt: time.Now(),
	})
	require.NoError(t, err)
	require.InDelta(t, 0.8, components.Coherence, 0.0001)
	require.InDelta(t, 0.6, components.Relevance, 0.0001)
	require.InDelta(t, 1.0, components.Length, 0.0001)
	require.Greater(t, components.Freshness, 0.9)
}

func TestQualityAnalyzer_Analyze_StaleContentLowersFreshness(t *testing.T) {
	ts := mockGenerateContentServer(t, `{"coherence":0.5,"relevance":0.5}`)
	defer ts.Close()

	client, err := gemini.NewClient(context.Background(), "test-key", option.WithEndpoint(ts.URL))
	require.NoError(t, err)

	analyzer := gemini.NewQualityAnalyzer(client)
	old := time.Now().Add(-24 * 365 * time.Hour)
	components, err := analyzer.Analyze(context.Background(), "ancient text", ports.QualityInput{
		TokenCount:  200,
		PublishedAt: old,
	})
	require.NoError(t, err)
	require.Less(t, components.Freshness, 0.2)
}
