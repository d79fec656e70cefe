package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoganster/content-pipeline/internal/domain/content"
	"github.com/cryptoganster/content-pipeline/internal/domain/refinement"
	"github.com/cryptoganster/content-pipeline/internal/domain/source"
	"github.com/cryptoganster/content-pipeline/internal/errs"
	"github.com/cryptoganster/content-pipeline/internal/hashing"
	"github.com/cryptoganster/content-pipeline/internal/store/postgres"
	"github.com/cryptoganster/content-pipeline/internal/testutils"
)

func seedContentItem(t *testing.T, s *testutils.IntegrationSuite) *content.Item {
	ctx := context.Background()
	sources := postgres.NewSourceRepo(s.DB)
	contents := postgres.NewContentRepo(s.DB)
	hash := hashing.New()

	src := source.New("src-1", "WEB", "Site", map[string]any{})
	require.NoError(t, sources.Save(ctx, src))

	raw := "ETH crossed a key resistance level."
	item, err := content.New("item-1", src.ID, hash.SHA256(raw), raw, raw,
		content.Metadata{Title: "Breakout"}, nil, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, contents.Save(ctx, item))
	return item
}

func TestRefinementRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := testutils.NewIntegrationSuite(t)
	s.Setup()
	defer s.Teardown()

	ctx := context.Background()
	item := seedContentItem(t, s)
	refinements := postgres.NewRefinementRepo(s.DB)

	ref := refinement.New("ref-1", item.ID)
	require.NoError(t, refinements.Save(ctx, ref))

	require.NoError(t, ref.Start(time.Now().UTC()))
	hash := hashing.New()
	chunk := refinement.Chunk{
		ChunkID:  "chunk-1",
		Content:  "ETH crossed resistance",
		Position: refinement.Position{Index: 0, StartOffset: 0, EndOffset: 23},
		Hash:     hash.SHA256("ETH crossed resistance"),
	}
	require.NoError(t, ref.AddChunk(chunk))
	require.NoError(t, refinements.Save(ctx, ref))
	assert.Equal(t, 1, ref.Version)

	got, err := refinements.Get(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, refinement.StatusProcessing, got.Status)
	require.Len(t, got.Chunks, 1)
	assert.Equal(t, chunk.ChunkID, got.Chunks[0].ChunkID)

	byContentItem, err := refinements.GetByContentItemID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, ref.ID, byContentItem.ID)

	nonTerminal, err := refinements.GetNonTerminalByContentItemID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, ref.ID, nonTerminal.ID)

	require.NoError(t, got.Complete(time.Now().UTC()))
	require.NoError(t, refinements.Save(ctx, got))

	_, err = refinements.GetNonTerminalByContentItemID(ctx, item.ID)
	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestChunkTallyRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := testutils.NewIntegrationSuite(t)
	s.Setup()
	defer s.Teardown()

	ctx := context.Background()
	item := seedContentItem(t, s)
	refinements := postgres.NewRefinementRepo(s.DB)
	tallies := postgres.NewChunkTallyRepo(s.DB)

	ref := refinement.New("ref-1", item.ID)
	require.NoError(t, refinements.Save(ctx, ref))

	require.NoError(t, tallies.Init(ctx, ref.ID, 3))

	t1, err := tallies.Increment(ctx, ref.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, t1.Processed)
	assert.Equal(t, 1, t1.Valid)

	t2, err := tallies.Increment(ctx, ref.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, t2.Processed)
	assert.Equal(t, 1, t2.Valid)

	got, err := tallies.Get(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.Processed)

	_, err = tallies.Get(ctx, "missing")
	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
