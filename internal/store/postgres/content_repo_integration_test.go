package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoganster/content-pipeline/internal/domain/content"
	"github.com/cryptoganster/content-pipeline/internal/domain/source"
	"github.com/cryptoganster/content-pipeline/internal/errs"
	"github.com/cryptoganster/content-pipeline/internal/hashing"
	"github.com/cryptoganster/content-pipeline/internal/store/postgres"
	"github.com/cryptoganster/content-pipeline/internal/testutils"
)

func TestContentRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := testutils.NewIntegrationSuite(t)
	s.Setup()
	defer s.Teardown()

	ctx := context.Background()
	sources := postgres.NewSourceRepo(s.DB)
	contents := postgres.NewContentRepo(s.DB)
	hash := hashing.New()

	src := source.New("src-1", "WEB", "Site", map[string]any{})
	require.NoError(t, sources.Save(ctx, src))

	raw := "BTC rallied today on strong volume."
	item, err := content.New("item-1", src.ID, hash.SHA256(raw), raw, raw,
		content.Metadata{Title: "Rally", Language: "en"},
		[]content.AssetTag{{Symbol: "BTC", Confidence: 0.9}},
		time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, contents.Save(ctx, item))

	got, err := contents.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ContentHash, got.ContentHash)
	require.Len(t, got.AssetTags, 1)
	assert.Equal(t, "BTC", got.AssetTags[0].Symbol)

	exists, err := contents.ExistsByHash(ctx, item.ContentHash)
	require.NoError(t, err)
	assert.True(t, exists)

	byHash, err := contents.GetByHash(ctx, item.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, item.ID, byHash.ID)

	count, err := contents.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = contents.Get(ctx, "missing")
	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
