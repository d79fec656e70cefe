package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoganster/content-pipeline/internal/domain/source"
	"github.com/cryptoganster/content-pipeline/internal/errs"
	"github.com/cryptoganster/content-pipeline/internal/store/postgres"
	"github.com/cryptoganster/content-pipeline/internal/testutils"
)

func TestSourceRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := testutils.NewIntegrationSuite(t)
	s.Setup()
	defer s.Teardown()

	ctx := context.Background()
	sources := postgres.NewSourceRepo(s.DB)

	src := source.New("src-1", "RSS", "Feed", map[string]any{"url": "http://example.com/feed"})
	src.Credentials = []byte("ciphertext")
	require.NoError(t, sources.Save(ctx, src))

	got, err := sources.Get(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "RSS", got.SourceType)
	assert.Equal(t, []byte("ciphertext"), got.Credentials)
	assert.True(t, got.IsActive)
	assert.Equal(t, 0, got.Version)

	got.IsActive = false
	require.NoError(t, sources.Save(ctx, got))
	assert.Equal(t, 1, got.Version)

	stale := *src
	err = sources.Save(ctx, &stale)
	var concurrency *errs.ConcurrencyError
	require.ErrorAs(t, err, &concurrency)

	list, err := sources.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	count, err := sources.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = sources.Get(ctx, "missing")
	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
